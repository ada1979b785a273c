package api

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"finanalyst/config"
	"finanalyst/database"
	"finanalyst/middleware"
	"finanalyst/service"

	"github.com/gin-gonic/gin"
)

// ImportHandler CSV 导入处理器
type ImportHandler struct {
	cfg *config.Config
}

// NewImportHandler 创建CSV导入处理器
func NewImportHandler(cfg *config.Config) *ImportHandler {
	return &ImportHandler{cfg: cfg}
}

// ImportResponse 导入结果响应
type ImportResponse struct {
	ImportedCount int                   `json:"imported_count"`
	Detail        *service.ImportResult `json:"detail"`
}

// Import 导入财务数据
// @Summary 导入财务数据
// @Description 上传 CSV 文件批量导入记录，支持 income/expense/debt/saving 四种类型，非法行会被跳过
// @Tags 导入
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV 文件，表头需包含 date,type,category,name,amount"
// @Success 201 {object} Response{data=ImportResponse} "导入成功"
// @Failure 400 {object} Response "文件或表头错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	h.handle(c, service.ImportModeFull)
}

// ImportBasic 导入收支数据（旧版）
// @Summary 导入收支数据（旧版）
// @Description 旧版导入接口，仅接受 income/expense 两种类型，其余行跳过
// @Tags 导入
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV 文件，表头需包含 date,type,category,name,amount"
// @Success 201 {object} Response{data=ImportResponse} "导入成功"
// @Failure 400 {object} Response "文件或表头错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/import/basic [post]
func (h *ImportHandler) ImportBasic(c *gin.Context) {
	h.handle(c, service.ImportModeBasic)
}

func (h *ImportHandler) handle(c *gin.Context, mode service.ImportMode) {
	userID := middleware.GetCurrentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "请选择要上传的 CSV 文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "文件读取失败"))
		return
	}
	defer file.Close()

	svc := service.NewImportService(database.DB, h.cfg.Import.MaxFileSizeMB)
	result, err := svc.Import(userID, fileHeader.Filename, fileHeader.Size, file, mode)
	if err != nil {
		var missing *service.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			BadRequest(c, fmt.Sprintf("CSV 缺少必需字段: %s", strings.Join(missing.Fields, ", ")))
		case errors.Is(err, service.ErrBadFile):
			BadRequest(c, err.Error())
		default:
			log.Printf("导入失败: %v", err)
			InternalError(c, "导入失败")
		}
		return
	}

	Created(c, fmt.Sprintf("成功导入 %d 条记录", result.Total()), ImportResponse{
		ImportedCount: result.Total(),
		Detail:        result,
	})
}
