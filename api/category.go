package api

import (
	"strconv"
	"strings"

	"finanalyst/database"
	"finanalyst/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 财务类别处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建财务类别处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoryCreateRequest 创建类别请求
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255" example:"Food"`
	Type        string `json:"type" binding:"required" example:"expense"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// CategoryUpdateRequest 更新类别请求
type CategoryUpdateRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty"`
}

// List 获取类别列表
// @Summary 获取类别列表
// @Description 获取全局财务类别列表，可按类型筛选，按名称排序
// @Tags 类别
// @Produce json
// @Param type query string false "类别类型" Enums(income,expense,debt,saving)
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 400 {object} Response "类型参数错误"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Category{})

	if t := c.Query("type"); t != "" {
		if !models.IsValidCategoryType(t) {
			BadRequest(c, "无效的类别类型，可选值：income、expense、debt、saving")
			return
		}
		query = query.Where("type = ?", t)
	}

	var list []models.Category
	if err := query.Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// Create 创建类别（仅管理员）
// @Summary 创建类别
// @Description 创建新的全局财务类别，名称唯一，类型创建后不应变更
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "参数错误或名称已存在"
// @Failure 403 {object} Response "权限不足"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}
	if !models.IsValidCategoryType(req.Type) {
		BadRequest(c, "无效的类别类型，可选值：income、expense、debt、saving")
		return
	}

	// 名称全局唯一
	var existing models.Category
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		BadRequest(c, "类别名称已存在")
		return
	}

	cat := models.Category{Name: req.Name, Type: req.Type, Description: req.Description}
	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", cat)
}

// Update 更新类别（仅管理员）
// @Summary 更新类别
// @Description 更新类别名称或描述，类型不可修改
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param request body CategoryUpdateRequest true "更新的类别信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "参数错误或名称已存在"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := database.DB.First(&cat, uint(id64)).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			BadRequest(c, "名称不能为空")
			return
		}
		var existing models.Category
		if err := database.DB.Where("name = ? AND id != ?", req.Name, cat.ID).First(&existing).Error; err == nil {
			BadRequest(c, "类别名称已存在")
			return
		}
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", cat)
		return
	}

	if err := database.DB.Model(&cat).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	database.DB.First(&cat, cat.ID)
	SuccessWithMessage(c, "更新成功", cat)
}

// Delete 删除类别（仅管理员）
// @Summary 删除类别
// @Description 软删除指定类别，引用该类别的记录 category_id 置空
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "无效的ID"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := database.DB.First(&cat, uint(id64)).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	if err := database.DB.Delete(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	// 类别删除后解除记录上的引用
	database.DB.Model(&models.Income{}).Where("category_id = ?", cat.ID).Update("category_id", nil)
	database.DB.Model(&models.Expense{}).Where("category_id = ?", cat.ID).Update("category_id", nil)
	database.DB.Model(&models.Debt{}).Where("category_id = ?", cat.ID).Update("category_id", nil)
	database.DB.Model(&models.FutureSaving{}).Where("category_id = ?", cat.ID).Update("category_id", nil)

	SuccessWithMessage(c, "删除成功", nil)
}
