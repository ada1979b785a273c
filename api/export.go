package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"finanalyst/database"
	"finanalyst/middleware"
	"finanalyst/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 数据导出处理器
type ExportHandler struct{}

// NewExportHandler 创建数据导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRow 四类记录导出时的统一行结构，列与 CSV 导入格式兼容
type exportRow struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	Name          string    `json:"name"`
	Amount        float64   `json:"amount"`
	PaidAmount    float64   `json:"paid_amount,omitempty"`
	DueDate       string    `json:"due_date,omitempty"`
	CurrentAmount float64   `json:"current_amount,omitempty"`
	TargetDate    string    `json:"target_date,omitempty"`
}

// collectRows 查询当前用户在可选日期范围内的全部记录并按日期升序合并
func (h *ExportHandler) collectRows(userID uint, startStr, endStr string) ([]exportRow, error) {
	var start, end time.Time
	hasStart, hasEnd := false, false
	if startStr != "" {
		if t, ok := parseRecordDate(startStr); ok {
			start, hasStart = t, true
		}
	}
	if endStr != "" {
		if t, ok := parseRecordDate(endStr); ok {
			end, hasEnd = t.Add(24*time.Hour-time.Second), true
		}
	}

	rows := make([]exportRow, 0)

	// 债务/储蓄没有记录日期，各按其到期/目标日期过滤
	ranged := func(dateColumn string) *gorm.DB {
		q := database.DB.Preload("Category").Where("user_id = ?", userID)
		if hasStart {
			q = q.Where(dateColumn+" >= ?", start)
		}
		if hasEnd {
			q = q.Where(dateColumn+" <= ?", end)
		}
		return q
	}

	var incomes []models.Income
	if err := ranged("date").Find(&incomes).Error; err != nil {
		return nil, err
	}
	for _, r := range incomes {
		rows = append(rows, exportRow{
			Date: r.Date, DateStr: r.Date.Format(recordDateLayout),
			Type: models.CategoryTypeIncome, Category: categoryName(r.Category),
			Name: r.Name, Amount: r.Amount,
		})
	}

	var expenses []models.Expense
	if err := ranged("date").Find(&expenses).Error; err != nil {
		return nil, err
	}
	for _, r := range expenses {
		rows = append(rows, exportRow{
			Date: r.Date, DateStr: r.Date.Format(recordDateLayout),
			Type: models.CategoryTypeExpense, Category: categoryName(r.Category),
			Name: r.Name, Amount: r.Amount,
		})
	}

	var debts []models.Debt
	if err := ranged("due_date").Find(&debts).Error; err != nil {
		return nil, err
	}
	for _, r := range debts {
		rows = append(rows, exportRow{
			Date: r.DueDate, DateStr: r.DueDate.Format(recordDateLayout),
			Type: models.CategoryTypeDebt, Category: categoryName(r.Category),
			Name: r.Name, Amount: r.Amount,
			PaidAmount: r.PaidAmount, DueDate: r.DueDate.Format(recordDateLayout),
		})
	}

	var savings []models.FutureSaving
	if err := ranged("target_date").Find(&savings).Error; err != nil {
		return nil, err
	}
	for _, r := range savings {
		rows = append(rows, exportRow{
			Date: r.TargetDate, DateStr: r.TargetDate.Format(recordDateLayout),
			Type: models.CategoryTypeSaving, Category: categoryName(r.Category),
			Name: r.Name, Amount: r.TargetAmount,
			CurrentAmount: r.CurrentAmount, TargetDate: r.TargetDate.Format(recordDateLayout),
		})
	}

	sortRowsByDate(rows)
	return rows, nil
}

// ExportCSV 导出 CSV
// @Summary 导出 CSV
// @Description 导出当前用户全部财务记录为 CSV，列与导入格式兼容，可直接重新导入
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {file} binary "CSV 文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	rows, err := h.collectRows(userID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	filename := fmt.Sprintf("finance_export_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	// BOM 让 Excel 正确识别 UTF-8
	c.Writer.Write([]byte("\xEF\xBB\xBF"))

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"date", "type", "category", "name", "amount", "paid_amount", "due_date", "current_amount", "target_date"})
	for _, r := range rows {
		w.Write([]string{
			r.DateStr,
			r.Type,
			r.Category,
			r.Name,
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			formatOptionalAmount(r.Type == models.CategoryTypeDebt, r.PaidAmount),
			r.DueDate,
			formatOptionalAmount(r.Type == models.CategoryTypeSaving, r.CurrentAmount),
			r.TargetDate,
		})
	}
	w.Flush()
}

// ExportJSON 导出 JSON
// @Summary 导出 JSON
// @Description 导出当前用户全部财务记录为 JSON 数组
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=[]exportRow} "导出成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	rows, err := h.collectRows(userID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, rows)
}

// ExportExcel 导出 Excel
// @Summary 导出 Excel
// @Description 导出当前用户全部财务记录为带样式的 xlsx 文件，末尾附汇总行
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {file} binary "Excel 文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	rows, err := h.collectRows(userID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "财务记录"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 数据样式
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 18)
	f.SetColWidth(sheetName, "D", "D", 30)
	f.SetColWidth(sheetName, "E", "E", 12)

	// 写入表头
	headers := []string{"日期", "类型", "类别", "名称", "金额"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 写入数据
	var totalAmount float64
	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.DateStr)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Amount)

		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), dataStyle)
		totalAmount += r.Amount
	}

	// 添加汇总行
	summaryRow := len(rows) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("D%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", summaryRow), totalAmount)
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("E%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("finance_export_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))

	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// categoryName 类别显示名，未关联类别时为空串
func categoryName(cat *models.Category) string {
	if cat == nil {
		return ""
	}
	return cat.Name
}

// formatOptionalAmount 仅在该列对当前记录类型有意义时输出数值
func formatOptionalAmount(applicable bool, amount float64) string {
	if !applicable {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// sortRowsByDate 按日期升序稳定排序
func sortRowsByDate(rows []exportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}
