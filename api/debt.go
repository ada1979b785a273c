package api

import (
	"strconv"
	"time"

	"finanalyst/database"
	"finanalyst/middleware"
	"finanalyst/models"

	"github.com/gin-gonic/gin"
)

// DebtHandler 债务记录处理器
type DebtHandler struct{}

// NewDebtHandler 创建债务记录处理器
func NewDebtHandler() *DebtHandler {
	return &DebtHandler{}
}

// CreateDebtRequest 创建债务请求
type CreateDebtRequest struct {
	Name        string  `json:"name" binding:"required,max=255" example:"Car loan"`
	Description string  `json:"description" binding:"omitempty,max=255"`
	Amount      float64 `json:"amount" binding:"required,gte=0" example:"12000.00"`
	PaidAmount  float64 `json:"paid_amount" binding:"omitempty,gte=0" example:"3000.00"`
	DueDate     string  `json:"due_date" binding:"required" example:"2025-01-15"`
	CategoryID  *uint   `json:"category_id"`
}

// UpdateDebtRequest 更新债务请求
type UpdateDebtRequest struct {
	Name        string   `json:"name" binding:"omitempty,max=255"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount" binding:"omitempty,gte=0"`
	PaidAmount  *float64 `json:"paid_amount" binding:"omitempty,gte=0"`
	DueDate     string   `json:"due_date"`
	CategoryID  *uint    `json:"category_id"`
}

// DebtListRequest 债务列表请求，日期范围作用于到期日期
type DebtListRequest struct {
	Page       int   `form:"page" example:"1"`
	PageSize   int   `form:"page_size" example:"10"`
	CategoryID *uint `form:"category_id"`
	dateRangeFilter
}

// DebtVisualizationItem 债务可视化条目
type DebtVisualizationItem struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	TotalAmount     float64 `json:"total_amount"`
	PaidAmount      float64 `json:"paid_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
	PaidPercentage  float64 `json:"paid_percentage"`
	DueDate         string  `json:"due_date"`
}

// Create 创建债务记录
// @Summary 创建债务记录
// @Description 创建一条新的债务记录，已还金额不得超过总额，类别类型必须为 debt
// @Tags 债务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDebtRequest true "债务信息"
// @Success 200 {object} Response{data=models.Debt} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/debts [post]
func (h *DebtHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.PaidAmount > req.Amount {
		BadRequest(c, "已还金额不能超过债务总额")
		return
	}

	dueDate, ok := parseRecordDate(req.DueDate)
	if !ok {
		BadRequest(c, "到期日期格式错误，应为: 2024-01-15")
		return
	}

	if req.CategoryID != nil && !checkCategoryType(*req.CategoryID, models.CategoryTypeDebt) {
		BadRequest(c, "无效的债务类别")
		return
	}

	debt := models.Debt{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		PaidAmount:  req.PaidAmount,
		DueDate:     dueDate,
	}
	if err := database.DB.Create(&debt).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建债务失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", debt)
}

// List 获取债务列表
// @Summary 获取债务列表
// @Description 获取当前用户的债务列表，支持分页、类别与到期日期范围筛选
// @Tags 债务
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category_id query int false "类别筛选"
// @Param start_date query string false "到期开始日期 (2024-01-01)"
// @Param end_date query string false "到期结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Debt}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/debts [get]
func (h *DebtHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req DebtListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Debt{}).Where("user_id = ?", userID)
	if req.CategoryID != nil {
		query = query.Where("category_id = ?", *req.CategoryID)
	}
	if req.StartDate != "" {
		if t, ok := parseRecordDate(req.StartDate); ok {
			query = query.Where("due_date >= ?", t)
		}
	}
	if req.EndDate != "" {
		if t, ok := parseRecordDate(req.EndDate); ok {
			// 包含结束日期当天
			query = query.Where("due_date <= ?", t.Add(24*time.Hour-time.Second))
		}
	}

	var total int64
	query.Count(&total)

	var debts []models.Debt
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Category").Order("due_date ASC").Offset(offset).Limit(req.PageSize).Find(&debts).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     debts,
	})
}

// Get 获取单条债务记录
// @Summary 获取单条债务记录
// @Description 根据ID获取债务记录详情
// @Tags 债务
// @Produce json
// @Security BearerAuth
// @Param id path int true "债务记录ID"
// @Success 200 {object} Response{data=models.Debt} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/debts/{id} [get]
func (h *DebtHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var debt models.Debt
	if err := database.DB.Preload("Category").Where("id = ? AND user_id = ?", id, userID).First(&debt).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, debt)
}

// Update 更新债务记录
// @Summary 更新债务记录
// @Description 更新指定的债务记录，仅覆盖提供的字段，保持已还金额不超过总额
// @Tags 债务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "债务记录ID"
// @Param request body UpdateDebtRequest true "债务信息"
// @Success 200 {object} Response{data=models.Debt} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/debts/{id} [put]
func (h *DebtHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var debt models.Debt
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&debt).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 校验更新后的金额关系
	newAmount := debt.Amount
	newPaid := debt.PaidAmount
	if req.Amount != nil {
		newAmount = *req.Amount
	}
	if req.PaidAmount != nil {
		newPaid = *req.PaidAmount
	}
	if newPaid > newAmount {
		BadRequest(c, "已还金额不能超过债务总额")
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.PaidAmount != nil {
		updates["paid_amount"] = *req.PaidAmount
	}
	if req.DueDate != "" {
		dueDate, ok := parseRecordDate(req.DueDate)
		if !ok {
			BadRequest(c, "到期日期格式错误，应为: 2024-01-15")
			return
		}
		updates["due_date"] = dueDate
	}
	if req.CategoryID != nil {
		if !checkCategoryType(*req.CategoryID, models.CategoryTypeDebt) {
			BadRequest(c, "无效的债务类别")
			return
		}
		updates["category_id"] = *req.CategoryID
	}

	if err := database.DB.Model(&debt).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.Preload("Category").First(&debt, debt.ID)
	SuccessWithMessage(c, "更新成功", debt)
}

// Delete 删除债务记录
// @Summary 删除债务记录
// @Description 删除指定的债务记录
// @Tags 债务
// @Produce json
// @Security BearerAuth
// @Param id path int true "债务记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/debts/{id} [delete]
func (h *DebtHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var debt models.Debt
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&debt).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&debt).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Visualization 债务可视化
// @Summary 债务可视化
// @Description 获取当前用户所有未还清债务的进度数据，按到期日期升序排列
// @Tags 债务
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]DebtVisualizationItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/debts/visualization [get]
func (h *DebtHandler) Visualization(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var debts []models.Debt
	if err := database.DB.Where("user_id = ? AND paid_amount < amount", userID).Order("due_date ASC").Find(&debts).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	items := make([]DebtVisualizationItem, 0, len(debts))
	for _, d := range debts {
		percentage := 0.0
		if d.Amount > 0 {
			percentage = d.PaidAmount / d.Amount * 100
		}
		items = append(items, DebtVisualizationItem{
			ID:              d.ID,
			Name:            d.Name,
			TotalAmount:     d.Amount,
			PaidAmount:      d.PaidAmount,
			RemainingAmount: d.Remaining(),
			PaidPercentage:  percentage,
			DueDate:         d.DueDate.Format(recordDateLayout),
		})
	}

	Success(c, items)
}
