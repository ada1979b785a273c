package api

import (
	"strconv"
	"time"

	"finanalyst/database"
	"finanalyst/middleware"
	"finanalyst/models"

	"github.com/gin-gonic/gin"
)

// SavingHandler 储蓄目标处理器
type SavingHandler struct{}

// NewSavingHandler 创建储蓄目标处理器
func NewSavingHandler() *SavingHandler {
	return &SavingHandler{}
}

// CreateSavingRequest 创建储蓄目标请求
type CreateSavingRequest struct {
	Name          string  `json:"name" binding:"required,max=255" example:"Emergency fund"`
	Description   string  `json:"description" binding:"omitempty,max=255"`
	TargetAmount  float64 `json:"target_amount" binding:"required,gte=0" example:"10000.00"`
	CurrentAmount float64 `json:"current_amount" binding:"omitempty,gte=0" example:"2500.00"`
	TargetDate    string  `json:"target_date" binding:"required" example:"2025-01-15"`
	CategoryID    *uint   `json:"category_id"`
}

// UpdateSavingRequest 更新储蓄目标请求
type UpdateSavingRequest struct {
	Name          string   `json:"name" binding:"omitempty,max=255"`
	Description   *string  `json:"description"`
	TargetAmount  *float64 `json:"target_amount" binding:"omitempty,gte=0"`
	CurrentAmount *float64 `json:"current_amount" binding:"omitempty,gte=0"`
	TargetDate    string   `json:"target_date"`
	CategoryID    *uint    `json:"category_id"`
}

// SavingListRequest 储蓄列表请求，日期范围作用于目标日期
type SavingListRequest struct {
	Page       int   `form:"page" example:"1"`
	PageSize   int   `form:"page_size" example:"10"`
	CategoryID *uint `form:"category_id"`
	dateRangeFilter
}

// SavingVisualizationItem 储蓄可视化条目
type SavingVisualizationItem struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	TargetAmount       float64 `json:"target_amount"`
	CurrentAmount      float64 `json:"current_amount"`
	ProgressPercentage float64 `json:"progress_percentage"`
	TargetDate         string  `json:"target_date"`
}

// Create 创建储蓄目标
// @Summary 创建储蓄目标
// @Description 创建一条新的储蓄目标记录，类别类型必须为 saving
// @Tags 储蓄
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSavingRequest true "储蓄目标信息"
// @Success 200 {object} Response{data=models.FutureSaving} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/savings [post]
func (h *SavingHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateSavingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	targetDate, ok := parseRecordDate(req.TargetDate)
	if !ok {
		BadRequest(c, "目标日期格式错误，应为: 2024-01-15")
		return
	}

	if req.CategoryID != nil && !checkCategoryType(*req.CategoryID, models.CategoryTypeSaving) {
		BadRequest(c, "无效的储蓄类别")
		return
	}

	saving := models.FutureSaving{
		UserID:        userID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    targetDate,
	}
	if err := database.DB.Create(&saving).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建储蓄目标失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", saving)
}

// List 获取储蓄目标列表
// @Summary 获取储蓄目标列表
// @Description 获取当前用户的储蓄目标列表，支持分页、类别与目标日期范围筛选
// @Tags 储蓄
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category_id query int false "类别筛选"
// @Param start_date query string false "目标开始日期 (2024-01-01)"
// @Param end_date query string false "目标结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.FutureSaving}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/savings [get]
func (h *SavingHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req SavingListRequest
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

	query := database.DB.Model(&models.FutureSaving{}).Where("user_id = ?", userID)
	if req.CategoryID != nil {
		query = query.Where("category_id = ?", *req.CategoryID)
	}
	if req.StartDate != "" {
		if t, ok := parseRecordDate(req.StartDate); ok {
			query = query.Where("target_date >= ?", t)
		}
	}
	if req.EndDate != "" {
		if t, ok := parseRecordDate(req.EndDate); ok {
			// 包含结束日期当天
			query = query.Where("target_date <= ?", t.Add(24*time.Hour-time.Second))
		}
	}

	var total int64
	query.Count(&total)

	var savings []models.FutureSaving
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Category").Order("target_date ASC").Offset(offset).Limit(req.PageSize).Find(&savings).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     savings,
	})
}

// Get 获取单条储蓄目标
// @Summary 获取单条储蓄目标
// @Description 根据ID获取储蓄目标详情
// @Tags 储蓄
// @Produce json
// @Security BearerAuth
// @Param id path int true "储蓄目标ID"
// @Success 200 {object} Response{data=models.FutureSaving} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/savings/{id} [get]
func (h *SavingHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var saving models.FutureSaving
	if err := database.DB.Preload("Category").Where("id = ? AND user_id = ?", id, userID).First(&saving).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, saving)
}

// Update 更新储蓄目标
// @Summary 更新储蓄目标
// @Description 更新指定的储蓄目标，仅覆盖提供的字段
// @Tags 储蓄
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "储蓄目标ID"
// @Param request body UpdateSavingRequest true "储蓄目标信息"
// @Success 200 {object} Response{data=models.FutureSaving} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/savings/{id} [put]
func (h *SavingHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var saving models.FutureSaving
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&saving).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateSavingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TargetAmount != nil {
		updates["target_amount"] = *req.TargetAmount
	}
	if req.CurrentAmount != nil {
		updates["current_amount"] = *req.CurrentAmount
	}
	if req.TargetDate != "" {
		targetDate, ok := parseRecordDate(req.TargetDate)
		if !ok {
			BadRequest(c, "目标日期格式错误，应为: 2024-01-15")
			return
		}
		updates["target_date"] = targetDate
	}
	if req.CategoryID != nil {
		if !checkCategoryType(*req.CategoryID, models.CategoryTypeSaving) {
			BadRequest(c, "无效的储蓄类别")
			return
		}
		updates["category_id"] = *req.CategoryID
	}

	if err := database.DB.Model(&saving).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.Preload("Category").First(&saving, saving.ID)
	SuccessWithMessage(c, "更新成功", saving)
}

// Delete 删除储蓄目标
// @Summary 删除储蓄目标
// @Description 删除指定的储蓄目标
// @Tags 储蓄
// @Produce json
// @Security BearerAuth
// @Param id path int true "储蓄目标ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/savings/{id} [delete]
func (h *SavingHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var saving models.FutureSaving
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&saving).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&saving).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Visualization 储蓄目标可视化
// @Summary 储蓄目标可视化
// @Description 获取当前用户所有储蓄目标的进度数据，按目标日期升序排列
// @Tags 储蓄
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]SavingVisualizationItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/savings/visualization [get]
func (h *SavingHandler) Visualization(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var savings []models.FutureSaving
	if err := database.DB.Where("user_id = ?", userID).Order("target_date ASC").Find(&savings).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	items := make([]SavingVisualizationItem, 0, len(savings))
	for _, s := range savings {
		items = append(items, SavingVisualizationItem{
			ID:                 s.ID,
			Name:               s.Name,
			TargetAmount:       s.TargetAmount,
			CurrentAmount:      s.CurrentAmount,
			ProgressPercentage: s.Progress(),
			TargetDate:         s.TargetDate.Format(recordDateLayout),
		})
	}

	Success(c, items)
}
