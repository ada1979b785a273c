package api

import (
	"time"

	"finanalyst/database"
	"finanalyst/models"
)

// recordDateLayout 记录日期的请求格式
const recordDateLayout = "2006-01-02"

// parseRecordDate 解析 YYYY-MM-DD 格式的日期
func parseRecordDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(recordDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// checkCategoryType 校验类别存在且类型匹配记录种类
// 类别与记录种类不匹配是 API 层强制的约束，存储层不做检查
func checkCategoryType(categoryID uint, wantType string) bool {
	var cat models.Category
	if err := database.DB.First(&cat, categoryID).Error; err != nil {
		return false
	}
	return cat.Type == wantType
}

// dateRangeFilter 列表查询的可选日期范围参数
type dateRangeFilter struct {
	StartDate string `form:"start_date" example:"2024-01-01"`
	EndDate   string `form:"end_date" example:"2024-12-31"`
}
