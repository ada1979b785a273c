package models

import (
	"time"

	"gorm.io/gorm"
)

// 类别类型常量
const (
	// CategoryTypeIncome 收入类别
	CategoryTypeIncome = "income"
	// CategoryTypeExpense 支出类别
	CategoryTypeExpense = "expense"
	// CategoryTypeDebt 债务类别
	CategoryTypeDebt = "debt"
	// CategoryTypeSaving 储蓄目标类别
	CategoryTypeSaving = "saving"
)

// Category 财务类别（全局共享，后台维护）
// 每个类别属于唯一的类型，限制可挂载的记录种类
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Type        string         `json:"type" gorm:"size:10;not null;index"` // income/expense/debt/saving
	Description string         `json:"description" gorm:"size:255"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// GetCategoryTypes 获取所有类别类型
func GetCategoryTypes() []string {
	return []string{
		CategoryTypeIncome,
		CategoryTypeExpense,
		CategoryTypeDebt,
		CategoryTypeSaving,
	}
}

// IsValidCategoryType 校验类别类型是否合法
func IsValidCategoryType(t string) bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeDebt, CategoryTypeSaving:
		return true
	}
	return false
}
