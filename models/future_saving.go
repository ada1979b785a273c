package models

import (
	"time"

	"gorm.io/gorm"
)

// FutureSaving 储蓄目标模型
type FutureSaving struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"index;not null"`
	CategoryID    *uint          `json:"category_id" gorm:"index"`
	Name          string         `json:"name" gorm:"size:255;not null"`
	Description   string         `json:"description" gorm:"size:255"`
	TargetAmount  float64        `json:"target_amount" gorm:"type:decimal(10,2);not null"` // 目标金额
	CurrentAmount float64        `json:"current_amount" gorm:"type:decimal(10,2);default:0"`
	TargetDate    time.Time      `json:"target_date" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	User          User           `json:"-" gorm:"foreignKey:UserID"`
	Category      *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (FutureSaving) TableName() string {
	return "future_savings"
}

// Progress 总体完成百分比（目标为 0 时返回 0，避免除零）
func (s *FutureSaving) Progress() float64 {
	if s.TargetAmount <= 0 {
		return 0
	}
	return s.CurrentAmount / s.TargetAmount * 100
}
