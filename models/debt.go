package models

import (
	"time"

	"gorm.io/gorm"
)

// Debt 债务记录模型
// paid_amount <= amount 仅在 API 层校验，存储层不做约束
type Debt struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	CategoryID  *uint          `json:"category_id" gorm:"index"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"size:255"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`        // 欠款总额
	PaidAmount  float64        `json:"paid_amount" gorm:"type:decimal(10,2);default:0"` // 已偿还金额
	DueDate     time.Time      `json:"due_date" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
	Category    *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (Debt) TableName() string {
	return "debts"
}

// Remaining 剩余未偿还金额
func (d *Debt) Remaining() float64 {
	return d.Amount - d.PaidAmount
}
