package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense 消费记录模型
type Expense struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"index;not null"`
	Title         string         `json:"title" gorm:"size:100;not null"`
	Amount        float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category      string         `json:"category" gorm:"size:50;not null;index:idx_category_date"`
	Date          time.Time      `json:"date" gorm:"not null;index:idx_category_date"`
	Description   string         `json:"description" gorm:"size:500"`
	PaymentMethod string         `json:"payment_method" gorm:"size:20;not null"`
	IsRecurring   bool           `json:"is_recurring" gorm:"default:false"`
	Tags          []string       `json:"tags" gorm:"serializer:json;type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	User          User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}
