package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
type User struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	Name                 string         `json:"name" gorm:"size:50;not null"`
	Email                string         `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password             string         `json:"-" gorm:"size:255;not null"`
	BudgetLimit          *float64       `json:"budget_limit" gorm:"type:decimal(10,2)"` // 月度预算上限，NULL 表示未设置
	NotificationsEnabled bool           `json:"notifications_enabled" gorm:"default:true"`
	DarkMode             bool           `json:"dark_mode" gorm:"default:false"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}
