package models

import "time"

type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"not null;default:'user'"`

	// Balance is in internal billing tokens, unrelated to vendor LLM
	// tokens. CreditLimit lets a user run below zero by that much.
	Balance       int64 `gorm:"not null;default:0"`
	CreditLimit   int64 `gorm:"not null;default:0"`
	TotalConsumed int64 `gorm:"not null;default:0"`

	IsActive bool `gorm:"not null;default:true"`
	Version  int  `gorm:"default:1"`
}
