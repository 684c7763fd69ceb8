package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"type:varchar(255);not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'"`

	// チェックアウト成功時に保存される配送先。注文にはスナップショットを持たせる
	ShippingInfo ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_"`

	IsActive    bool `gorm:"not null;default:true"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// 6項目すべて埋まっているか
func (u *User) HasShippingInfo() bool {
	return len(u.ShippingInfo.MissingFields()) == 0
}
