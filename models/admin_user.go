package models

import "time"

// AdminUser is the credential record for the site administrator
type AdminUser struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string     `json:"username" gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;type:text;not null"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	LastLogin    *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`
}
