package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name      string     `json:"name" gorm:"not null"`
	Email     string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password  string     `json:"-" gorm:"not null"`
	IsAdmin   bool       `json:"is_admin"`
	LastLogin *time.Time `json:"last_login"`
}
