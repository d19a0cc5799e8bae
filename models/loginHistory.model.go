package models

import "time"

// LoginHistory records one successful login
type LoginHistory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	IPAddress  string    `json:"ip_address" gorm:"size:64"`
	Device     string    `json:"device" gorm:"size:255"`
	LoggedInAt time.Time `json:"logged_in_at" gorm:"index"`
}
