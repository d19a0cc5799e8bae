package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Batch is a scheduled offering of a course with a fixed day-indexed duration
type Batch struct {
	gorm.Model
	Title         string                      `json:"title" gorm:"not null"`
	Description   string                      `json:"description" gorm:"type:text"`
	CourseName    string                      `json:"course_name"`
	StartDate     *time.Time                  `json:"start_date"`
	BannerURL     string                      `json:"banner_url"`
	DurationDays  int                         `json:"duration_days" gorm:"not null"`
	Instructor    string                      `json:"instructor"`
	Price         float64                     `json:"price"`
	Capacity      int                         `json:"capacity"` // 0 means unlimited
	IsActive      bool                        `json:"is_active"`
	WhatYouLearn  datatypes.JSONSlice[string] `json:"what_you_learn"`
	Prerequisites datatypes.JSONSlice[string] `json:"prerequisites"`
	Benefits      datatypes.JSONSlice[string] `json:"benefits"`
}
