package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Task content types
const (
	ContentVideo      = "video"
	ContentQuiz       = "quiz"
	ContentAssignment = "assignment"
	ContentReading    = "reading"
	ContentProject    = "project"
)

var ContentTypes = []string{ContentVideo, ContentQuiz, ContentAssignment, ContentReading, ContentProject}

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type CodeSnippet struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Task is the content unit for one day of one batch. (BatchID, DayNumber) is unique.
type Task struct {
	gorm.Model
	Title          string                            `json:"title" gorm:"not null"`
	Description    string                            `json:"description" gorm:"type:text"`
	DayNumber      int                               `json:"day_number" gorm:"not null;uniqueIndex:idx_task_batch_day"`
	BatchID        uint                              `json:"batch_id" gorm:"not null;uniqueIndex:idx_task_batch_day"`
	OrderIndex     int                               `json:"order_index"`
	ContentType    string                            `json:"content_type" gorm:"type:varchar(20);not null"`
	VideoURL       string                            `json:"video_url"`
	Quiz           datatypes.JSONSlice[QuizQuestion] `json:"quiz"`
	Assignment     string                            `json:"assignment" gorm:"type:text"`
	ReadingContent string                            `json:"reading_content" gorm:"type:text"`
	ProjectDetails string                            `json:"project_details" gorm:"type:text"`
	Pdfs           datatypes.JSONSlice[string]       `json:"pdfs"`
	Images         datatypes.JSONSlice[string]       `json:"images"`
	CodeSnippets   datatypes.JSONSlice[CodeSnippet]  `json:"code_snippets"`
	IsPublished    bool                              `json:"is_published"`
}

// BlobRefs lists every blob the task owns.
func (t *Task) BlobRefs() []string {
	refs := make([]string, 0, len(t.Pdfs)+len(t.Images))
	refs = append(refs, t.Pdfs...)
	refs = append(refs, t.Images...)
	return refs
}
