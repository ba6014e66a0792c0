package models

import "time"

// Job is the persisted record of one processing run: the source
// directory or mailbox batch it covers, its confirmed period inputs,
// and its terminal status once the orchestrator finishes.
type Job struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Status      string    `json:"status" gorm:"default:INITIALIZED"`
	Source      string    `json:"source" gorm:"default:upload"`
	TotalFiles  int       `json:"total_files"`
	Processed   int       `json:"processed"`
	ErrorCount  int       `json:"error_count"`
	NeedsUI     int       `json:"needs_ui_count"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

// JobOutcome is the persisted result of one Doc Item processed within a
// job: either a written filename, a deferred NEEDS_UI item awaiting an
// operator-supplied field, or an error.
type JobOutcome struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	JobID       string    `json:"job_id" gorm:"index;not null"`
	SourcePath  string    `json:"source_path"`
	DocItemID   string    `json:"doc_item_id"`
	Filename    string    `json:"filename,omitempty"`
	NeedsUICode string    `json:"needs_ui_code,omitempty"`
	NeedsField  string    `json:"needs_ui_field,omitempty"`
	Resolved    int       `json:"resolved" gorm:"default:0"`
	ErrorMsg    string    `json:"error_message,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (JobOutcome) TableName() string {
	return "job_outcomes"
}
