package feedback

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Type string

const (
	IncorrectTranslation Type = "incorrect_translation"
	IncorrectArabic      Type = "incorrect_arabic"
	IncorrectReference   Type = "incorrect_reference"
	IrrelevantDua        Type = "irrelevant_dua"
	Other                Type = "other"
)

var Types = []Type{IncorrectTranslation, IncorrectArabic, IncorrectReference, IrrelevantDua, Other}

func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

// Record is a user report about a generated du'a. Records are created
// pending and never deleted.
type Record struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FeedbackType    Type           `gorm:"column:feedback_type;not null;index" json:"feedbackType"`
	Comment         string         `gorm:"column:comment;not null" json:"comment"`
	ContentSnapshot datatypes.JSON `gorm:"column:content_snapshot;not null" json:"duaData"`
	Status          Status         `gorm:"column:status;not null;default:pending;index" json:"status"`
	CreatedAt       time.Time      `gorm:"not null" json:"createdAt"`
}

func (Record) TableName() string { return "feedback" }

type SubmitRequest struct {
	FeedbackType string          `json:"feedbackType"`
	Comment      string          `json:"comment"`
	DuaData      json.RawMessage `json:"duaData"`
}
