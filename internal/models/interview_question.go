package models

import (
	"time"

	"gorm.io/datatypes"
)

type InterviewQuestionStatus string

const (
	InterviewQuestionAsked   InterviewQuestionStatus = "ASKED"
	InterviewQuestionPending InterviewQuestionStatus = "PENDING"
)

// InterviewQuestion links a session to one question slot: either a catalog
// question attached at creation, or a transcript-derived snapshot written by
// the evaluation pipeline.
type InterviewQuestion struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID  string `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	QuestionID string `gorm:"column:question_id;type:uuid;index" json:"question_id"`
	Order      int    `gorm:"column:question_order" json:"order"`

	Status     InterviewQuestionStatus `gorm:"column:status;type:text" json:"status"`
	UserAnswer string                  `gorm:"column:user_answer;type:text" json:"user_answer"`
	Score      *float64                `gorm:"column:score" json:"score"`
	Evaluation datatypes.JSON          `gorm:"column:evaluation;type:jsonb" json:"evaluation,omitempty"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (InterviewQuestion) TableName() string { return "interview_questions" }
