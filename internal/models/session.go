package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionCreated       SessionStatus = "CREATED"
	SessionInProgress    SessionStatus = "IN_PROGRESS"
	SessionSubmitted     SessionStatus = "SUBMITTED"
	SessionEvaluated     SessionStatus = "EVALUATED"
	SessionPendingReview SessionStatus = "PENDING_REVIEW"
	SessionReported      SessionStatus = "REPORTED"
	SessionCompleted     SessionStatus = "COMPLETED"
)

// sessionTransitions is the full lifecycle edge set. There is no path back to
// an earlier state and COMPLETED is terminal.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionCreated:       {SessionInProgress, SessionSubmitted},
	SessionInProgress:    {SessionSubmitted},
	SessionSubmitted:     {SessionEvaluated, SessionPendingReview},
	SessionEvaluated:     {SessionCompleted, SessionReported},
	SessionPendingReview: {SessionEvaluated, SessionReported},
	SessionReported:      {SessionCompleted},
	SessionCompleted:     {},
}

func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type InterviewType string

const (
	InterviewTechnical InterviewType = "TECHNICAL"
	InterviewHR        InterviewType = "HR"
)

func (t InterviewType) QuestionCategory() QuestionCategory {
	if t == InterviewHR {
		return CategoryHR
	}
	return CategoryTechnical
}

type MessageRole string

const (
	MessageUser  MessageRole = "user"
	MessageModel MessageRole = "model"
)

// Message is one transcript turn.
type Message struct {
	Role  MessageRole `json:"role"`
	Parts []string    `json:"parts"`
}

func (m Message) Text() string {
	out := ""
	for _, p := range m.Parts {
		out += p
	}
	return out
}

// SessionMeta is the state machine's working memory for question rotation.
type SessionMeta struct {
	CurrentQuestionIndex int      `json:"currentQuestionIndex"`
	CounterQuestionCount int      `json:"counterQuestionCount"`
	TotalQuestions       int      `json:"totalQuestions"`
	QuestionIDs          []string `json:"questionIds"`
}

type InterviewSession struct {
	ID     string        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID string        `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Type   InterviewType `gorm:"column:type;type:text" json:"type"`

	Domain     string         `gorm:"column:domain;type:text" json:"domain"`
	Difficulty string         `gorm:"column:difficulty;type:text" json:"difficulty"`
	Topics     pq.StringArray `gorm:"column:topics;type:text[]" json:"topics"`

	Status SessionStatus `gorm:"column:status;type:text;index" json:"status"`

	Messages datatypes.JSONSlice[Message]    `gorm:"column:messages" json:"messages"`
	Metadata datatypes.JSONType[SessionMeta] `gorm:"column:metadata" json:"metadata"`
	Score    *float64                        `gorm:"column:score" json:"score"`
	Feedback datatypes.JSON                  `gorm:"column:feedback;type:jsonb" json:"feedback,omitempty"`

	StartedAt   *time.Time `gorm:"column:started_at;type:timestamptz" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at;type:timestamptz" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (InterviewSession) TableName() string { return "interview_sessions" }
