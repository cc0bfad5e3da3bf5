package models

import "time"

type QuestionStatus string

const (
	QuestionDraft  QuestionStatus = "DRAFT"
	QuestionActive QuestionStatus = "ACTIVE"
)

type QuestionSource string

const (
	SourceAdmin    QuestionSource = "ADMIN"
	SourceImported QuestionSource = "IMPORTED"
	// SourceSnapshot marks transcript-derived questions written by the
	// evaluation pipeline. They stay DRAFT and never join the curated catalog.
	SourceSnapshot QuestionSource = "SNAPSHOT"
)

type QuestionCategory string

const (
	CategoryTechnical QuestionCategory = "TECHNICAL"
	CategoryHR        QuestionCategory = "HR"
)

type Question struct {
	ID         string           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title      string           `gorm:"column:title;type:text" json:"title"`
	Topic      string           `gorm:"column:topic;type:text;index" json:"topic"`
	Category   QuestionCategory `gorm:"column:category;type:text;index" json:"category"`
	Domain     string           `gorm:"column:domain;type:text;index" json:"domain"`
	Difficulty string           `gorm:"column:difficulty;type:text" json:"difficulty"`

	ProblemStatement string `gorm:"column:problem_statement;type:text" json:"problem_statement"`
	IdealAnswer      string `gorm:"column:ideal_answer;type:text" json:"ideal_answer"`
	Rubric           string `gorm:"column:rubric;type:text" json:"rubric"`
	KeyConcepts      string `gorm:"column:key_concepts;type:text" json:"key_concepts"` // comma-delimited

	Status QuestionStatus `gorm:"column:status;type:text;index" json:"status"`
	Source QuestionSource `gorm:"column:source;type:text" json:"source"`

	// (external_source, external_id) is the import dedup key.
	ExternalSource *string `gorm:"column:external_source;type:text;uniqueIndex:idx_questions_external" json:"external_source,omitempty"`
	ExternalID     *string `gorm:"column:external_id;type:text;uniqueIndex:idx_questions_external" json:"external_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Question) TableName() string { return "questions" }
