package llm

import (
	"context"

	"github.com/yoockh/mockmate/internal/models"
)

type InterviewContext struct {
	Type       models.InterviewType
	Domain     string
	Difficulty string
	Topics     []string
}

// StartingQuestion seeds the opening greeting. Nil means no catalog question
// could be attached and the greeting falls back to a generic domain prompt.
type StartingQuestion struct {
	Title            string
	ProblemStatement string
}

// ReferenceQuestion is rubric/ideal-answer context passed to the evaluator.
type ReferenceQuestion struct {
	Title            string
	ProblemStatement string
	IdealAnswer      string
	Rubric           string
}

// Collaborator is the external conversational/evaluation AI. It is injected
// into the session state machine and the evaluation pipeline; tests supply a
// scripted fake.
type Collaborator interface {
	// GenerateInitialGreeting returns the interviewer's opening message.
	GenerateInitialGreeting(ctx context.Context, ic InterviewContext, q *StartingQuestion) (string, error)

	// ProcessInteraction returns the interviewer's reply to userInput given
	// the running transcript. Directives are flow-control instructions such
	// as "move to the next question" or "conclude the interview".
	ProcessInteraction(ctx context.Context, history []models.Message, userInput string, directives []string) (string, error)

	// EvaluateFinalPerformance returns the raw evaluation text. The caller
	// extracts and parses the embedded JSON object.
	EvaluateFinalPerformance(ctx context.Context, transcript string, ic InterviewContext, reference []ReferenceQuestion) (string, error)
}
