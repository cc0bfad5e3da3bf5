package models

import "testing"

func TestSessionTransitions(t *testing.T) {
	allowed := []struct{ from, to SessionStatus }{
		{SessionCreated, SessionInProgress},
		{SessionCreated, SessionSubmitted},
		{SessionInProgress, SessionSubmitted},
		{SessionSubmitted, SessionEvaluated},
		{SessionSubmitted, SessionPendingReview},
		{SessionEvaluated, SessionCompleted},
		{SessionEvaluated, SessionReported},
		{SessionPendingReview, SessionEvaluated},
		{SessionPendingReview, SessionReported},
		{SessionReported, SessionCompleted},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to SessionStatus }{
		{SessionSubmitted, SessionCompleted},
		{SessionSubmitted, SessionInProgress},
		{SessionInProgress, SessionCreated},
		{SessionEvaluated, SessionSubmitted},
		{SessionReported, SessionEvaluated},
		{SessionCompleted, SessionReported},
		{SessionCompleted, SessionCreated},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s must be rejected", tc.from, tc.to)
		}
	}

	// COMPLETED is terminal.
	for _, next := range []SessionStatus{
		SessionCreated, SessionInProgress, SessionSubmitted,
		SessionEvaluated, SessionPendingReview, SessionReported, SessionCompleted,
	} {
		if SessionCompleted.CanTransitionTo(next) {
			t.Errorf("COMPLETED must not transition to %s", next)
		}
	}
}

func TestInterviewTypeCategory(t *testing.T) {
	if InterviewTechnical.QuestionCategory() != CategoryTechnical {
		t.Fatalf("TECHNICAL interviews draw from the technical catalog")
	}
	if InterviewHR.QuestionCategory() != CategoryHR {
		t.Fatalf("HR interviews draw from the HR catalog")
	}
}

func TestMessageText(t *testing.T) {
	m := Message{Role: MessageModel, Parts: []string{"Hello, ", "world."}}
	if m.Text() != "Hello, world." {
		t.Fatalf("unexpected text: %q", m.Text())
	}
}
