package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/providers/llm"
	"github.com/yoockh/mockmate/internal/utils"
)

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) PublishStatus(ctx context.Context, sessionID, event string) {
	f.events = append(f.events, event)
}

type evalFixture struct {
	*sessionFixture
	pub  *fakePublisher
	eval EvaluationService
}

func newEvalFixture(t *testing.T) *evalFixture {
	t.Helper()
	f := &evalFixture{sessionFixture: newSessionFixture(t), pub: &fakePublisher{}}
	f.eval = NewEvaluationService(f.sessions, f.qs, f.iqs, f.collab, f.pub, nil)
	return f
}

func (f *evalFixture) seedSubmittedSession(t *testing.T, userID string, totalQuestions int) *models.InterviewSession {
	t.Helper()
	now := time.Now().UTC()
	sess := &models.InterviewSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       models.InterviewTechnical,
		Domain:     "backend",
		Difficulty: "medium",
		Status:     models.SessionSubmitted,
		Messages: datatypes.NewJSONSlice([]models.Message{
			{Role: models.MessageModel, Parts: []string{"Tell me about indexes."}},
			{Role: models.MessageUser, Parts: []string{"They speed up lookups."}},
		}),
		Metadata: datatypes.NewJSONType(models.SessionMeta{
			TotalQuestions: totalQuestions,
		}),
		StartedAt:   &now,
		CompletedAt: &now,
	}
	if err := f.sessions.Create(context.Background(), sess); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return sess
}

func evaluationReply(question string) string {
	payload := models.EvaluationResult{
		OverallScore:    140, // deliberately out of range, must be clamped
		HireVerdict:     "HIRE",
		Summary:         "Solid fundamentals.",
		SkillMetrics:    map[string]float64{"sql": 80},
		ImprovementPlan: []string{"Practice query planning"},
		Questions: []models.EvaluatedQuestion{
			{
				Question:    question,
				UserAnswer:  "They speed up lookups.",
				IdealAnswer: "Indexes trade write cost for read speed.",
				Score:       72,
				Evaluation: models.QuestionEvaluation{
					Strengths: []string{"concise"},
				},
			},
		},
	}
	b, _ := json.Marshal(payload)
	return "Here is my assessment.\n```json\n" + string(b) + "\n```"
}

func TestEvaluateSessionSuccess(t *testing.T) {
	f := newEvalFixture(t)
	user := f.seedUser(t, models.UserActive)
	sess := f.seedSubmittedSession(t, user.ID, 1)

	longQuestion := strings.Repeat("Why do databases use B-tree indexes? ", 5)
	f.collab.evaluateFn = func(ctx context.Context, transcript string, ic llm.InterviewContext, reference []llm.ReferenceQuestion) (string, error) {
		if !strings.Contains(transcript, "model: Tell me about indexes.") {
			t.Errorf("transcript missing interviewer turn: %q", transcript)
		}
		return evaluationReply(longQuestion), nil
	}

	out, err := f.eval.EvaluateSession(context.Background(), sess.ID, user.ID)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if out.Status != models.SessionPendingReview {
		t.Fatalf("expected PENDING_REVIEW, got %s", out.Status)
	}
	if out.Score == nil || *out.Score != 100 {
		t.Fatalf("expected clamped score 100, got %v", out.Score)
	}

	var stored models.EvaluationResult
	if err := json.Unmarshal(out.Feedback, &stored); err != nil {
		t.Fatalf("feedback blob is not valid JSON: %v", err)
	}
	if stored.HireVerdict != "HIRE" || len(stored.Questions) != 1 {
		t.Fatalf("unexpected stored evaluation: %+v", stored)
	}

	// One snapshot question plus its linked row, ordered after the catalog
	// questions.
	iq, err := f.iqs.GetBySessionOrder(context.Background(), sess.ID, 1)
	if err != nil {
		t.Fatalf("snapshot interview question missing: %v", err)
	}
	if iq.Score == nil || *iq.Score != 72 {
		t.Fatalf("expected per-question score 72, got %v", iq.Score)
	}

	snap, err := f.qs.GetByID(context.Background(), iq.QuestionID)
	if err != nil {
		t.Fatalf("snapshot question missing: %v", err)
	}
	if snap.Source != models.SourceSnapshot || snap.Status != models.QuestionDraft {
		t.Fatalf("snapshot must be SNAPSHOT/DRAFT, got %s/%s", snap.Source, snap.Status)
	}
	if len(snap.Title) > 100 {
		t.Fatalf("snapshot title not truncated: %d chars", len(snap.Title))
	}
	if snap.ProblemStatement != longQuestion {
		t.Fatalf("snapshot must keep the full question text")
	}

	if len(f.pub.events) != 2 || f.pub.events[0] != "evaluating" || f.pub.events[1] != "evaluated" {
		t.Fatalf("unexpected status events: %v", f.pub.events)
	}
}

func TestEvaluateSessionFallbackOnCollaboratorError(t *testing.T) {
	f := newEvalFixture(t)
	user := f.seedUser(t, models.UserActive)
	sess := f.seedSubmittedSession(t, user.ID, 1)

	f.collab.evaluateFn = func(ctx context.Context, transcript string, ic llm.InterviewContext, reference []llm.ReferenceQuestion) (string, error) {
		return "", errors.New("model unavailable")
	}

	out, err := f.eval.EvaluateSession(context.Background(), sess.ID, user.ID)
	if err != nil {
		t.Fatalf("evaluate must not fail on collaborator error: %v", err)
	}

	if out.Status != models.SessionPendingReview {
		t.Fatalf("expected PENDING_REVIEW, got %s", out.Status)
	}
	if out.Score == nil || *out.Score != 0 {
		t.Fatalf("expected fallback score 0, got %v", out.Score)
	}

	var stored models.EvaluationResult
	if err := json.Unmarshal(out.Feedback, &stored); err != nil {
		t.Fatalf("fallback feedback is not valid JSON: %v", err)
	}
	if stored.HireVerdict != "NO_DECISION" || stored.Summary != "Evaluation failed" {
		t.Fatalf("unexpected fallback: %+v", stored)
	}
	if stored.SkillMetrics == nil || stored.ImprovementPlan == nil || stored.Questions == nil {
		t.Fatalf("fallback collections must be present: %+v", stored)
	}
}

func TestEvaluateSessionFallbackOnMalformedJSON(t *testing.T) {
	f := newEvalFixture(t)
	user := f.seedUser(t, models.UserActive)
	sess := f.seedSubmittedSession(t, user.ID, 1)

	f.collab.evaluateFn = func(ctx context.Context, transcript string, ic llm.InterviewContext, reference []llm.ReferenceQuestion) (string, error) {
		return "I cannot produce a structured verdict, sorry.", nil
	}

	out, err := f.eval.EvaluateSession(context.Background(), sess.ID, user.ID)
	if err != nil {
		t.Fatalf("evaluate must not fail on unparseable output: %v", err)
	}
	if out.Score == nil || *out.Score != 0 {
		t.Fatalf("expected fallback score 0, got %v", out.Score)
	}
}

func TestEvaluateSessionRequiresSubmitted(t *testing.T) {
	f := newEvalFixture(t)
	user := f.seedUser(t, models.UserActive)
	sess := f.seedSubmittedSession(t, user.ID, 1)
	if ok, err := f.sessions.UpdateStatusFrom(context.Background(), sess.ID,
		models.SessionSubmitted, models.SessionPendingReview, nil); err != nil || !ok {
		t.Fatalf("failed to force PENDING_REVIEW: ok=%v err=%v", ok, err)
	}

	_, err := f.eval.EvaluateSession(context.Background(), sess.ID, user.ID)
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT for non-SUBMITTED session, got %v", err)
	}
	if len(f.pub.events) != 0 {
		t.Fatalf("no status events expected on rejection, got %v", f.pub.events)
	}
}

func TestEvaluateSessionOwnership(t *testing.T) {
	f := newEvalFixture(t)
	owner := f.seedUser(t, models.UserActive)
	intruder := f.seedUser(t, models.UserActive)
	sess := f.seedSubmittedSession(t, owner.ID, 1)

	_, err := f.eval.EvaluateSession(context.Background(), sess.ID, intruder.ID)
	if !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	// Background workers pass an empty user and skip the check.
	f.collab.evaluateFn = func(ctx context.Context, transcript string, ic llm.InterviewContext, reference []llm.ReferenceQuestion) (string, error) {
		return evaluationReply("What is an index?"), nil
	}
	out, err := f.eval.EvaluateSession(context.Background(), sess.ID, "")
	if err != nil {
		t.Fatalf("worker-style evaluate failed: %v", err)
	}
	if out.Status != models.SessionPendingReview {
		t.Fatalf("expected PENDING_REVIEW, got %s", out.Status)
	}
}

func TestEvaluateSessionUsesReferenceQuestions(t *testing.T) {
	f := newEvalFixture(t)
	user := f.seedUser(t, models.UserActive)
	f.seedQuestion(t, "indexes")
	sess := f.seedSubmittedSession(t, user.ID, 1)

	var gotReference []llm.ReferenceQuestion
	f.collab.evaluateFn = func(ctx context.Context, transcript string, ic llm.InterviewContext, reference []llm.ReferenceQuestion) (string, error) {
		gotReference = reference
		return evaluationReply("What is an index?"), nil
	}

	if _, err := f.eval.EvaluateSession(context.Background(), sess.ID, user.ID); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(gotReference) != 1 {
		t.Fatalf("expected 1 reference question, got %d", len(gotReference))
	}
	if gotReference[0].Title == "" {
		t.Fatalf("reference question missing title: %+v", gotReference[0])
	}
}

func TestEvaluateSessionMissing(t *testing.T) {
	f := newEvalFixture(t)
	_, err := f.eval.EvaluateSession(context.Background(), uuid.NewString(), "")
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
