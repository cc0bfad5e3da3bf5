package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/providers/llm"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/utils"
)

// referenceQuestionLimit bounds rubric context so the evaluation prompt does
// not grow with the catalog.
const referenceQuestionLimit = 50

const snapshotTitleLimit = 100

// StatusPublisher broadcasts evaluation lifecycle events on the session's
// status channel so dashboards learn about report readiness without polling.
// Nil is a valid publisher.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, sessionID, event string)
}

type EvaluationService interface {
	// EvaluateSession runs the full pipeline for a SUBMITTED session and
	// moves it to PENDING_REVIEW. userID "" skips the ownership check (used
	// by background workers and admin re-triggers).
	EvaluateSession(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error)
}

type evaluationService struct {
	sessions  pgrepo.SessionRepository
	questions pgrepo.QuestionRepository
	iqs       pgrepo.InterviewQuestionRepository
	collab    llm.Collaborator
	events    StatusPublisher
	log       *logrus.Logger
}

func NewEvaluationService(
	sessions pgrepo.SessionRepository,
	questions pgrepo.QuestionRepository,
	iqs pgrepo.InterviewQuestionRepository,
	collab llm.Collaborator,
	events StatusPublisher,
	log *logrus.Logger,
) EvaluationService {
	if log == nil {
		log = logrus.New()
	}
	return &evaluationService{
		sessions:  sessions,
		questions: questions,
		iqs:       iqs,
		collab:    collab,
		events:    events,
		log:       log,
	}
}

func (s *evaluationService) EvaluateSession(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error) {
	const op = "EvaluationService.EvaluateSession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if userID != "" && sess.UserID != userID {
		return nil, utils.AccessDenied(op)
	}
	if sess.Status != models.SessionSubmitted {
		return nil, utils.E(utils.CodeConflict, op,
			fmt.Sprintf("session must be SUBMITTED to evaluate (status %s)", sess.Status), nil)
	}

	s.publish(ctx, sessionID, "evaluating")

	result := s.runCollaborator(ctx, sess)

	feedback, err := json.Marshal(result)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode evaluation", err)
	}

	// Claim the SUBMITTED -> PENDING_REVIEW edge before writing snapshot
	// rows; if a concurrent evaluation already claimed it, discard ours.
	claimed, err := s.sessions.UpdateStatusFrom(ctx, sessionID,
		models.SessionSubmitted, models.SessionPendingReview, map[string]any{
			"score":    result.OverallScore,
			"feedback": datatypes.JSON(feedback),
		})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist evaluation", err)
	}
	if !claimed {
		s.log.WithField("session_id", sessionID).
			Info("evaluation already completed by a concurrent run, discarding result")
		out, err := s.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to reload session", err)
		}
		return out, nil
	}

	if err := s.writeSnapshots(ctx, sess, result); err != nil {
		// The session already carries the full feedback blob; snapshot rows
		// are denormalized detail, so log and keep going.
		s.log.WithError(err).WithField("session_id", sessionID).
			Error("failed to write question snapshots")
	}

	s.publish(ctx, sessionID, "evaluated")

	out, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to reload session", err)
	}
	return out, nil
}

// runCollaborator invokes the evaluator and parses its output. Every failure
// mode degrades to the safe fallback structure; nothing propagates.
func (s *evaluationService) runCollaborator(ctx context.Context, sess *models.InterviewSession) models.EvaluationResult {
	ic := llm.InterviewContext{
		Type:       sess.Type,
		Domain:     sess.Domain,
		Difficulty: sess.Difficulty,
		Topics:     sess.Topics,
	}

	reference, err := s.referenceQuestions(ctx, sess)
	if err != nil {
		s.log.WithError(err).Warn("failed to load reference questions, evaluating without rubric context")
	}

	raw, err := s.collab.EvaluateFinalPerformance(ctx, serializeTranscript(sess.Messages), ic, reference)
	if err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID).
			Warn("collaborator evaluation failed, using fallback result")
		return models.FallbackEvaluation()
	}

	payload, err := utils.ExtractJSONObject(raw)
	if err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID).
			Warn("no JSON object in collaborator output, using fallback result")
		return models.FallbackEvaluation()
	}

	var result models.EvaluationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID).
			Warn("malformed evaluation JSON, using fallback result")
		return models.FallbackEvaluation()
	}

	return normalizeEvaluation(result)
}

func (s *evaluationService) referenceQuestions(ctx context.Context, sess *models.InterviewSession) ([]llm.ReferenceQuestion, error) {
	rows, err := s.questions.List(ctx, pgrepo.QuestionFilter{
		Domain:      sess.Domain,
		Category:    sess.Type.QuestionCategory(),
		Status:      models.QuestionActive,
		CatalogOnly: true,
	}, referenceQuestionLimit)
	if err != nil {
		return nil, err
	}

	out := make([]llm.ReferenceQuestion, 0, len(rows))
	for _, q := range rows {
		out = append(out, llm.ReferenceQuestion{
			Title:            q.Title,
			ProblemStatement: q.ProblemStatement,
			IdealAnswer:      q.IdealAnswer,
			Rubric:           q.Rubric,
		})
	}
	return out, nil
}

// writeSnapshots records each extracted Q&A pair as a fresh snapshot Question
// plus a linked InterviewQuestion row. Transcript-derived questions do not
// need to match any catalog entry.
func (s *evaluationService) writeSnapshots(ctx context.Context, sess *models.InterviewSession, result models.EvaluationResult) error {
	if len(result.Questions) == 0 {
		return nil
	}

	meta := sess.Metadata.Data()
	rows := make([]models.InterviewQuestion, 0, len(result.Questions))

	for i, eq := range result.Questions {
		q := &models.Question{
			ID:               uuid.NewString(),
			Title:            truncate(eq.Question, snapshotTitleLimit),
			Category:         sess.Type.QuestionCategory(),
			Domain:           sess.Domain,
			Difficulty:       sess.Difficulty,
			ProblemStatement: eq.Question,
			IdealAnswer:      eq.IdealAnswer,
			Status:           models.QuestionDraft,
			Source:           models.SourceSnapshot,
		}
		if err := s.questions.Create(ctx, q); err != nil {
			return err
		}

		evalJSON, err := json.Marshal(eq.Evaluation)
		if err != nil {
			return err
		}
		score := eq.Score
		rows = append(rows, models.InterviewQuestion{
			ID:         uuid.NewString(),
			SessionID:  sess.ID,
			QuestionID: q.ID,
			Order:      meta.TotalQuestions + i,
			Status:     models.InterviewQuestionAsked,
			UserAnswer: eq.UserAnswer,
			Score:      &score,
			Evaluation: datatypes.JSON(evalJSON),
		})
	}

	return s.iqs.CreateBatch(ctx, rows)
}

func (s *evaluationService) publish(ctx context.Context, sessionID, event string) {
	if s.events != nil {
		s.events.PublishStatus(ctx, sessionID, event)
	}
}

func serializeTranscript(messages []models.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Text())
		sb.WriteString("\n")
	}
	return sb.String()
}

// normalizeEvaluation clamps scores to [0,100] and fills nil collections so
// the stored blob always renders.
func normalizeEvaluation(r models.EvaluationResult) models.EvaluationResult {
	r.OverallScore = clampScore(r.OverallScore)
	if r.HireVerdict == "" {
		r.HireVerdict = "NO_DECISION"
	}
	if r.SkillMetrics == nil {
		r.SkillMetrics = map[string]float64{}
	}
	if r.BehavioralMetrics == nil {
		r.BehavioralMetrics = map[string]float64{}
	}
	if r.CodeReview.Comments == nil {
		r.CodeReview.Comments = []string{}
	}
	if r.ImprovementPlan == nil {
		r.ImprovementPlan = []string{}
	}
	if r.Questions == nil {
		r.Questions = []models.EvaluatedQuestion{}
	}
	for i := range r.Questions {
		r.Questions[i].Score = clampScore(r.Questions[i].Score)
	}
	return r
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
