package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/prompts"
	"github.com/yoockh/mockmate/internal/providers/llm"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/utils"
)

// TurnThreshold is the number of interaction turns spent on one question
// before the machine advances to the next question or concludes.
const TurnThreshold = 10

// linkRetryLimit bounds regeneration attempts when the collaborator echoes a
// raw URL into interviewer-facing text.
const linkRetryLimit = 3

// EvaluationQueue hands a finished session to the background evaluation
// pipeline. Enqueue must return quickly; delivery failures are logged by the
// caller, never surfaced to the student.
type EvaluationQueue interface {
	Enqueue(ctx context.Context, sessionID, userID string) error
}

type CreateSessionParams struct {
	Type       models.InterviewType
	Domain     string
	Difficulty string
	Topics     []string
}

// SessionDetail is a session with its linked question rows, plus any
// requested topics that had no matching catalog question at all.
type SessionDetail struct {
	*models.InterviewSession
	Questions     []models.InterviewQuestion `json:"questions"`
	SkippedTopics []string                   `json:"skipped_topics,omitempty"`
}

type SessionService interface {
	Create(ctx context.Context, userID string, p CreateSessionParams) (*SessionDetail, error)
	Get(ctx context.Context, sessionID, userID string, role models.UserRole) (*SessionDetail, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error)
	Interact(ctx context.Context, sessionID, userID, message string) (*models.InterviewSession, error)
	RecordAnswer(ctx context.Context, sessionID, userID, answer string) (*models.InterviewQuestion, error)
	UpdateStatus(ctx context.Context, sessionID, userID string, role models.UserRole, next models.SessionStatus) (*models.InterviewSession, error)
}

type sessionService struct {
	users     pgrepo.UserRepository
	questions pgrepo.QuestionRepository
	sessions  pgrepo.SessionRepository
	iqs       pgrepo.InterviewQuestionRepository
	collab    llm.Collaborator
	queue     EvaluationQueue
	log       *logrus.Logger
}

func NewSessionService(
	users pgrepo.UserRepository,
	questions pgrepo.QuestionRepository,
	sessions pgrepo.SessionRepository,
	iqs pgrepo.InterviewQuestionRepository,
	collab llm.Collaborator,
	queue EvaluationQueue,
	log *logrus.Logger,
) SessionService {
	if log == nil {
		log = logrus.New()
	}
	return &sessionService{
		users:     users,
		questions: questions,
		sessions:  sessions,
		iqs:       iqs,
		collab:    collab,
		queue:     queue,
		log:       log,
	}
}

func (s *sessionService) Create(ctx context.Context, userID string, p CreateSessionParams) (*SessionDetail, error) {
	const op = "SessionService.Create"

	if userID == "" || p.Type == "" || p.Domain == "" || p.Difficulty == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id, type, domain, and difficulty are required", nil)
	}

	// A stale or forged token may reference a user that no longer exists.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if user.Status == models.UserBanned {
		return nil, utils.E(utils.CodeForbidden, op, "account is banned", nil)
	}

	selected, skipped, err := s.selectQuestions(ctx, p)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to select questions", err)
	}
	if len(skipped) > 0 {
		s.log.WithFields(logrus.Fields{
			"user_id":        userID,
			"domain":         p.Domain,
			"difficulty":     p.Difficulty,
			"skipped_topics": skipped,
		}).Warn("no catalog question matched requested topics")
	}

	opening := s.openingMessage(ctx, p, selected)

	now := time.Now().UTC()
	questionIDs := make([]string, 0, len(selected))
	for _, q := range selected {
		questionIDs = append(questionIDs, q.ID)
	}

	sess := &models.InterviewSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       p.Type,
		Domain:     p.Domain,
		Difficulty: p.Difficulty,
		Topics:     pq.StringArray(p.Topics),
		Status:     models.SessionInProgress,
		Messages: datatypes.NewJSONSlice([]models.Message{
			{Role: models.MessageModel, Parts: []string{opening}},
		}),
		Metadata: datatypes.NewJSONType(models.SessionMeta{
			CurrentQuestionIndex: 0,
			CounterQuestionCount: 0,
			TotalQuestions:       len(selected),
			QuestionIDs:          questionIDs,
		}),
		StartedAt: &now,
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}

	rows := make([]models.InterviewQuestion, 0, len(selected))
	for i, q := range selected {
		status := models.InterviewQuestionPending
		if i == 0 {
			status = models.InterviewQuestionAsked
		}
		rows = append(rows, models.InterviewQuestion{
			ID:         uuid.NewString(),
			SessionID:  sess.ID,
			QuestionID: q.ID,
			Order:      i,
			Status:     status,
		})
	}
	if err := s.iqs.CreateBatch(ctx, rows); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to link session questions", err)
	}

	detail, err := s.loadDetail(ctx, sess)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load session detail", err)
	}
	detail.SkippedTopics = skipped
	return detail, nil
}

// selectQuestions picks one ACTIVE question per requested topic, falling back
// to any-topic within {domain, difficulty} when the topic has no match.
// Topics with no match at all are returned as skipped.
func (s *sessionService) selectQuestions(ctx context.Context, p CreateSessionParams) ([]models.Question, []string, error) {
	var selected []models.Question
	var skipped []string

	for _, topic := range p.Topics {
		q, err := s.questions.PickRandomActive(ctx, p.Domain, p.Difficulty, topic)
		if errors.Is(err, utils.ErrNotFound) {
			q, err = s.questions.PickRandomActive(ctx, p.Domain, p.Difficulty, "")
		}
		if errors.Is(err, utils.ErrNotFound) {
			skipped = append(skipped, topic)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		selected = append(selected, *q)
	}
	return selected, skipped, nil
}

func (s *sessionService) openingMessage(ctx context.Context, p CreateSessionParams, selected []models.Question) string {
	ic := llm.InterviewContext{
		Type:       p.Type,
		Domain:     p.Domain,
		Difficulty: p.Difficulty,
		Topics:     p.Topics,
	}

	var starting *llm.StartingQuestion
	if len(selected) > 0 {
		starting = &llm.StartingQuestion{
			Title:            selected[0].Title,
			ProblemStatement: selected[0].ProblemStatement,
		}
	}

	opening, err := s.sanitizedReply(func() (string, error) {
		return s.collab.GenerateInitialGreeting(ctx, ic, starting)
	})
	if err == nil && strings.TrimSpace(opening) != "" {
		return opening
	}
	if err != nil {
		s.log.WithError(err).Warn("collaborator greeting failed, using templated fallback")
	}

	if starting != nil {
		return fmt.Sprintf(
			"Welcome to your %s interview. Let's begin with the first question:\n\n%s\n\n%s",
			strings.ToLower(p.Domain), starting.Title, starting.ProblemStatement)
	}
	return fmt.Sprintf(
		"Welcome to your %s interview. Tell me a bit about your background and we'll get started.",
		strings.ToLower(p.Domain))
}

func (s *sessionService) Get(ctx context.Context, sessionID, userID string, role models.UserRole) (*SessionDetail, error) {
	const op = "SessionService.Get"

	sess, err := s.loadOwned(ctx, op, sessionID, userID, role == models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	detail, err := s.loadDetail(ctx, sess)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load session detail", err)
	}
	return detail, nil
}

func (s *sessionService) ListForUser(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error) {
	const op = "SessionService.ListForUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	rows, err := s.sessions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return rows, nil
}

func (s *sessionService) Interact(ctx context.Context, sessionID, userID, message string) (*models.InterviewSession, error) {
	const op = "SessionService.Interact"

	if strings.TrimSpace(message) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "message is required", nil)
	}

	sess, err := s.loadOwned(ctx, op, sessionID, userID, false)
	if err != nil {
		return nil, err
	}

	if sess.Status != models.SessionCreated && sess.Status != models.SessionInProgress {
		return nil, utils.SessionNotActive(op, string(sess.Status))
	}
	if sess.Status == models.SessionCreated {
		now := time.Now().UTC()
		sess.Status = models.SessionInProgress
		sess.StartedAt = &now
	}

	meta := sess.Metadata.Data()
	meta.CounterQuestionCount++

	var directives []string
	completed := false

	if meta.CounterQuestionCount >= TurnThreshold {
		meta.CounterQuestionCount = 0
		if meta.CurrentQuestionIndex+1 < meta.TotalQuestions {
			meta.CurrentQuestionIndex++
			directives = append(directives, s.advanceDirective(ctx, sess, &meta))
		} else {
			completed = true
			directives = append(directives, "The interview is over; thank the candidate briefly and conclude.")
		}
	}

	history := []models.Message(sess.Messages)
	reply, err := s.sanitizedReply(func() (string, error) {
		return s.collab.ProcessInteraction(ctx, history, message, directives)
	})
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "interviewer is unavailable", err)
	}

	if strings.Contains(reply, prompts.CompletionSentinel) {
		completed = true
		reply = strings.TrimSpace(strings.ReplaceAll(reply, prompts.CompletionSentinel, ""))
	}

	sess.Messages = append(sess.Messages,
		models.Message{Role: models.MessageUser, Parts: []string{message}},
		models.Message{Role: models.MessageModel, Parts: []string{reply}},
	)
	sess.Metadata = datatypes.NewJSONType(meta)

	if completed {
		now := time.Now().UTC()
		sess.Status = models.SessionSubmitted
		sess.CompletedAt = &now
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist session", err)
	}

	if completed {
		s.scheduleEvaluation(ctx, sess.ID, sess.UserID)
	}
	return sess, nil
}

// advanceDirective marks the next question ASKED, rotates the session's
// topics so the active one is first, and returns the move-on instruction for
// the collaborator.
func (s *sessionService) advanceDirective(ctx context.Context, sess *models.InterviewSession, meta *models.SessionMeta) string {
	if iq, err := s.iqs.GetBySessionOrder(ctx, sess.ID, meta.CurrentQuestionIndex); err == nil {
		iq.Status = models.InterviewQuestionAsked
		if err := s.iqs.Update(ctx, iq); err != nil {
			s.log.WithError(err).Warn("failed to mark interview question asked")
		}
	}

	if meta.CurrentQuestionIndex >= len(meta.QuestionIDs) {
		return "Move on to the next part of the interview."
	}
	next, err := s.questions.GetByID(ctx, meta.QuestionIDs[meta.CurrentQuestionIndex])
	if err != nil {
		return "Move on to the next question."
	}

	if next.Topic != "" {
		rotated := []string{next.Topic}
		for _, t := range sess.Topics {
			if t != next.Topic {
				rotated = append(rotated, t)
			}
		}
		sess.Topics = pq.StringArray(rotated)
	}

	return fmt.Sprintf("Move to the next question.\nQuestion: %s\n%s", next.Title, next.ProblemStatement)
}

func (s *sessionService) RecordAnswer(ctx context.Context, sessionID, userID, answer string) (*models.InterviewQuestion, error) {
	const op = "SessionService.RecordAnswer"

	if strings.TrimSpace(answer) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "answer is required", nil)
	}

	sess, err := s.loadOwned(ctx, op, sessionID, userID, false)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.SessionCreated && sess.Status != models.SessionInProgress {
		return nil, utils.SessionNotActive(op, string(sess.Status))
	}

	meta := sess.Metadata.Data()
	iq, err := s.iqs.GetBySessionOrder(ctx, sessionID, meta.CurrentQuestionIndex)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no active question for this session", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load active question", err)
	}

	iq.UserAnswer = answer
	iq.Status = models.InterviewQuestionAsked
	if err := s.iqs.Update(ctx, iq); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record answer", err)
	}
	return iq, nil
}

func (s *sessionService) UpdateStatus(ctx context.Context, sessionID, userID string, role models.UserRole, next models.SessionStatus) (*models.InterviewSession, error) {
	const op = "SessionService.UpdateStatus"

	sess, err := s.loadOwned(ctx, op, sessionID, userID, role == models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if !sess.Status.CanTransitionTo(next) {
		return nil, utils.InvalidTransition(op, string(sess.Status), string(next))
	}

	updates := map[string]any{}
	now := time.Now().UTC()
	if next == models.SessionInProgress && sess.StartedAt == nil {
		updates["started_at"] = now
	}
	if next == models.SessionSubmitted {
		updates["completed_at"] = now
	}

	ok, err := s.sessions.UpdateStatusFrom(ctx, sessionID, sess.Status, next, updates)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update status", err)
	}
	if !ok {
		// Another writer moved the session between our read and write.
		return nil, utils.E(utils.CodeConflict, op, "session status changed concurrently", nil)
	}

	if next == models.SessionSubmitted {
		s.scheduleEvaluation(ctx, sessionID, sess.UserID)
	}

	out, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to reload session", err)
	}
	return out, nil
}

// scheduleEvaluation is fire-and-forget: queue failures are logged, never
// returned, and the session stays SUBMITTED for an explicit retry.
func (s *sessionService) scheduleEvaluation(ctx context.Context, sessionID, userID string) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, sessionID, userID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).
			Error("failed to enqueue evaluation")
	}
}

func (s *sessionService) sanitizedReply(generate func() (string, error)) (string, error) {
	reply, err := generate()
	if err != nil {
		return "", err
	}
	for attempt := 0; attempt < linkRetryLimit && llm.ContainsURL(reply); attempt++ {
		regenerated, rerr := generate()
		if rerr != nil {
			break
		}
		reply = regenerated
	}
	if llm.ContainsURL(reply) {
		reply = llm.StripURLs(reply)
	}
	return reply, nil
}

func (s *sessionService) loadOwned(ctx context.Context, op, sessionID, userID string, adminOverride bool) (*models.InterviewSession, error) {
	if sessionID == "" || userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id and user_id are required", nil)
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if sess.UserID != userID && !adminOverride {
		return nil, utils.AccessDenied(op)
	}
	return sess, nil
}

func (s *sessionService) loadDetail(ctx context.Context, sess *models.InterviewSession) (*SessionDetail, error) {
	rows, err := s.iqs.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{InterviewSession: sess, Questions: rows}, nil
}
