package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yoockh/mockmate/internal/models"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/storage"
	"github.com/yoockh/mockmate/internal/utils"
)

type QuestionInput struct {
	Title            string                  `json:"title" binding:"required"`
	Topic            string                  `json:"topic"`
	Category         models.QuestionCategory `json:"category" binding:"required"`
	Domain           string                  `json:"domain" binding:"required"`
	Difficulty       string                  `json:"difficulty" binding:"required"`
	ProblemStatement string                  `json:"problem_statement"`
	IdealAnswer      string                  `json:"ideal_answer"`
	Rubric           string                  `json:"rubric"`
	KeyConcepts      string                  `json:"key_concepts"`
	Status           models.QuestionStatus   `json:"status"`
}

// ImportItem is one entry of an external question bank. external_id plus the
// import source form the dedup key.
type ImportItem struct {
	ExternalID       string                  `json:"external_id"`
	Title            string                  `json:"title"`
	Topic            string                  `json:"topic"`
	Category         models.QuestionCategory `json:"category"`
	Domain           string                  `json:"domain"`
	Difficulty       string                  `json:"difficulty"`
	ProblemStatement string                  `json:"problem_statement"`
	IdealAnswer      string                  `json:"ideal_answer"`
	Rubric           string                  `json:"rubric"`
	KeyConcepts      string                  `json:"key_concepts"`
}

type QuestionService interface {
	Create(ctx context.Context, in QuestionInput) (*models.Question, error)
	Update(ctx context.Context, id string, in QuestionInput) (*models.Question, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, f pgrepo.QuestionFilter, limit int) ([]models.Question, error)
	Import(ctx context.Context, source string, items []ImportItem) (int64, error)
	// ImportFromObject pulls a JSON question bank from the configured bucket.
	ImportFromObject(ctx context.Context, source, objectName string) (int64, error)
}

type questionService struct {
	questions pgrepo.QuestionRepository
	objects   storage.Downloader // nil when no bucket is configured
}

func NewQuestionService(questions pgrepo.QuestionRepository, objects storage.Downloader) QuestionService {
	return &questionService{questions: questions, objects: objects}
}

func (s *questionService) Create(ctx context.Context, in QuestionInput) (*models.Question, error) {
	const op = "QuestionService.Create"

	status := in.Status
	if status == "" {
		status = models.QuestionDraft
	}

	q := &models.Question{
		ID:               uuid.NewString(),
		Title:            in.Title,
		Topic:            in.Topic,
		Category:         in.Category,
		Domain:           in.Domain,
		Difficulty:       in.Difficulty,
		ProblemStatement: in.ProblemStatement,
		IdealAnswer:      in.IdealAnswer,
		Rubric:           in.Rubric,
		KeyConcepts:      in.KeyConcepts,
		Status:           status,
		Source:           models.SourceAdmin,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create question", err)
	}
	return q, nil
}

func (s *questionService) Update(ctx context.Context, id string, in QuestionInput) (*models.Question, error) {
	const op = "QuestionService.Update"

	existing, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "question not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load question", err)
	}

	existing.Title = in.Title
	existing.Topic = in.Topic
	existing.Category = in.Category
	existing.Domain = in.Domain
	existing.Difficulty = in.Difficulty
	existing.ProblemStatement = in.ProblemStatement
	existing.IdealAnswer = in.IdealAnswer
	existing.Rubric = in.Rubric
	existing.KeyConcepts = in.KeyConcepts
	if in.Status != "" {
		existing.Status = in.Status
	}

	if err := s.questions.Update(ctx, existing); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update question", err)
	}
	return existing, nil
}

func (s *questionService) Delete(ctx context.Context, id string) error {
	const op = "QuestionService.Delete"

	err := s.questions.Delete(ctx, id)
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, "question not found", err)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete question", err)
	}
	return nil
}

func (s *questionService) Get(ctx context.Context, id string) (*models.Question, error) {
	const op = "QuestionService.Get"

	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "question not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load question", err)
	}
	return q, nil
}

func (s *questionService) List(ctx context.Context, f pgrepo.QuestionFilter, limit int) ([]models.Question, error) {
	const op = "QuestionService.List"

	rows, err := s.questions.List(ctx, f, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list questions", err)
	}
	return rows, nil
}

func (s *questionService) Import(ctx context.Context, source string, items []ImportItem) (int64, error) {
	const op = "QuestionService.Import"

	if source == "" {
		return 0, utils.E(utils.CodeInvalidArgument, op, "import source is required", nil)
	}

	now := time.Now().UTC()
	qs := make([]models.Question, 0, len(items))
	for _, item := range items {
		if item.ExternalID == "" || item.Title == "" {
			return 0, utils.E(utils.CodeInvalidArgument, op, "every item needs external_id and title", nil)
		}
		extSource := source
		extID := item.ExternalID
		qs = append(qs, models.Question{
			ID:               uuid.NewString(),
			Title:            item.Title,
			Topic:            item.Topic,
			Category:         item.Category,
			Domain:           item.Domain,
			Difficulty:       item.Difficulty,
			ProblemStatement: item.ProblemStatement,
			IdealAnswer:      item.IdealAnswer,
			Rubric:           item.Rubric,
			KeyConcepts:      item.KeyConcepts,
			Status:           models.QuestionActive,
			Source:           models.SourceImported,
			ExternalSource:   &extSource,
			ExternalID:       &extID,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	n, err := s.questions.UpsertImported(ctx, qs)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to import questions", err)
	}
	return n, nil
}

func (s *questionService) ImportFromObject(ctx context.Context, source, objectName string) (int64, error) {
	const op = "QuestionService.ImportFromObject"

	if s.objects == nil {
		return 0, utils.E(utils.CodeUnavailable, op, "object storage is not configured", nil)
	}
	if objectName == "" {
		return 0, utils.E(utils.CodeInvalidArgument, op, "object name is required", nil)
	}

	data, err := s.objects.Download(ctx, objectName)
	if err != nil {
		return 0, utils.E(utils.CodeUnavailable, op, "failed to download question bank", err)
	}

	var items []ImportItem
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, utils.E(utils.CodeInvalidArgument, op, "question bank is not valid JSON", err)
	}
	return s.Import(ctx, source, items)
}
