package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionFilter struct {
	Domain     string
	Difficulty string
	Topic      string
	Category   models.QuestionCategory
	Status     models.QuestionStatus
	// CatalogOnly excludes transcript-derived snapshot rows.
	CatalogOnly bool
}

type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, f QuestionFilter, limit int) ([]models.Question, error)
	// PickRandomActive returns one uniform-random ACTIVE catalog question for
	// {domain, difficulty, topic}; topic "" matches any topic.
	PickRandomActive(ctx context.Context, domain, difficulty, topic string) (*models.Question, error)
	// UpsertImported inserts questions, updating existing rows that share the
	// (external_source, external_id) dedup key. Returns rows written.
	UpsertImported(ctx context.Context, qs []models.Question) (int64, error)
}

type questionRepo struct {
	db *gorm.DB
}

func NewQuestionRepo(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) Create(ctx context.Context, q *models.Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *questionRepo) Update(ctx context.Context, q *models.Question) error {
	res := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", q.ID).
		Updates(q)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *questionRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Question{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var row models.Question
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *questionRepo) List(ctx context.Context, f QuestionFilter, limit int) ([]models.Question, error) {
	if limit <= 0 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&models.Question{})
	if f.Domain != "" {
		q = q.Where("domain = ?", f.Domain)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.Topic != "" {
		q = q.Where("topic = ?", f.Topic)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CatalogOnly {
		q = q.Where("source <> ?", models.SourceSnapshot)
	}

	var rows []models.Question
	err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *questionRepo) PickRandomActive(ctx context.Context, domain, difficulty, topic string) (*models.Question, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", models.QuestionActive).
		Where("source <> ?", models.SourceSnapshot).
		Where("domain = ? AND difficulty = ?", domain, difficulty)
	if topic != "" {
		q = q.Where("topic = ?", topic)
	}

	var row models.Question
	err := q.Order("RANDOM()").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *questionRepo) UpsertImported(ctx context.Context, qs []models.Question) (int64, error) {
	if len(qs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_source"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "topic", "category", "domain", "difficulty",
			"problem_statement", "ideal_answer", "rubric", "key_concepts",
			"status", "updated_at",
		}),
	}).Create(&qs)
	return res.RowsAffected, res.Error
}
