package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/utils"
	"gorm.io/gorm"
)

type InterviewQuestionRepository interface {
	CreateBatch(ctx context.Context, rows []models.InterviewQuestion) error
	ListBySession(ctx context.Context, sessionID string) ([]models.InterviewQuestion, error)
	GetBySessionOrder(ctx context.Context, sessionID string, order int) (*models.InterviewQuestion, error)
	Update(ctx context.Context, row *models.InterviewQuestion) error
}

type interviewQuestionRepo struct {
	db *gorm.DB
}

func NewInterviewQuestionRepo(db *gorm.DB) InterviewQuestionRepository {
	return &interviewQuestionRepo{db: db}
}

func (r *interviewQuestionRepo) CreateBatch(ctx context.Context, rows []models.InterviewQuestion) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *interviewQuestionRepo) ListBySession(ctx context.Context, sessionID string) ([]models.InterviewQuestion, error) {
	var rows []models.InterviewQuestion
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("session_id = ?", sessionID).
		Order("question_order ASC").
		Find(&rows).Error
	return rows, err
}

func (r *interviewQuestionRepo) GetBySessionOrder(ctx context.Context, sessionID string, order int) (*models.InterviewQuestion, error) {
	var row models.InterviewQuestion
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND question_order = ?", sessionID, order).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *interviewQuestionRepo) Update(ctx context.Context, row *models.InterviewQuestion) error {
	return r.db.WithContext(ctx).Save(row).Error
}
