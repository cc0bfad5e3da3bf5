package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/utils"
	"gorm.io/gorm"
)

type StatusCount struct {
	Status   models.SessionStatus `json:"status"`
	Sessions int64                `json:"sessions"`
}

type ScoreRollup struct {
	Domain     string  `json:"domain"`
	Difficulty string  `json:"difficulty"`
	AvgScore   float64 `json:"avg_score"`
	Sessions   int64   `json:"sessions"`
}

type SessionRepository interface {
	Create(ctx context.Context, s *models.InterviewSession) error
	GetByID(ctx context.Context, id string) (*models.InterviewSession, error)
	Save(ctx context.Context, s *models.InterviewSession) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error)
	// UpdateStatusFrom applies updates only while the row is still in the
	// `from` state; false means another writer moved the session first.
	UpdateStatusFrom(ctx context.Context, id string, from, to models.SessionStatus, updates map[string]any) (bool, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	AverageScores(ctx context.Context) ([]ScoreRollup, error)
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.InterviewSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*models.InterviewSession, error) {
	var row models.InterviewSession
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *sessionRepo) Save(ctx context.Context, s *models.InterviewSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *sessionRepo) UpdateStatusFrom(ctx context.Context, id string, from, to models.SessionStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	res := r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *sessionRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Select("status, COUNT(*) AS sessions").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *sessionRepo) AverageScores(ctx context.Context) ([]ScoreRollup, error) {
	var rows []ScoreRollup
	err := r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Select("domain, difficulty, AVG(score) AS avg_score, COUNT(*) AS sessions").
		Where("score IS NOT NULL").
		Group("domain, difficulty").
		Scan(&rows).Error
	return rows, err
}
