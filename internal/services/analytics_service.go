package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/mockmate/internal/cache"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/utils"
)

const overviewTTL = 5 * time.Minute

type AnalyticsOverview struct {
	SessionsByStatus []pgrepo.StatusCount `json:"sessions_by_status"`
	ScoresByDomain   []pgrepo.ScoreRollup `json:"scores_by_domain"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

type AnalyticsService interface {
	Overview(ctx context.Context) (*AnalyticsOverview, error)
}

type analyticsService struct {
	sessions pgrepo.SessionRepository
	cache    cache.Cache // nil disables caching
	log      *logrus.Logger
}

func NewAnalyticsService(sessions pgrepo.SessionRepository, c cache.Cache, log *logrus.Logger) AnalyticsService {
	if log == nil {
		log = logrus.New()
	}
	return &analyticsService{sessions: sessions, cache: c, log: log}
}

func (s *analyticsService) Overview(ctx context.Context) (*AnalyticsOverview, error) {
	const op = "AnalyticsService.Overview"

	if s.cache != nil {
		var cached AnalyticsOverview
		if hit, err := s.cache.GetJSON(ctx, cache.KeyAnalyticsOverview, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	byStatus, err := s.sessions.CountByStatus(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count sessions", err)
	}
	scores, err := s.sessions.AverageScores(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to aggregate scores", err)
	}

	out := &AnalyticsOverview{
		SessionsByStatus: byStatus,
		ScoresByDomain:   scores,
		GeneratedAt:      time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.KeyAnalyticsOverview, out, overviewTTL); err != nil {
			s.log.WithError(err).Warn("failed to cache analytics overview")
		}
	}
	return out, nil
}
