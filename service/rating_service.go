package service

import (
	"context"
	"fmt"

	"resourcehub/cache"
	"resourcehub/common"
	"resourcehub/pkg/metrics"
	"resourcehub/repository"

	"github.com/google/uuid"
)

const (
	ScoreMin = 1
	ScoreMax = 5
)

type RatingService interface {
	// Rate 写入或覆盖某用户对某资源的评分，返回重算后的平均分
	Rate(ctx context.Context, resourceID, userID uuid.UUID, score int, feedback string) (float64, error)
}

type RatingServiceImpl struct {
	ratings  repository.RatingRepository
	users    repository.UserRepository
	rankings *cache.RankingsCache
}

func NewRatingService(ratings repository.RatingRepository, users repository.UserRepository, rankings *cache.RankingsCache) RatingService {
	return &RatingServiceImpl{ratings: ratings, users: users, rankings: rankings}
}

func (s *RatingServiceImpl) Rate(ctx context.Context, resourceID, userID uuid.UUID, score int, feedback string) (float64, error) {
	if score < ScoreMin || score > ScoreMax {
		return 0, fmt.Errorf("score must be between %d and %d: %w", ScoreMin, ScoreMax, common.ErrInvalidArgument)
	}
	ok, err := s.users.Exists(userID)
	if err != nil {
		return 0, common.FromDB(err, "user")
	}
	if !ok {
		return 0, fmt.Errorf("user: %w", common.ErrNotFound)
	}
	average, err := s.ratings.Upsert(resourceID, userID, score, feedback)
	if err != nil {
		return 0, common.FromDB(err, "resource")
	}
	metrics.RatingsTotal.Inc()
	s.rankings.Invalidate(ctx, cache.KeyTopRated)
	return average, nil
}
