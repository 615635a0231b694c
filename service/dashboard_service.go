package service

import (
	"context"

	"resourcehub/cache"
	"resourcehub/common"
	"resourcehub/repository"

	"github.com/google/uuid"
)

type RatedEntry struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Rating float64   `json:"rating"`
}

type DownloadedEntry struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Downloads int64     `json:"downloads"`
}

type DashboardService interface {
	TopRated(ctx context.Context, n int) ([]RatedEntry, error)
	MostDownloaded(ctx context.Context, n int) ([]DownloadedEntry, error)
}

type DashboardServiceImpl struct {
	resources repository.ResourceRepository
	rankings  *cache.RankingsCache
}

func NewDashboardService(resources repository.ResourceRepository, rankings *cache.RankingsCache) DashboardService {
	return &DashboardServiceImpl{resources: resources, rankings: rankings}
}

// TopRated 默认榜单走 Redis 缓存，未命中或自定义长度时落库
func (s *DashboardServiceImpl) TopRated(ctx context.Context, n int) ([]RatedEntry, error) {
	cached := n <= 0 || n == repository.DefaultTopN
	if cached {
		var entries []RatedEntry
		if s.rankings.Get(ctx, cache.KeyTopRated, &entries) {
			return entries, nil
		}
	}
	resources, err := s.resources.TopRated(n)
	if err != nil {
		return nil, common.FromDB(err, "resources")
	}
	entries := make([]RatedEntry, 0, len(resources))
	for _, r := range resources {
		entries = append(entries, RatedEntry{ID: r.ID, Title: r.Title, Rating: r.AverageRating})
	}
	if cached {
		s.rankings.Set(ctx, cache.KeyTopRated, entries)
	}
	return entries, nil
}

func (s *DashboardServiceImpl) MostDownloaded(ctx context.Context, n int) ([]DownloadedEntry, error) {
	cached := n <= 0 || n == repository.DefaultTopN
	if cached {
		var entries []DownloadedEntry
		if s.rankings.Get(ctx, cache.KeyMostDownloaded, &entries) {
			return entries, nil
		}
	}
	resources, err := s.resources.MostDownloaded(n)
	if err != nil {
		return nil, common.FromDB(err, "resources")
	}
	entries := make([]DownloadedEntry, 0, len(resources))
	for _, r := range resources {
		entries = append(entries, DownloadedEntry{ID: r.ID, Title: r.Title, Downloads: r.DownloadCount})
	}
	if cached {
		s.rankings.Set(ctx, cache.KeyMostDownloaded, entries)
	}
	return entries, nil
}
