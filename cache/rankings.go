package cache

import (
	"context"
	"encoding/json"
	"time"

	"resourcehub/config"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	KeyTopRated       = "rankings:top_rated"
	KeyMostDownloaded = "rankings:most_downloaded"

	boardTTL = 30 * time.Second
)

// RankingsCache 缓存榜单的序列化结果。Redis 不可用时所有方法安静降级，
// 调用方直接落库查询。
type RankingsCache struct {
	client *redis.Client
}

func NewRankingsCache(cfg *config.Config) *RankingsCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &RankingsCache{client: client}
}

// NewNoopRankingsCache 给不接 Redis 的场景（如测试）用
func NewNoopRankingsCache() *RankingsCache {
	return &RankingsCache{}
}

func (c *RankingsCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).Warn("rankings cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

func (c *RankingsCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, boardTTL).Err(); err != nil {
		log.WithError(err).Warn("rankings cache set failed")
	}
}

func (c *RankingsCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.WithError(err).Warn("rankings cache invalidate failed")
	}
}
