package persistence

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/skillora/internal/application/service"
)

const skillStatsKey = "skillora:stats:skills"

type redisSkillStatsRepo struct {
	rdb *redis.Client
}

// NewRedisSkillStatsRepo keeps completion counts in one sorted set scored by
// count.
func NewRedisSkillStatsRepo(rdb *redis.Client) service.SkillStatsStore {
	return &redisSkillStatsRepo{rdb: rdb}
}

func (r *redisSkillStatsRepo) Increment(ctx context.Context, skill string, by int64) error {
	return r.rdb.ZIncrBy(ctx, skillStatsKey, float64(by), skill).Err()
}

func (r *redisSkillStatsRepo) Top(ctx context.Context, limit int) ([]service.SkillCount, error) {
	zs, err := r.rdb.ZRevRangeWithScores(ctx, skillStatsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]service.SkillCount, 0, len(zs))
	for _, z := range zs {
		skill, _ := z.Member.(string)
		out = append(out, service.SkillCount{Skill: skill, Completions: int64(z.Score)})
	}
	return out, nil
}
