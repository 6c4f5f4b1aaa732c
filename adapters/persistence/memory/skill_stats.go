package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/khoahotran/skillora/internal/application/service"
)

type SkillStats struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewSkillStats() *SkillStats {
	return &SkillStats{counts: make(map[string]int64)}
}

func (s *SkillStats) Increment(_ context.Context, skill string, by int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[skill] += by
	return nil
}

// Top orders by count, then by skill name descending, matching the sorted
// set's tie order.
func (s *SkillStats) Top(_ context.Context, limit int) ([]service.SkillCount, error) {
	s.mu.Lock()
	out := make([]service.SkillCount, 0, len(s.counts))
	for skill, n := range s.counts {
		out = append(out, service.SkillCount{Skill: skill, Completions: n})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Completions != out[j].Completions {
			return out[i].Completions > out[j].Completions
		}
		return out[i].Skill > out[j].Skill
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
