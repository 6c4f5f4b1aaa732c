// Package memory holds process-local goal and achievement stores. The server
// uses them when no database DSN is configured; tests use them everywhere.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/khoahotran/skillora/internal/domain/achievement"
	"github.com/khoahotran/skillora/internal/domain/goal"
)

type GoalRepo struct {
	mu   sync.Mutex
	docs map[string]*goal.Document
}

func NewGoalRepo() *GoalRepo {
	return &GoalRepo{docs: make(map[string]*goal.Document)}
}

func copyGoalDoc(d *goal.Document) *goal.Document {
	out := *d
	out.Careers = make([]goal.CareerGoal, len(d.Careers))
	for i, c := range d.Careers {
		c.RequiredSkills = append([]string{}, c.RequiredSkills...)
		out.Careers[i] = c
	}
	return &out
}

func (r *GoalRepo) Get(_ context.Context, userKey string) (*goal.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[userKey]
	if !ok {
		return nil, goal.ErrDocumentNotFound
	}
	return copyGoalDoc(d), nil
}

func (r *GoalRepo) Put(_ context.Context, doc *goal.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.UserKey] = copyGoalDoc(doc)
	return nil
}

func (r *GoalRepo) PullByTitle(_ context.Context, userKey, title string) (*goal.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[userKey]
	if !ok {
		return nil, goal.ErrDocumentNotFound
	}
	d.Prune([]string{title})
	d.UpdatedAt = time.Now().UTC()
	return copyGoalDoc(d), nil
}

type AchievementRepo struct {
	mu   sync.Mutex
	docs map[string]*achievement.Document
}

func NewAchievementRepo() *AchievementRepo {
	return &AchievementRepo{docs: make(map[string]*achievement.Document)}
}

func copyAchievementDoc(d *achievement.Document) *achievement.Document {
	out := *d
	out.Achievements = append([]achievement.Record{}, d.Achievements...)
	return &out
}

func (r *AchievementRepo) Get(_ context.Context, userKey string) (*achievement.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[userKey]
	if !ok {
		return nil, achievement.ErrDocumentNotFound
	}
	return copyAchievementDoc(d), nil
}

func (r *AchievementRepo) Put(_ context.Context, doc *achievement.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.UserKey] = copyAchievementDoc(doc)
	return nil
}

func (r *AchievementRepo) AppendMany(_ context.Context, userKey string, records []achievement.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	d, ok := r.docs[userKey]
	if !ok {
		d = &achievement.Document{UserKey: userKey, Achievements: []achievement.Record{}, CreatedAt: now}
		r.docs[userKey] = d
	}
	d.Achievements = append(d.Achievements, records...)
	d.UpdatedAt = now
	return nil
}

func (r *AchievementRepo) PullByTitle(_ context.Context, userKey, title string) (*achievement.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[userKey]
	if !ok {
		return nil, achievement.ErrDocumentNotFound
	}
	kept := make([]achievement.Record, 0, len(d.Achievements))
	for _, a := range d.Achievements {
		if a.Title != title {
			kept = append(kept, a)
		}
	}
	d.Achievements = kept
	d.UpdatedAt = time.Now().UTC()
	return copyAchievementDoc(d), nil
}
