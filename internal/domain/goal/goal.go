package goal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CareerGoal is one entry of a user's goal list. Title is the natural key
// within a single list.
type CareerGoal struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RelevanceScore float64   `json:"relevance_score"`
	RequiredSkills []string  `json:"required_skills"`
	Sector         string    `json:"sector"`
	AddedAt        time.Time `json:"added_at"`
}

// Document is the per-user goal list, looked up by the user's email.
type Document struct {
	UserKey   string       `json:"user_key"`
	Careers   []CareerGoal `json:"careers"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrDocumentNotFound = errors.New("goal document not found")
)

func (g *CareerGoal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// RequiresSkill reports whether skill is one of the goal's required skills.
// Comparison is exact and case-sensitive.
func (g *CareerGoal) RequiresSkill(skill string) bool {
	for _, s := range g.RequiredSkills {
		if s == skill {
			return true
		}
	}
	return false
}

func NewDocument(userKey string, now time.Time) *Document {
	return &Document{
		UserKey:   userKey,
		Careers:   []CareerGoal{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (d *Document) HasTitle(title string) bool {
	for _, c := range d.Careers {
		if c.Title == title {
			return true
		}
	}
	return false
}

// Merge appends every proposed goal whose title is not already present,
// in input order, and returns how many were added. Existing entries are
// never modified. Missing IDs, timestamps and skill slices are filled in.
func (d *Document) Merge(proposed []CareerGoal, now time.Time) int {
	added := 0
	for _, p := range proposed {
		if d.HasTitle(p.Title) {
			continue
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.AddedAt.IsZero() {
			p.AddedAt = now
		}
		if p.RequiredSkills == nil {
			p.RequiredSkills = []string{}
		} else {
			p.RequiredSkills = append([]string(nil), p.RequiredSkills...)
		}
		d.Careers = append(d.Careers, p)
		added++
	}
	return added
}

// MatchSkill returns the goals that require skill, in list order.
func (d *Document) MatchSkill(skill string) []CareerGoal {
	matched := make([]CareerGoal, 0)
	for _, c := range d.Careers {
		if c.RequiresSkill(skill) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Prune removes every goal whose title appears in titles.
func (d *Document) Prune(titles []string) {
	drop := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		drop[t] = struct{}{}
	}
	kept := make([]CareerGoal, 0, len(d.Careers))
	for _, c := range d.Careers {
		if _, ok := drop[c.Title]; ok {
			continue
		}
		kept = append(kept, c)
	}
	d.Careers = kept
}

// Repository stores one goal document per user. Get and PullByTitle return
// ErrDocumentNotFound when the user has no document. Put overwrites the whole
// document, creating it if absent. PullByTitle removes matching entries in a
// single storage-level write and returns the resulting document.
type Repository interface {
	Get(ctx context.Context, userKey string) (*Document, error)
	Put(ctx context.Context, doc *Document) error
	PullByTitle(ctx context.Context, userKey, title string) (*Document, error)
}
