package achievement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAcademic      Type = "academic"
	TypeAchievement   Type = "achievement"
	TypeCertification Type = "certification"
	TypeSkill         Type = "skill"
)

const skillIcon = "Award"

// Record is one entry of a user's achievement list. RelatedCareer is a
// snapshot of a goal title taken when the record was created; it is never
// revalidated against the goal list.
type Record struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Type          Type      `json:"type"`
	Description   string    `json:"description"`
	RelatedCareer string    `json:"related_career"`
	SkillName     string    `json:"skill_name"`
	Date          time.Time `json:"date"`
	Icon          string    `json:"icon"`
}

type Document struct {
	UserKey      string    `json:"user_key"`
	Achievements []Record  `json:"achievements"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrDocumentNotFound = errors.New("achievement document not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidType      = errors.New("invalid achievement type")
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeAcademic, TypeAchievement, TypeCertification, TypeSkill:
		return Type(s), nil
	case "":
		return TypeAchievement, nil
	}
	return "", ErrInvalidType
}

func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrTitleRequired
	}
	if _, err := ParseType(string(r.Type)); err != nil {
		return err
	}
	return nil
}

// NewSkillRecord builds the achievement produced when skill is completed
// for the goal titled career.
func NewSkillRecord(skill, career string, now time.Time) Record {
	return Record{
		ID:            uuid.New(),
		Title:         fmt.Sprintf("%s Skill Mastered", skill),
		Type:          TypeSkill,
		Description:   fmt.Sprintf("Successfully mastered %s, required for career: %s.", skill, career),
		RelatedCareer: career,
		SkillName:     skill,
		Date:          now,
		Icon:          skillIcon,
	}
}

// SortByDateDesc orders records newest first, keeping insertion order for
// equal dates.
func SortByDateDesc(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Repository stores one achievement document per user. AppendMany appends
// at the storage layer and creates the document when absent. Get and
// PullByTitle return ErrDocumentNotFound when the user has no document.
type Repository interface {
	Get(ctx context.Context, userKey string) (*Document, error)
	Put(ctx context.Context, doc *Document) error
	AppendMany(ctx context.Context, userKey string, records []Record) error
	PullByTitle(ctx context.Context, userKey, title string) (*Document, error)
}
