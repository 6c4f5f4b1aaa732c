package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/skillora/internal/domain/achievement"
	"github.com/khoahotran/skillora/internal/domain/document"
	"github.com/khoahotran/skillora/internal/domain/goal"
	"github.com/khoahotran/skillora/internal/domain/recommendation"
)

// Goal DTOs
type CareerGoalDTO struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RelevanceScore float64   `json:"relevanceScore"`
	RequiredSkills []string  `json:"requiredSkills"`
	Sector         string    `json:"sector"`
	AddedAt        time.Time `json:"addedAt"`
}

type CareerGoalRequest struct {
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	RelevanceScore float64  `json:"relevanceScore"`
	RequiredSkills []string `json:"requiredSkills"`
	Sector         string   `json:"sector"`
}

type SaveGoalsRequest struct {
	UserKey string              `json:"userKey" binding:"required"`
	Goals   []CareerGoalRequest `json:"goals" binding:"required,min=1,dive"`
}

func ToCareerGoalDTOs(goals []goal.CareerGoal) []CareerGoalDTO {
	dtos := make([]CareerGoalDTO, len(goals))
	for i, g := range goals {
		skills := g.RequiredSkills
		if skills == nil {
			skills = []string{}
		}
		dtos[i] = CareerGoalDTO{
			ID:             g.ID,
			Title:          g.Title,
			Description:    g.Description,
			RelevanceScore: g.RelevanceScore,
			RequiredSkills: skills,
			Sector:         g.Sector,
			AddedAt:        g.AddedAt,
		}
	}
	return dtos
}

func (req *SaveGoalsRequest) ToDomainGoals() []goal.CareerGoal {
	goals := make([]goal.CareerGoal, len(req.Goals))
	for i, g := range req.Goals {
		goals[i] = goal.CareerGoal{
			Title:          g.Title,
			Description:    g.Description,
			RelevanceScore: g.RelevanceScore,
			RequiredSkills: g.RequiredSkills,
			Sector:         g.Sector,
		}
	}
	return goals
}

// Achievement DTOs
type AchievementDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	RelatedCareer string    `json:"relatedCareer"`
	SkillName     string    `json:"skillName"`
	Date          time.Time `json:"date"`
	Icon          string    `json:"icon"`
}

type CompleteSkillRequest struct {
	UserKey string `json:"userKey" binding:"required"`
	Skill   string `json:"skill" binding:"required"`
}

type AddAchievementRequest struct {
	UserKey     string `json:"userKey" binding:"required"`
	Achievement struct {
		Title         string `json:"title" binding:"required"`
		Type          string `json:"type"`
		Description   string `json:"description"`
		RelatedCareer string `json:"relatedCareer"`
		Icon          string `json:"icon"`
	} `json:"achievement"`
}

func ToAchievementDTOs(records []achievement.Record) []AchievementDTO {
	dtos := make([]AchievementDTO, len(records))
	for i, r := range records {
		dtos[i] = AchievementDTO{
			ID:            r.ID,
			Title:         r.Title,
			Type:          string(r.Type),
			Description:   r.Description,
			RelatedCareer: r.RelatedCareer,
			SkillName:     r.SkillName,
			Date:          r.Date,
			Icon:          r.Icon,
		}
	}
	return dtos
}

// Recommendation DTOs
type RecommendRequest struct {
	Keyword       string   `json:"keyword" binding:"required"`
	ContextSkills []string `json:"contextSkills"`
	TopK          int      `json:"topK" binding:"omitempty,min=0"`
}

type CareerRecommendationDTO struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RelevanceScore float64  `json:"relevanceScore"`
	RequiredSkills []string `json:"requiredSkills"`
	Sector         string   `json:"sector"`
	Rank           int      `json:"rank"`
	SkillGaps      []string `json:"skillGaps"`
}

func ToRecommendationDTOs(careers []recommendation.Career) []CareerRecommendationDTO {
	dtos := make([]CareerRecommendationDTO, len(careers))
	for i, c := range careers {
		dtos[i] = CareerRecommendationDTO{
			Title:          c.Title,
			Description:    c.Description,
			RelevanceScore: c.RelevanceScore,
			RequiredSkills: c.RequiredSkills,
			Sector:         c.Sector,
			Rank:           c.Rank,
			SkillGaps:      c.SkillGaps,
		}
	}
	return dtos
}

// File DTOs
type StoredFileDTO struct {
	Filename   string    `json:"filename"`
	PublicID   string    `json:"publicId"`
	URL        string    `json:"url"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func ToStoredFileDTOs(files []document.StoredFile) []StoredFileDTO {
	dtos := make([]StoredFileDTO, len(files))
	for i, f := range files {
		dtos[i] = StoredFileDTO{
			Filename:   f.Filename,
			PublicID:   f.PublicID,
			URL:        f.URL,
			MimeType:   f.MimeType,
			Size:       f.Size,
			UploadedAt: f.UploadedAt,
		}
	}
	return dtos
}
