package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/domain/recommendation"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

const (
	defaultTopK = 5
	maxTopK     = 20
)

var errNoCareers = errors.New("llm answer contained no careers")

type RecommendUseCase struct {
	llm     service.LLMService
	timeout time.Duration
	logger  logger.Logger
}

// NewRecommendUseCase accepts a nil llm; every request then uses the
// built-in catalog.
func NewRecommendUseCase(llm service.LLMService, timeout time.Duration, log logger.Logger) *RecommendUseCase {
	return &RecommendUseCase{llm: llm, timeout: timeout, logger: log}
}

type RecommendInput struct {
	Keyword       string
	ContextSkills []string
	TopK          int
}

type RecommendOutput struct {
	Source          string                  `json:"source"`
	Keyword         string                  `json:"keyword"`
	Recommendations []recommendation.Career `json:"recommendations"`
}

func (uc *RecommendUseCase) Execute(ctx context.Context, input RecommendInput) (*RecommendOutput, error) {
	keyword := strings.TrimSpace(input.Keyword)
	if keyword == "" {
		return nil, apperror.NewInvalidInput("'keyword' is required", nil)
	}
	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	l := uc.logger.With(zap.String("keyword", keyword), zap.Int("top_k", topK))

	if uc.llm != nil {
		careers, err := uc.askLLM(ctx, keyword, input.ContextSkills, topK)
		if err == nil {
			l.Info("Recommendations generated by LLM", zap.Int("count", len(careers)))
			return &RecommendOutput{Source: recommendation.SourceLLM, Keyword: keyword, Recommendations: careers}, nil
		}
		l.Warn("LLM recommendation failed, using built-in catalog", zap.Error(err))
	}

	return &RecommendOutput{
		Source:          recommendation.SourceFallback,
		Keyword:         keyword,
		Recommendations: recommendation.Fallback(keyword, input.ContextSkills, topK),
	}, nil
}

type llmCareer struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RelevanceScore float64  `json:"relevance_score"`
	RequiredSkills []string `json:"required_skills"`
	Sector         string   `json:"sector"`
}

func (uc *RecommendUseCase) askLLM(ctx context.Context, keyword string, have []string, topK int) ([]recommendation.Career, error) {
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	answer, err := uc.llm.GenerateChatResponse(ctx, buildPrompt(keyword, have, topK))
	if err != nil {
		return nil, err
	}
	return parseAnswer(answer, have, topK)
}

func buildPrompt(keyword string, have []string, topK int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Suggest up to %d careers for someone interested in %q.\n", topK, keyword))
	if len(have) > 0 {
		b.WriteString("They already know: ")
		b.WriteString(strings.Join(have, ", "))
		b.WriteString(".\n")
	}
	b.WriteString("Reply with a JSON array only. Each element must have the fields ")
	b.WriteString(`"title", "description", "relevance_score" (0 to 1), "required_skills" (array of strings) and "sector".`)
	return b.String()
}

// parseAnswer extracts the outermost JSON array from answer; models often
// wrap it in prose or code fences.
func parseAnswer(answer string, have []string, topK int) ([]recommendation.Career, error) {
	start := strings.Index(answer, "[")
	end := strings.LastIndex(answer, "]")
	if start < 0 || end <= start {
		return nil, errNoCareers
	}

	var raw []llmCareer
	if err := json.Unmarshal([]byte(answer[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode llm answer: %w", err)
	}

	out := make([]recommendation.Career, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c.Title) == "" {
			continue
		}
		score := c.RelevanceScore
		if score > 1 {
			score = score / 100
		}
		if c.RequiredSkills == nil {
			c.RequiredSkills = []string{}
		}
		out = append(out, recommendation.Career{
			Title:          c.Title,
			Description:    c.Description,
			RelevanceScore: score,
			RequiredSkills: c.RequiredSkills,
			Sector:         c.Sector,
			Rank:           len(out) + 1,
			SkillGaps:      recommendation.SkillGaps(c.RequiredSkills, have),
		})
		if len(out) == topK {
			break
		}
	}
	if len(out) == 0 {
		return nil, errNoCareers
	}
	return out, nil
}
