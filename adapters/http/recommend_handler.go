package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	recommendUC "github.com/khoahotran/skillora/internal/application/usecase/recommend"
	"github.com/khoahotran/skillora/pkg/apperror"
)

type RecommendHandler struct {
	recommendUseCase *recommendUC.RecommendUseCase
}

func NewRecommendHandler(uc *recommendUC.RecommendUseCase) *RecommendHandler {
	return &RecommendHandler{recommendUseCase: uc}
}

func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'keyword' is required", err))
		return
	}

	output, err := h.recommendUseCase.Execute(c.Request.Context(), recommendUC.RecommendInput{
		Keyword:       req.Keyword,
		ContextSkills: req.ContextSkills,
		TopK:          req.TopK,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"source":          output.Source,
		"keyword":         output.Keyword,
		"recommendations": ToRecommendationDTOs(output.Recommendations),
	})
}
