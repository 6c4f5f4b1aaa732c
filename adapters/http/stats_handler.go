package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	statsUC "github.com/khoahotran/skillora/internal/application/usecase/stats"
	"github.com/khoahotran/skillora/pkg/apperror"
)

type StatsHandler struct {
	statsUseCase *statsUC.StatsUseCase
}

func NewStatsHandler(uc *statsUC.StatsUseCase) *StatsHandler {
	return &StatsHandler{statsUseCase: uc}
}

func (h *StatsHandler) TopSkills(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.Error(apperror.NewInvalidInput("'limit' must be a non-negative integer", err))
			return
		}
		limit = n
	}

	skills, err := h.statsUseCase.TopSkills(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "skills": skills})
}
