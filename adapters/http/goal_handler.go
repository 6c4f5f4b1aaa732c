package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	goalUC "github.com/khoahotran/skillora/internal/application/usecase/goal"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type GoalHandler struct {
	mergeGoalsUseCase *goalUC.MergeGoalsUseCase
	goalUseCase       *goalUC.GoalUseCase
	logger            logger.Logger
}

func NewGoalHandler(mergeUC *goalUC.MergeGoalsUseCase, goalUseCase *goalUC.GoalUseCase, log logger.Logger) *GoalHandler {
	return &GoalHandler{mergeGoalsUseCase: mergeUC, goalUseCase: goalUseCase, logger: log}
}

func (h *GoalHandler) SaveGoals(c *gin.Context) {
	var req SaveGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'userKey' and a non-empty 'goals' array with titles are required", err))
		return
	}
	if !ensureOwner(c, req.UserKey) {
		return
	}

	output, err := h.mergeGoalsUseCase.Execute(c.Request.Context(), goalUC.MergeGoalsInput{
		UserKey: req.UserKey,
		Goals:   req.ToDomainGoals(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "goals": ToCareerGoalDTOs(output.Goals)})
}

func (h *GoalHandler) ListGoals(c *gin.Context) {
	userKey := c.Param("userKey")
	if !ensureOwner(c, userKey) {
		return
	}

	goals, err := h.goalUseCase.ListGoals(c.Request.Context(), userKey)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "goals": ToCareerGoalDTOs(goals)})
}

func (h *GoalHandler) RemoveGoal(c *gin.Context) {
	userKey := c.Param("userKey")
	if !ensureOwner(c, userKey) {
		return
	}

	goals, err := h.goalUseCase.RemoveGoal(c.Request.Context(), userKey, c.Param("title"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "goals": ToCareerGoalDTOs(goals)})
}
