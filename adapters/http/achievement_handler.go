package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	achievementUC "github.com/khoahotran/skillora/internal/application/usecase/achievement"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type AchievementHandler struct {
	completeSkillUseCase *achievementUC.CompleteSkillUseCase
	achievementUseCase   *achievementUC.AchievementUseCase
	logger               logger.Logger
}

func NewAchievementHandler(
	completeUC *achievementUC.CompleteSkillUseCase,
	achievementUseCase *achievementUC.AchievementUseCase,
	log logger.Logger,
) *AchievementHandler {
	return &AchievementHandler{
		completeSkillUseCase: completeUC,
		achievementUseCase:   achievementUseCase,
		logger:               log,
	}
}

// CompleteSkill answers 200 either way; a skill that matched no goal comes
// back as success false with a message.
func (h *AchievementHandler) CompleteSkill(c *gin.Context) {
	var req CompleteSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'userKey' and 'skill' are required", err))
		return
	}
	if !ensureOwner(c, req.UserKey) {
		return
	}

	output, err := h.completeSkillUseCase.Execute(c.Request.Context(), achievementUC.CompleteSkillInput{
		UserKey: req.UserKey,
		Skill:   req.Skill,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        output.Completed,
		"message":        output.Message,
		"created":        ToAchievementDTOs(output.Created),
		"remainingGoals": ToCareerGoalDTOs(output.RemainingGoals),
	})
}

func (h *AchievementHandler) AddAchievement(c *gin.Context) {
	var req AddAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'userKey' and 'achievement.title' are required", err))
		return
	}
	if !ensureOwner(c, req.UserKey) {
		return
	}

	list, err := h.achievementUseCase.AddAchievement(c.Request.Context(), achievementUC.AddAchievementInput{
		UserKey:       req.UserKey,
		Title:         req.Achievement.Title,
		Type:          req.Achievement.Type,
		Description:   req.Achievement.Description,
		RelatedCareer: req.Achievement.RelatedCareer,
		Icon:          req.Achievement.Icon,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "achievements": ToAchievementDTOs(list)})
}

func (h *AchievementHandler) ListAchievements(c *gin.Context) {
	userKey := c.Param("userKey")
	if !ensureOwner(c, userKey) {
		return
	}

	list, err := h.achievementUseCase.ListAchievements(c.Request.Context(), userKey)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "achievements": ToAchievementDTOs(list)})
}

func (h *AchievementHandler) RemoveAchievement(c *gin.Context) {
	userKey := c.Param("userKey")
	if !ensureOwner(c, userKey) {
		return
	}

	list, err := h.achievementUseCase.RemoveAchievement(c.Request.Context(), userKey, c.Param("title"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "achievements": ToAchievementDTOs(list)})
}
