package service

import (
	"context"
	"time"
)

const (
	EventSkillCompleted = "skill.completed"
	EventGoalsMerged    = "goals.merged"
	EventGoalRemoved    = "goal.removed"
)

type SkillCompletedEvent struct {
	EventType           string    `json:"event_type"`
	UserKey             string    `json:"user_key"`
	Skill               string    `json:"skill"`
	RelatedCareers      []string  `json:"related_careers"`
	AchievementsCreated int       `json:"achievements_created"`
	OccurredAt          time.Time `json:"occurred_at"`
}

type GoalEvent struct {
	EventType  string    `json:"event_type"`
	UserKey    string    `json:"user_key"`
	Titles     []string  `json:"titles"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	PublishSkillEvent(ctx context.Context, e SkillCompletedEvent) error
	PublishGoalEvent(ctx context.Context, e GoalEvent) error
}
