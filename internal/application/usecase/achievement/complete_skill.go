package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/domain/achievement"
	"github.com/khoahotran/skillora/internal/domain/goal"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

var tracer = otel.Tracer("achievement_usecase")

type CompleteSkillUseCase struct {
	goalRepo        goal.Repository
	achievementRepo achievement.Repository
	locker          service.UserLocker
	publisher       service.EventPublisher
	metrics         service.Metrics
	logger          logger.Logger
	now             func() time.Time
}

func NewCompleteSkillUseCase(
	gRepo goal.Repository,
	aRepo achievement.Repository,
	locker service.UserLocker,
	publisher service.EventPublisher,
	metrics service.Metrics,
	log logger.Logger,
) *CompleteSkillUseCase {
	return &CompleteSkillUseCase{
		goalRepo:        gRepo,
		achievementRepo: aRepo,
		locker:          locker,
		publisher:       publisher,
		metrics:         metrics,
		logger:          log,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type CompleteSkillInput struct {
	UserKey string
	Skill   string
}

// CompleteSkillOutput.Completed is false when no goal required the skill;
// that outcome is not an error.
type CompleteSkillOutput struct {
	Completed      bool
	Message        string
	Created        []achievement.Record
	RemainingGoals []goal.CareerGoal
}

// Execute runs the skill-completion cascade: load goals, match the skill,
// append one achievement per matched goal, then write the pruned goal list.
// The append always happens before the prune; a failed prune leaves the
// achievements recorded and the goals still listed.
func (uc *CompleteSkillUseCase) Execute(ctx context.Context, input CompleteSkillInput) (*CompleteSkillOutput, error) {
	ctx, span := tracer.Start(ctx, "CompleteSkill")
	defer span.End()

	if input.UserKey == "" || input.Skill == "" {
		err := apperror.NewInvalidInput("'userKey' and 'skill' are required", nil)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user_key", input.UserKey), attribute.String("skill", input.Skill))

	l := uc.logger.With(zap.String("user_key", input.UserKey), zap.String("skill", input.Skill))

	var out *CompleteSkillOutput
	err := uc.locker.WithLock(ctx, input.UserKey, func(ctx context.Context) error {
		var err error
		out, err = uc.cascade(ctx, input, l)
		return err
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, apperror.ErrNotFound) {
			uc.metrics.ObserveSkillCompletion(service.OutcomeNotFound, 0)
		} else {
			uc.metrics.ObserveSkillCompletion(service.OutcomeFailed, 0)
			l.Error("Skill completion cascade failed", err)
		}
		return nil, err
	}

	if !out.Completed {
		uc.metrics.ObserveSkillCompletion(service.OutcomeNoOp, 0)
		l.Info("Skill matched no goals")
		return out, nil
	}

	uc.metrics.ObserveSkillCompletion(service.OutcomeCompleted, len(out.Created))
	uc.publishCompleted(input, out)

	l.Info("Skill completed", zap.Int("achievements_created", len(out.Created)), zap.Int("remaining_goals", len(out.RemainingGoals)))
	return out, nil
}

func (uc *CompleteSkillUseCase) cascade(ctx context.Context, input CompleteSkillInput, l logger.Logger) (*CompleteSkillOutput, error) {
	doc, err := uc.loadGoals(ctx, input.UserKey)
	if err != nil {
		return nil, err
	}

	matched := doc.MatchSkill(input.Skill)
	if len(matched) == 0 {
		return &CompleteSkillOutput{
			Completed:      false,
			Message:        fmt.Sprintf("No careers found with skill %q", input.Skill),
			Created:        []achievement.Record{},
			RemainingGoals: doc.Careers,
		}, nil
	}

	now := uc.now()
	records := make([]achievement.Record, 0, len(matched))
	titles := make([]string, 0, len(matched))
	for _, g := range matched {
		records = append(records, achievement.NewSkillRecord(input.Skill, g.Title, now))
		titles = append(titles, g.Title)
	}

	if err := uc.appendAchievements(ctx, input.UserKey, records); err != nil {
		return nil, err
	}

	doc.Prune(titles)
	doc.UpdatedAt = now
	if err := uc.writeGoals(ctx, doc); err != nil {
		l.Error("Achievements recorded but goal prune failed", err, zap.Strings("related_careers", titles))
		return nil, err
	}

	return &CompleteSkillOutput{
		Completed:      true,
		Message:        fmt.Sprintf("Skill %q marked as completed.", input.Skill),
		Created:        records,
		RemainingGoals: doc.Careers,
	}, nil
}

func (uc *CompleteSkillUseCase) loadGoals(ctx context.Context, userKey string) (*goal.Document, error) {
	ctx, span := tracer.Start(ctx, "CompleteSkill.LoadGoals")
	defer span.End()

	doc, err := uc.goalRepo.Get(ctx, userKey)
	if errors.Is(err, goal.ErrDocumentNotFound) {
		return nil, apperror.NewNotFound("goals", userKey)
	}
	if err != nil {
		span.RecordError(err)
		return nil, apperror.AsStorageFailure("goals.get", userKey, err)
	}
	return doc, nil
}

func (uc *CompleteSkillUseCase) appendAchievements(ctx context.Context, userKey string, records []achievement.Record) error {
	ctx, span := tracer.Start(ctx, "CompleteSkill.AppendAchievements")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(records)))

	if err := uc.achievementRepo.AppendMany(ctx, userKey, records); err != nil {
		span.RecordError(err)
		return apperror.AsStorageFailure("achievements.append", userKey, err)
	}
	return nil
}

func (uc *CompleteSkillUseCase) writeGoals(ctx context.Context, doc *goal.Document) error {
	ctx, span := tracer.Start(ctx, "CompleteSkill.PruneGoals")
	defer span.End()

	if err := uc.goalRepo.Put(ctx, doc); err != nil {
		span.RecordError(err)
		return apperror.AsStorageFailure("goals.put", doc.UserKey, err)
	}
	return nil
}

func (uc *CompleteSkillUseCase) publishCompleted(input CompleteSkillInput, out *CompleteSkillOutput) {
	careers := make([]string, len(out.Created))
	for i, r := range out.Created {
		careers[i] = r.RelatedCareer
	}
	evt := service.SkillCompletedEvent{
		EventType:           service.EventSkillCompleted,
		UserKey:             input.UserKey,
		Skill:               input.Skill,
		RelatedCareers:      careers,
		AchievementsCreated: len(out.Created),
		OccurredAt:          uc.now(),
	}
	go func() {
		if err := uc.publisher.PublishSkillEvent(context.Background(), evt); err != nil {
			uc.logger.Error("Failed to publish 'skill.completed' event", err, zap.String("user_key", evt.UserKey))
		}
	}()
}
