package achievement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/skillora/adapters/lock"
	"github.com/khoahotran/skillora/adapters/persistence/memory"
	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/domain/achievement"
	"github.com/khoahotran/skillora/internal/domain/goal"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	skills []service.SkillCompletedEvent
}

func (p *recordingPublisher) PublishSkillEvent(_ context.Context, e service.SkillCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skills = append(p.skills, e)
	return nil
}

func (p *recordingPublisher) PublishGoalEvent(context.Context, service.GoalEvent) error { return nil }

func (p *recordingPublisher) skillEvents() []service.SkillCompletedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.SkillCompletedEvent(nil), p.skills...)
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) ObserveGoalMerge(int) {}

func (m *recordingMetrics) ObserveSkillCompletion(outcome string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

type failingGoalRepo struct {
	goal.Repository
	putErr error
}

func (r *failingGoalRepo) Put(ctx context.Context, doc *goal.Document) error {
	if r.putErr != nil {
		return r.putErr
	}
	return r.Repository.Put(ctx, doc)
}

type failingAchievementRepo struct {
	achievement.Repository
	appendErr error
}

func (r *failingAchievementRepo) AppendMany(ctx context.Context, userKey string, records []achievement.Record) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	return r.Repository.AppendMany(ctx, userKey, records)
}

type CompleteSkillTestSuite struct {
	suite.Suite
	goals        *memory.GoalRepo
	achievements *memory.AchievementRepo
	publisher    *recordingPublisher
	metrics      *recordingMetrics
	uc           *CompleteSkillUseCase
}

func (s *CompleteSkillTestSuite) SetupTest() {
	s.goals = memory.NewGoalRepo()
	s.achievements = memory.NewAchievementRepo()
	s.publisher = &recordingPublisher{}
	s.metrics = &recordingMetrics{}
	s.uc = s.newUseCase(s.goals, s.achievements)
}

func (s *CompleteSkillTestSuite) newUseCase(g goal.Repository, a achievement.Repository) *CompleteSkillUseCase {
	return NewCompleteSkillUseCase(g, a, lock.NewMemoryLocker(time.Second), s.publisher, s.metrics, logger.NewNopLogger())
}

func (s *CompleteSkillTestSuite) seedGoals(userKey string, careers ...goal.CareerGoal) {
	doc := goal.NewDocument(userKey, time.Now().UTC())
	doc.Merge(careers, time.Now().UTC())
	s.Require().NoError(s.goals.Put(context.Background(), doc))
}

func (s *CompleteSkillTestSuite) storedTitles(userKey string) []string {
	doc, err := s.goals.Get(context.Background(), userKey)
	s.Require().NoError(err)
	titles := make([]string, len(doc.Careers))
	for i, c := range doc.Careers {
		titles[i] = c.Title
	}
	return titles
}

func (s *CompleteSkillTestSuite) storedAchievements(userKey string) []achievement.Record {
	doc, err := s.achievements.Get(context.Background(), userKey)
	if errors.Is(err, achievement.ErrDocumentNotFound) {
		return nil
	}
	s.Require().NoError(err)
	return doc.Achievements
}

func TestCompleteSkill(t *testing.T) {
	suite.Run(t, new(CompleteSkillTestSuite))
}

func (s *CompleteSkillTestSuite) Test_PrunesMatchedGoalAndRecordsAchievement() {
	s.seedGoals("a@x.com",
		goal.CareerGoal{Title: "Data Analyst", RequiredSkills: []string{"SQL", "Excel"}},
		goal.CareerGoal{Title: "UX Designer", RequiredSkills: []string{"Figma"}},
	)

	out, err := s.uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
	s.Require().NoError(err)

	s.True(out.Completed)
	s.Equal(`Skill "SQL" marked as completed.`, out.Message)
	s.Require().Len(out.Created, 1)
	rec := out.Created[0]
	s.Equal("SQL Skill Mastered", rec.Title)
	s.Equal(achievement.TypeSkill, rec.Type)
	s.Equal("Data Analyst", rec.RelatedCareer)
	s.Equal("SQL", rec.SkillName)
	s.Equal("Award", rec.Icon)
	s.Equal("Successfully mastered SQL, required for career: Data Analyst.", rec.Description)

	s.Equal([]string{"UX Designer"}, s.storedTitles("a@x.com"))
	s.Len(s.storedAchievements("a@x.com"), 1)
	s.Equal([]string{service.OutcomeCompleted}, s.metrics.outcomes)
}

func (s *CompleteSkillTestSuite) Test_FansOutToEveryMatchingGoal() {
	s.seedGoals("a@x.com",
		goal.CareerGoal{Title: "Data Analyst", RequiredSkills: []string{"SQL"}},
		goal.CareerGoal{Title: "BI Developer", RequiredSkills: []string{"SQL", "Power BI"}},
		goal.CareerGoal{Title: "UX Designer", RequiredSkills: []string{"Figma"}},
	)

	out, err := s.uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
	s.Require().NoError(err)

	s.Require().Len(out.Created, 2)
	s.Equal("Data Analyst", out.Created[0].RelatedCareer)
	s.Equal("BI Developer", out.Created[1].RelatedCareer)
	s.Equal([]string{"UX Designer"}, s.storedTitles("a@x.com"))
	s.Len(out.RemainingGoals, 1)
}

func (s *CompleteSkillTestSuite) Test_NoMatchIsNoOp() {
	s.seedGoals("a@x.com", goal.CareerGoal{Title: "UX Designer", RequiredSkills: []string{"Figma"}})

	out, err := s.uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "Rust"})
	s.Require().NoError(err)

	s.False(out.Completed)
	s.Equal(`No careers found with skill "Rust"`, out.Message)
	s.NotNil(out.Created)
	s.Empty(out.Created)
	s.Equal([]string{"UX Designer"}, s.storedTitles("a@x.com"))
	s.Empty(s.storedAchievements("a@x.com"))
	s.Equal([]string{service.OutcomeNoOp}, s.metrics.outcomes)
}

func (s *CompleteSkillTestSuite) Test_SkillMatchIsCaseSensitive() {
	s.seedGoals("a@x.com", goal.CareerGoal{Title: "Data Analyst", RequiredSkills: []string{"SQL"}})

	out, err := s.uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "sql"})
	s.Require().NoError(err)
	s.False(out.Completed)
	s.Equal([]string{"Data Analyst"}, s.storedTitles("a@x.com"))
}

func (s *CompleteSkillTestSuite) Test_NoGoalDocumentIsNotFound() {
	_, err := s.uc.Execute(context.Background(), CompleteSkillInput{UserKey: "nobody@x.com", Skill: "SQL"})
	s.ErrorIs(err, apperror.ErrNotFound)
	s.Empty(s.storedAchievements("nobody@x.com"))
	s.Equal([]string{service.OutcomeNotFound}, s.metrics.outcomes)
}

func (s *CompleteSkillTestSuite) Test_InvalidInput() {
	_, err := s.uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com"})
	s.ErrorIs(err, apperror.ErrInvalidInput)
	_, err = s.uc.Execute(context.Background(), CompleteSkillInput{Skill: "SQL"})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *CompleteSkillTestSuite) Test_SecondCompletionIsNoOp() {
	s.seedGoals("a@x.com", goal.CareerGoal{Title: "Data Analyst", RequiredSkills: []string{"SQL"}})
	ctx := context.Background()

	_, err := s.uc.Execute(ctx, CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
	s.Require().NoError(err)
	out, err := s.uc.Execute(ctx, CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
	s.Require().NoError(err)

	s.False(out.Completed)
	s.Len(s.storedAchievements("a@x.com"), 1)
}

func (s *CompleteSkillTestSuite) Test_ConcurrentCompletionsRecordOnce() {
	s.seedGoals("a@x.com", goal.CareerGoal{Title: "Data Analyst", RequiredSkills: []string{"SQL"}})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Len(s.storedAchievements("a@x.com"), 1)
	s.Empty(s.storedTitles("a@x.com"))
}

func (s *CompleteSkillTestSuite) Test_AppendFailureLeavesGoalsIntact() {
	s.seedGoals("a@x.com", goal.CareerGoal{Title: "Data Analyst", RequiredSkills: []string{"SQL"}})
	uc := s.newUseCase(s.goals, &failingAchievementRepo{Repository: s.achievements, appendErr: errors.New("connection reset")})

	_, err := uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
	s.ErrorIs(err, apperror.ErrStorage)
	s.Equal([]string{"Data Analyst"}, s.storedTitles("a@x.com"))
	s.Empty(s.storedAchievements("a@x.com"))
	s.Equal([]string{service.OutcomeFailed}, s.metrics.outcomes)
}

func (s *CompleteSkillTestSuite) Test_PruneFailureKeepsRecordedAchievements() {
	s.seedGoals("a@x.com", goal.CareerGoal{Title: "Data Analyst", RequiredSkills: []string{"SQL"}})
	uc := s.newUseCase(&failingGoalRepo{Repository: s.goals, putErr: errors.New("timeout")}, s.achievements)

	_, err := uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
	s.ErrorIs(err, apperror.ErrStorage)
	s.Equal([]string{"Data Analyst"}, s.storedTitles("a@x.com"))
	s.Len(s.storedAchievements("a@x.com"), 1)
}

func (s *CompleteSkillTestSuite) Test_PublishesSkillEvent() {
	s.seedGoals("a@x.com",
		goal.CareerGoal{Title: "Data Analyst", RequiredSkills: []string{"SQL"}},
		goal.CareerGoal{Title: "BI Developer", RequiredSkills: []string{"SQL"}},
	)

	_, err := s.uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
	s.Require().NoError(err)

	s.Require().Eventually(func() bool { return len(s.publisher.skillEvents()) == 1 }, time.Second, 5*time.Millisecond)
	evt := s.publisher.skillEvents()[0]
	s.Equal(service.EventSkillCompleted, evt.EventType)
	s.Equal("SQL", evt.Skill)
	s.Equal(2, evt.AchievementsCreated)
	s.Equal([]string{"Data Analyst", "BI Developer"}, evt.RelatedCareers)
}

func TestCompleteSkill_NoOpDoesNotPublish(t *testing.T) {
	goals := memory.NewGoalRepo()
	doc := goal.NewDocument("a@x.com", time.Now())
	require.NoError(t, goals.Put(context.Background(), doc))
	pub := &recordingPublisher{}
	uc := NewCompleteSkillUseCase(goals, memory.NewAchievementRepo(), lock.NewMemoryLocker(time.Second), pub, service.NopMetrics(), logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), CompleteSkillInput{UserKey: "a@x.com", Skill: "SQL"})
	require.NoError(t, err)
	assert.False(t, out.Completed)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, pub.skillEvents())
}
