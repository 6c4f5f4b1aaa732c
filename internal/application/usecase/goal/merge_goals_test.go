package goal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/skillora/adapters/lock"
	"github.com/khoahotran/skillora/adapters/persistence/memory"
	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/domain/goal"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	goals  []service.GoalEvent
	skills []service.SkillCompletedEvent
}

func (p *recordingPublisher) PublishSkillEvent(_ context.Context, e service.SkillCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skills = append(p.skills, e)
	return nil
}

func (p *recordingPublisher) PublishGoalEvent(_ context.Context, e service.GoalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.goals = append(p.goals, e)
	return nil
}

func (p *recordingPublisher) goalEvents() []service.GoalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]service.GoalEvent(nil), p.goals...)
}

type failingGoalRepo struct {
	goal.Repository
	getErr error
	putErr error
}

func (r *failingGoalRepo) Get(ctx context.Context, userKey string) (*goal.Document, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.Repository.Get(ctx, userKey)
}

func (r *failingGoalRepo) Put(ctx context.Context, doc *goal.Document) error {
	if r.putErr != nil {
		return r.putErr
	}
	return r.Repository.Put(ctx, doc)
}

func newMergeUseCase(repo goal.Repository, pub service.EventPublisher) *MergeGoalsUseCase {
	return NewMergeGoalsUseCase(repo, lock.NewMemoryLocker(time.Second), pub, service.NopMetrics(), logger.NewNopLogger())
}

func titlesOf(goals []goal.CareerGoal) []string {
	out := make([]string, len(goals))
	for i, g := range goals {
		out[i] = g.Title
	}
	return out
}

func TestMergeGoals_NoDuplicateAcrossCalls(t *testing.T) {
	ctx := context.Background()
	uc := newMergeUseCase(memory.NewGoalRepo(), &recordingPublisher{})

	_, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "b@x.com", Goals: []goal.CareerGoal{{Title: "X"}}})
	require.NoError(t, err)

	out, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "b@x.com", Goals: []goal.CareerGoal{{Title: "X"}, {Title: "Y"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Y"}, titlesOf(out.Goals))
	assert.Equal(t, []string{"Y"}, out.Added)
}

func TestMergeGoals_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc := newMergeUseCase(memory.NewGoalRepo(), &recordingPublisher{})
	in := MergeGoalsInput{UserKey: "a@x.com", Goals: []goal.CareerGoal{
		{Title: "Data Analyst", RequiredSkills: []string{"SQL", "Excel"}},
		{Title: "BI Developer", RequiredSkills: []string{"SQL", "Power BI"}},
	}}

	first, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	second, err := uc.Execute(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.Goals, second.Goals)
	assert.Empty(t, second.Added)
}

func TestMergeGoals_UnionOfDisjointBatches(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewGoalRepo()
	uc := newMergeUseCase(repo, &recordingPublisher{})

	_, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "u@x.com", Goals: []goal.CareerGoal{{Title: "Existing"}}})
	require.NoError(t, err)
	_, err = uc.Execute(ctx, MergeGoalsInput{UserKey: "u@x.com", Goals: []goal.CareerGoal{{Title: "A"}, {Title: "B"}}})
	require.NoError(t, err)
	out, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "u@x.com", Goals: []goal.CareerGoal{{Title: "C"}}})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Existing", "A", "B", "C"}, titlesOf(out.Goals))
}

func TestMergeGoals_ExistingEntryNotUpdated(t *testing.T) {
	ctx := context.Background()
	uc := newMergeUseCase(memory.NewGoalRepo(), &recordingPublisher{})

	_, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "a@x.com", Goals: []goal.CareerGoal{{Title: "X", Description: "original"}}})
	require.NoError(t, err)
	out, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "a@x.com", Goals: []goal.CareerGoal{{Title: "X", Description: "changed", RequiredSkills: []string{"Go"}}}})
	require.NoError(t, err)

	require.Len(t, out.Goals, 1)
	assert.Equal(t, "original", out.Goals[0].Description)
	assert.Empty(t, out.Goals[0].RequiredSkills)
}

func TestMergeGoals_InvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := &failingGoalRepo{Repository: memory.NewGoalRepo(), getErr: errors.New("must not be called")}
	uc := newMergeUseCase(repo, &recordingPublisher{})

	cases := []MergeGoalsInput{
		{UserKey: "", Goals: []goal.CareerGoal{{Title: "X"}}},
		{UserKey: "a@x.com"},
		{UserKey: "a@x.com", Goals: []goal.CareerGoal{{Title: "X"}, {Title: ""}}},
	}
	for _, in := range cases {
		_, err := uc.Execute(ctx, in)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	}
}

func TestMergeGoals_StorageFailure(t *testing.T) {
	ctx := context.Background()
	repo := &failingGoalRepo{Repository: memory.NewGoalRepo(), putErr: errors.New("disk full")}
	uc := newMergeUseCase(repo, &recordingPublisher{})

	_, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "a@x.com", Goals: []goal.CareerGoal{{Title: "X"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrStorage)

	_, getErr := repo.Repository.Get(ctx, "a@x.com")
	assert.ErrorIs(t, getErr, goal.ErrDocumentNotFound, "nothing is written on failure")
}

func TestMergeGoals_ConcurrentMergesKeepEveryGoal(t *testing.T) {
	ctx := context.Background()
	uc := newMergeUseCase(memory.NewGoalRepo(), &recordingPublisher{})

	titles := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	var wg sync.WaitGroup
	for _, title := range titles {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			_, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "race@x.com", Goals: []goal.CareerGoal{{Title: title}}})
			assert.NoError(t, err)
		}(title)
	}
	wg.Wait()

	out, err := uc.Execute(ctx, MergeGoalsInput{UserKey: "race@x.com", Goals: []goal.CareerGoal{{Title: "A"}}})
	require.NoError(t, err)
	assert.ElementsMatch(t, titles, titlesOf(out.Goals))
}

func TestMergeGoals_PublishesAddedTitles(t *testing.T) {
	pub := &recordingPublisher{}
	uc := newMergeUseCase(memory.NewGoalRepo(), pub)

	_, err := uc.Execute(context.Background(), MergeGoalsInput{UserKey: "a@x.com", Goals: []goal.CareerGoal{{Title: "X"}}})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(pub.goalEvents()) == 1 }, time.Second, 5*time.Millisecond)
	evt := pub.goalEvents()[0]
	assert.Equal(t, service.EventGoalsMerged, evt.EventType)
	assert.Equal(t, []string{"X"}, evt.Titles)
}
