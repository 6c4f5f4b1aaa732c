package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type RedisLockerIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	rdb       *redis.Client
}

func (s *RedisLockerIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		s.T().Fatalf("Failed to start redis container: %s", err)
	}
	s.container = container

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		s.T().Fatalf("Failed to get redis endpoint: %s", err)
	}
	s.rdb = redis.NewClient(&redis.Options{Addr: endpoint})
}

func (s *RedisLockerIntegrationTestSuite) TearDownSuite() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate redis container: %s", err)
		}
	}
}

func TestRedisLockerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RedisLockerIntegrationTestSuite))
}

func (s *RedisLockerIntegrationTestSuite) Test_SerializesAndReleases() {
	locker := NewRedisLocker(s.rdb, 5*time.Second, 5*time.Second, logger.NewNopLogger())

	var mu sync.Mutex
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "a@x.com", func(ctx context.Context) error {
				mu.Lock()
				v := counter
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				counter = v + 1
				mu.Unlock()
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal(10, counter)
	exists, err := s.rdb.Exists(context.Background(), lockKeyPrefix+"a@x.com").Result()
	s.NoError(err)
	s.Equal(int64(0), exists)
}

func (s *RedisLockerIntegrationTestSuite) Test_ConflictWhenHeld() {
	ctx := context.Background()
	s.NoError(s.rdb.Set(ctx, lockKeyPrefix+"busy@x.com", "someone-else", time.Minute).Err())
	defer s.rdb.Del(ctx, lockKeyPrefix+"busy@x.com")

	locker := NewRedisLocker(s.rdb, time.Second, 50*time.Millisecond, logger.NewNopLogger())
	err := locker.WithLock(ctx, "busy@x.com", func(ctx context.Context) error { return nil })
	s.ErrorIs(err, apperror.ErrConflict)

	owner, err := s.rdb.Get(ctx, lockKeyPrefix+"busy@x.com").Result()
	s.NoError(err)
	s.Equal("someone-else", owner, "a foreign lock is never released")
}

func (s *RedisLockerIntegrationTestSuite) Test_LeaseRenewedWhileHeld() {
	ctx := context.Background()
	holder := NewRedisLocker(s.rdb, 300*time.Millisecond, time.Second, logger.NewNopLogger())
	other := NewRedisLocker(s.rdb, 300*time.Millisecond, 50*time.Millisecond, logger.NewNopLogger())

	err := holder.WithLock(ctx, "slow@x.com", func(ctx context.Context) error {
		time.Sleep(time.Second)
		s.ErrorIs(other.WithLock(context.Background(), "slow@x.com", func(context.Context) error { return nil }), apperror.ErrConflict)
		return ctx.Err()
	})
	s.NoError(err)

	exists, err := s.rdb.Exists(ctx, lockKeyPrefix+"slow@x.com").Result()
	s.NoError(err)
	s.Equal(int64(0), exists)
}

func (s *RedisLockerIntegrationTestSuite) Test_LostLeaseCancelsWork() {
	ctx := context.Background()
	locker := NewRedisLocker(s.rdb, 300*time.Millisecond, time.Second, logger.NewNopLogger())

	err := locker.WithLock(ctx, "lost@x.com", func(ctx context.Context) error {
		s.NoError(s.rdb.Del(context.Background(), lockKeyPrefix+"lost@x.com").Err())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			return nil
		}
	})
	s.ErrorIs(err, context.Canceled)
}
