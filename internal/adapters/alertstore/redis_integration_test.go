//go:build integration

package alertstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisAdapterSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
}

func TestRedisAdapterSuite(t *testing.T) {
	suite.Run(t, new(RedisAdapterSuite))
}

func (s *RedisAdapterSuite) SetupSuite() {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	endpoint, err := container.Endpoint(ctx, "")
	s.Require().NoError(err)
	s.client = redis.NewClient(&redis.Options{Addr: endpoint})
	s.Require().NoError(s.client.Ping(ctx).Err())
}

func (s *RedisAdapterSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *RedisAdapterSuite) SetupTest() {
	s.Require().NoError(s.client.FlushDB(context.Background()).Err())
}

func (s *RedisAdapterSuite) TestDeduper_TracksBreachesAcrossSweeps() {
	ctx := context.Background()
	d := NewRedisAlertDeduper(s.client, "")

	fresh, err := d.NewBreaches(ctx, []string{"p1", "p2"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"p1", "p2"}, fresh)

	fresh, err = d.NewBreaches(ctx, []string{"p2"})
	s.Require().NoError(err)
	s.Empty(fresh)

	members, err := s.client.SMembers(ctx, DefaultAlertSetKey).Result()
	s.Require().NoError(err)
	s.Equal([]string{"p2"}, members)

	fresh, err = d.NewBreaches(ctx, []string{"p1", "p2"})
	s.Require().NoError(err)
	s.Equal([]string{"p1"}, fresh)
}

func (s *RedisAdapterSuite) TestDeduper_SharedBetweenInstances() {
	ctx := context.Background()
	a := NewRedisAlertDeduper(s.client, "shared")
	b := NewRedisAlertDeduper(s.client, "shared")

	fresh, err := a.NewBreaches(ctx, []string{"p1"})
	s.Require().NoError(err)
	s.Equal([]string{"p1"}, fresh)

	fresh, err = b.NewBreaches(ctx, []string{"p1"})
	s.Require().NoError(err)
	s.Empty(fresh)

	s.Require().NoError(b.Forget(ctx, []string{"p1"}))
	fresh, err = a.NewBreaches(ctx, []string{"p1"})
	s.Require().NoError(err)
	s.Equal([]string{"p1"}, fresh)
}

func (s *RedisAdapterSuite) TestLocker_SingleHolder() {
	ctx := context.Background()
	l := NewRedisSweepLocker(s.client, time.Minute)

	release, ok, err := l.TryLock(ctx, "sweep")
	s.Require().NoError(err)
	s.Require().True(ok)

	_, ok, err = l.TryLock(ctx, "sweep")
	s.Require().NoError(err)
	s.False(ok)

	release()
	release2, ok, err := l.TryLock(ctx, "sweep")
	s.Require().NoError(err)
	s.True(ok)
	release2()
}
