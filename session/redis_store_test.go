package session

import (
	"context"
	"os"
	"testing"
	"time"

	"restaurant-dashboard/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

// RedisStoreSuite runs against the server at REDIS_ADDR (default
// localhost:6379) and is skipped when none answers.
type RedisStoreSuite struct {
	suite.Suite
	rdb   *redis.Client
	store *RedisStore
	ids   []string
}

func (s *RedisStoreSuite) SetupSuite() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	s.rdb = redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		_ = s.rdb.Close()
		s.T().Skipf("redis not reachable at %s: %v", addr, err)
	}
	s.store = NewRedisStore(s.rdb)
}

func (s *RedisStoreSuite) TearDownTest() {
	for _, id := range s.ids {
		s.rdb.Del(context.Background(), redisKey(id))
	}
	s.ids = nil
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}

func (s *RedisStoreSuite) newSession(ttl time.Duration) *Session {
	id := uuid.NewString()
	s.ids = append(s.ids, id)
	clientID := uint(12)
	return &Session{
		ID:    id,
		Token: "tok-" + id,
		User: models.User{
			ID: 7, Email: "client@test.local", Name: "Amina",
			Role: models.RoleClient, Active: true, ClientID: &clientID,
		},
		ExpiresAt: time.Now().Add(ttl).Truncate(time.Millisecond),
		CreatedAt: time.Now().Truncate(time.Millisecond),
	}
}

func (s *RedisStoreSuite) TestSaveAndLoadRoundTrip() {
	ctx := context.Background()
	sess := s.newSession(time.Hour)
	s.Require().NoError(s.store.Save(ctx, sess))

	got, err := s.store.Load(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.Token, got.Token)
	s.Equal(models.RoleClient, got.User.Role)
	s.Equal("Amina", got.User.Name)
	s.Require().NotNil(got.User.ClientID)
	s.Equal(uint(12), *got.User.ClientID)
	s.True(sess.ExpiresAt.Equal(got.ExpiresAt))
}

func (s *RedisStoreSuite) TestKeyExpiresWithSession() {
	ctx := context.Background()
	sess := s.newSession(time.Minute)
	s.Require().NoError(s.store.Save(ctx, sess))

	ttl, err := s.rdb.TTL(ctx, redisKey(sess.ID)).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisStoreSuite) TestExpiredSessionIsNotStored() {
	ctx := context.Background()
	sess := s.newSession(-time.Second)
	s.ErrorIs(s.store.Save(ctx, sess), ErrExpired)

	_, err := s.store.Load(ctx, sess.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreSuite) TestMissingAndCorrupt() {
	ctx := context.Background()
	_, err := s.store.Load(ctx, uuid.NewString())
	s.ErrorIs(err, ErrNotFound)

	sess := s.newSession(time.Hour)
	s.Require().NoError(s.rdb.Set(ctx, redisKey(sess.ID), "{not json", time.Minute).Err())
	_, err = s.store.Load(ctx, sess.ID)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	sess := s.newSession(time.Hour)
	s.Require().NoError(s.store.Save(ctx, sess))
	s.Require().NoError(s.store.Delete(ctx, sess.ID))

	_, err := s.store.Load(ctx, sess.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreSuite) TestManagerOverRedis() {
	ctx := context.Background()
	mgr := NewManager(s.store, time.Hour)
	sess, err := mgr.Start(ctx, "opaque", models.User{ID: 3, Role: "livreur"})
	s.Require().NoError(err)
	s.ids = append(s.ids, sess.ID)

	got, err := mgr.Resolve(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleDriver, got.User.Role)

	s.Require().NoError(mgr.End(ctx, sess.ID))
	_, err = mgr.Resolve(ctx, sess.ID)
	s.ErrorIs(err, ErrNotFound)
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}
