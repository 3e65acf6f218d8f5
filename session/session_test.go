package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"restaurant-dashboard/config"
	"restaurant-dashboard/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func signedToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := TokenClaims{
		UserID: 4,
		Email:  "chef@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-elses-key"))
	require.NoError(t, err)
	return token
}

func TestIsAllowed(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin, Active: true}
	chef := &models.User{ID: 2, Role: models.RoleChef, Active: true}
	blocked := &models.User{ID: 3, Role: models.RoleAdmin, Active: false}

	assert.True(t, IsAllowed(admin, models.RoleAdmin))
	assert.True(t, IsAllowed(chef, models.RoleAdmin, models.RoleChef))
	assert.False(t, IsAllowed(chef, models.RoleDriver))
	assert.False(t, IsAllowed(blocked, models.RoleAdmin))
	assert.False(t, IsAllowed(nil, models.RoleAdmin))
	assert.False(t, IsAllowed(admin))
	assert.Nil(t, CurrentUser(nil))
}

func TestReadClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims, err := ReadClaims(signedToken(t, "cuisinier", exp))
	require.NoError(t, err)
	assert.Equal(t, "cuisinier", claims.Role)
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))

	_, err = ReadClaims("opaque-session-token")
	assert.Error(t, err)
}

type ManagerSuite struct {
	suite.Suite
	store *DBStore
	mgr   *Manager
	now   time.Time
}

func (s *ManagerSuite) SetupTest() {
	db, err := config.OpenDB(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(s.T().TempDir(), "sessions.db"),
	})
	s.Require().NoError(err)
	s.store, err = NewDBStore(db)
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.mgr = NewManager(s.store, 2*time.Hour)
	s.mgr.now = func() time.Time { return s.now }
}

func (s *ManagerSuite) TestStartAndResolve() {
	ctx := context.Background()
	sess, err := s.mgr.Start(ctx, "opaque", models.User{ID: 5, Name: "Ana", Role: "livreur"})
	s.Require().NoError(err)
	s.NotEmpty(sess.ID)
	s.Equal(models.RoleDriver, sess.User.Role)

	got, err := s.mgr.Resolve(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal("Ana", got.User.Name)
	s.True(IsAllowed(CurrentUser(got), models.RoleDriver))
}

func (s *ManagerSuite) TestRoleFromClaims() {
	token := signedToken(s.T(), "chef", s.now.Add(30*time.Minute))
	sess, err := s.mgr.Start(context.Background(), token, models.User{ID: 4})
	s.Require().NoError(err)
	s.Equal(models.RoleChef, sess.User.Role)
	s.True(sess.ExpiresAt.Equal(s.now.Add(30*time.Minute)), "token expiry caps the session")
}

func (s *ManagerSuite) TestNoRoleIsRejected() {
	_, err := s.mgr.Start(context.Background(), "opaque", models.User{ID: 4})
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ManagerSuite) TestExpiredSessionIsDenied() {
	ctx := context.Background()
	sess, err := s.mgr.Start(ctx, "opaque", models.User{ID: 5, Role: models.RoleClient})
	s.Require().NoError(err)

	s.now = s.now.Add(3 * time.Hour)
	_, err = s.mgr.Resolve(ctx, sess.ID)
	s.ErrorIs(err, ErrExpired)

	_, err = s.store.Load(ctx, sess.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ManagerSuite) TestUnknownAndEmptyIDs() {
	_, err := s.mgr.Resolve(context.Background(), "")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.mgr.Resolve(context.Background(), "2b0c1f4e-0000-0000-0000-000000000000")
	s.ErrorIs(err, ErrNotFound)
}

func (s *ManagerSuite) TestUpdateUserAndEnd() {
	ctx := context.Background()
	sess, err := s.mgr.Start(ctx, "opaque", models.User{ID: 5, Name: "Ana", Role: models.RoleClient})
	s.Require().NoError(err)

	s.Require().NoError(s.mgr.UpdateUser(ctx, sess, models.User{ID: 5, Name: "Ana Lima", Phone: "0600"}))
	got, err := s.mgr.Resolve(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal("Ana Lima", got.User.Name)
	s.Equal(models.RoleClient, got.User.Role)
	s.True(got.User.Active)

	s.Require().NoError(s.mgr.End(ctx, sess.ID))
	_, err = s.mgr.Resolve(ctx, sess.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ManagerSuite) TestPurgeExpired() {
	ctx := context.Background()
	_, err := s.mgr.Start(ctx, "opaque", models.User{ID: 5, Role: models.RoleClient})
	s.Require().NoError(err)

	n, err := s.store.PurgeExpired(ctx, s.now.Add(5*time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}
