package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/common"
	"github.com/dmitrijs2005/tripsync/internal/server/auth"
	"github.com/dmitrijs2005/tripsync/internal/server/config"
	"github.com/dmitrijs2005/tripsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	users  []models.User
	nextID int
}

func (m *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range m.users {
		if u.UserName == user.UserName {
			return nil, errors.New("duplicate username")
		}
	}
	m.nextID++
	user.ID = string(rune('a' + m.nextID))
	m.users = append(m.users, *user)
	return user, nil
}

func (m *memUsers) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	for _, u := range m.users {
		if u.UserName == login {
			out := u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func testConfig() *config.Config {
	return &config.Config{SecretKey: "test-secret", TokenValidityDuration: time.Hour}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(&memUsers{}, testConfig())

	token, userID, err := s.Register(ctx, "alice", "pass123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, userID)

	// The issued token carries the new account's ID.
	claimID, err := auth.GetUserIDFromToken(token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, userID, claimID)

	loginToken, loginID, err := s.Login(ctx, "alice", "pass123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
	assert.Equal(t, userID, loginID)
}

func TestUserService_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(&memUsers{}, testConfig())

	_, _, err := s.Register(ctx, "bob", "right")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_LoginUnknownUser(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(&memUsers{}, testConfig())

	_, _, err := s.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(&memUsers{}, testConfig())

	_, _, err := s.Register(ctx, "carol", "pw")
	require.NoError(t, err)

	_, _, err = s.Register(ctx, "carol", "pw")
	assert.Error(t, err)
}

func TestUserService_PasswordsAreHashed(t *testing.T) {
	ctx := context.Background()
	repo := &memUsers{}
	s := NewUserService(repo, testConfig())

	_, _, err := s.Register(ctx, "dave", "hunter2")
	require.NoError(t, err)

	require.Len(t, repo.users, 1)
	assert.NotContains(t, string(repo.users[0].PasswordHash), "hunter2")
}
