package userservice

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ashkeyz/inkwell/internal/common"
)

const (
	testUserName     = "Test User"
	testUserEmail    = "testuser@example.com"
	testUserPassword = "TestPassword123!"
)

func setupTestEnvironment(t *testing.T) (*UserService, *sql.DB, func() error, error) {
	db := common.TestDB("file://../../migrations", t)
	connURL := common.TestRabbitMQ(t)
	mb, err := common.NewMessageBroker(connURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not create message broker: %w", err)
	}

	err = common.SetupUserExchange(mb)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not setup user exchange: %w", err)
	}

	cleanup := func() error {
		for _, table := range []string{"auth_tokens", "tokens", "user_permissions", "users"} {
			_, err := db.Exec("DELETE FROM " + table)
			if err != nil {
				return err
			}
		}

		return nil
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	return NewUserService(db, mb, cache), db, cleanup, nil
}

func TestCreateUser(t *testing.T) {
	s, db, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	testCases := []struct {
		name      string
		userName  string
		email     string
		password  string
		wantError bool
	}{
		{name: "valid user", userName: testUserName, email: testUserEmail, password: testUserPassword},
		{name: "empty name", email: testUserEmail, password: testUserPassword, wantError: true},
		{name: "empty email", userName: testUserName, password: testUserPassword, wantError: true},
		{name: "weak password", userName: testUserName, email: testUserEmail, password: "password", wantError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			token, err := s.CreateUser(ctx, tc.userName, tc.email, tc.password)

			var count int
			if tc.wantError {
				assert.Error(t, err)
				assert.Nil(t, token)

				err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 0, count)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, token)

				err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)

				err = db.QueryRow("SELECT COUNT(*) FROM tokens").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)
			}

			t.Cleanup(func() {
				err := cleanup()
				assert.NoError(t, err)
			})
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, _, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})

	ctx := context.Background()

	_, err = s.CreateUser(ctx, testUserName, testUserEmail, testUserPassword)
	assert.NoError(t, err)

	_, err = s.CreateUser(ctx, "Another Name", testUserEmail, testUserPassword)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestActivateUser(t *testing.T) {
	s, db, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	testCases := []struct {
		name      string
		token     func(context.Context) (string, error)
		wantError bool
	}{
		{
			name: "valid token",
			token: func(ctx context.Context) (string, error) {
				token, err := s.CreateUser(ctx, testUserName, testUserEmail, testUserPassword)
				if err != nil {
					return "", err
				}
				return *token, nil
			},
		},
		{
			name: "invalid token",
			token: func(ctx context.Context) (string, error) {
				return "invalid token", nil
			},
			wantError: true,
		},
		{
			name: "empty token",
			token: func(ctx context.Context) (string, error) {
				return "", nil
			},
			wantError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()

			plainToken, err := tc.token(ctx)
			assert.NoError(t, err)

			err = s.ActivateUser(ctx, plainToken)

			var count int
			if tc.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)

				err = db.QueryRow("SELECT COUNT(*) FROM tokens").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 0, count)

				err = db.QueryRow("SELECT COUNT(*) FROM users WHERE activated = true").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)

				err = db.QueryRow("SELECT COUNT(*) FROM user_permissions").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)
			}

			t.Cleanup(func() {
				err := cleanup()
				assert.NoError(t, err)
			})
		})
	}
}

func TestLoginUser(t *testing.T) {
	s, _, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})

	ctx := context.Background()

	token, err := s.CreateUser(ctx, testUserName, testUserEmail, testUserPassword)
	assert.NoError(t, err)

	err = s.ActivateUser(ctx, *token)
	assert.NoError(t, err)

	authToken, err := s.LoginUser(ctx, testUserEmail, testUserPassword)
	assert.NoError(t, err)
	assert.NotEmpty(t, authToken.AccessTokenPlain)
	assert.NotEmpty(t, authToken.RefreshTokenPlain)
	assert.True(t, authToken.AccessTokenExpiry.After(time.Now()))

	// a second login rotates the pair
	again, err := s.LoginUser(ctx, testUserEmail, testUserPassword)
	assert.NoError(t, err)
	assert.Equal(t, authToken.UserID, again.UserID)
	assert.NotEqual(t, authToken.AccessTokenPlain, again.AccessTokenPlain)

	_, err = s.LoginUser(ctx, testUserEmail, "WrongPassword123!")
	assert.ErrorIs(t, err, ErrAuthenticationFailure)

	_, err = s.LoginUser(ctx, "nobody@example.com", testUserPassword)
	assert.ErrorIs(t, err, ErrAuthenticationFailure)
}

func TestGetUserByAccessToken(t *testing.T) {
	s, _, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})

	ctx := context.Background()

	token, err := s.CreateUser(ctx, testUserName, testUserEmail, testUserPassword)
	assert.NoError(t, err)

	err = s.ActivateUser(ctx, *token)
	assert.NoError(t, err)

	authToken, err := s.LoginUser(ctx, testUserEmail, testUserPassword)
	assert.NoError(t, err)

	user, err := s.GetUserByAccessToken(ctx, authToken.AccessTokenPlain)
	assert.NoError(t, err)
	assert.Equal(t, testUserEmail, user.Email)
	assert.True(t, user.Activated)
	assert.True(t, user.HasPermission(PermissionWritePost))

	// second lookup is served from the cache
	cached, err := s.GetUserByAccessToken(ctx, authToken.AccessTokenPlain)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, cached.ID)

	_, err = s.GetUserByAccessToken(ctx, "AAAAAAAAAAAAAAAAAAAAAAAAAA")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogoutUser(t *testing.T) {
	s, db, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})

	ctx := context.Background()

	token, err := s.CreateUser(ctx, testUserName, testUserEmail, testUserPassword)
	assert.NoError(t, err)

	err = s.ActivateUser(ctx, *token)
	assert.NoError(t, err)

	authToken, err := s.LoginUser(ctx, testUserEmail, testUserPassword)
	assert.NoError(t, err)

	// prime the access token cache
	_, err = s.GetUserByAccessToken(ctx, authToken.AccessTokenPlain)
	assert.NoError(t, err)

	err = s.LogoutUser(ctx, authToken.UserID, authToken.AccessTokenPlain)
	assert.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM auth_tokens").Scan(&count)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	// the cached lookup is evicted with the token, not left to expire
	_, err = s.GetUserByAccessToken(ctx, authToken.AccessTokenPlain)
	assert.ErrorIs(t, err, ErrNotFound)
}
