package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lightera/bundokai/internal/services"
	xhttp "github.com/lightera/bundokai/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(username, password string) (string, time.Time, error) {
	args := m.Called(username, password)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAuthService) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type MockOpenTracker struct {
	mock.Mock
}

func (m *MockOpenTracker) MarkOpened(ctx context.Context, token string, at time.Time) error {
	args := m.Called(ctx, token, at)
	return args.Error(0)
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc)

		expiresAt := time.Now().Add(8 * time.Hour)
		svc.On("Login", "lightera", "s3cret").Return("token-123", expiresAt, nil)

		body, _ := json.Marshal(loginRequest{Username: "lightera", Password: "s3cret"})
		ctx := setupTestContext("POST", "/api/v1/auth/login", body)
		handler.Login(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response loginResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, "token-123", response.Token)
	})

	t.Run("bad credentials become 401", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc)

		svc.On("Login", "lightera", "wrong").
			Return("", time.Time{}, services.ErrInvalidCredentials)

		body, _ := json.Marshal(loginRequest{Username: "lightera", Password: "wrong"})
		ctx := setupTestContext("POST", "/api/v1/auth/login", body)
		handler.Login(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("valid token reaches the handler", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Verify", "good-token").Return("lightera", nil)

		called := false
		wrapped := RequireAdmin(svc, func(ctx *xhttp.RequestCtx) {
			called = true
			assert.Equal(t, "lightera", ctx.UserValue("admin"))
		})

		ctx := setupTestContext("GET", "/api/v1/stats/dashboard", nil)
		ctx.Request.Header.Set("Authorization", "Bearer good-token")
		wrapped(ctx)

		assert.True(t, called)
	})

	t.Run("missing header is a 401", func(t *testing.T) {
		svc := new(MockAuthService)
		wrapped := RequireAdmin(svc, func(ctx *xhttp.RequestCtx) {
			t.Fatal("handler must not run")
		})

		ctx := setupTestContext("GET", "/api/v1/stats/dashboard", nil)
		wrapped(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("bad token is a 401", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Verify", "bad-token").Return("", services.ErrInvalidToken)

		wrapped := RequireAdmin(svc, func(ctx *xhttp.RequestCtx) {
			t.Fatal("handler must not run")
		})

		ctx := setupTestContext("GET", "/api/v1/stats/dashboard", nil)
		ctx.Request.Header.Set("Authorization", "Bearer bad-token")
		wrapped(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})
}

func TestTrackingHandler_Open(t *testing.T) {
	t.Run("marks the open and serves the pixel", func(t *testing.T) {
		tracker := new(MockOpenTracker)
		handler := NewTrackingHandler(tracker)

		tracker.On("MarkOpened", mock.Anything, "tok-1", mock.Anything).Return(nil)

		ctx := setupTestContext("GET", "/t/open/tok-1", nil)
		ctx.SetUserValue("token", "tok-1")
		handler.Open(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Equal(t, "image/gif", string(ctx.Response.Header.ContentType()))
		assert.Equal(t, trackingPixel, ctx.Response.Body())
		tracker.AssertExpectations(t)
	})

	t.Run("storage errors still serve the pixel", func(t *testing.T) {
		tracker := new(MockOpenTracker)
		handler := NewTrackingHandler(tracker)

		tracker.On("MarkOpened", mock.Anything, "tok-x", mock.Anything).
			Return(assert.AnError)

		ctx := setupTestContext("GET", "/t/open/tok-x", nil)
		ctx.SetUserValue("token", "tok-x")
		handler.Open(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})
}
