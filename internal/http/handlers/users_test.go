package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Nmomos/hedgehog-reservation/internal/domain/profile"
	"github.com/Nmomos/hedgehog-reservation/internal/domain/user"
	"github.com/Nmomos/hedgehog-reservation/internal/http/handlers"
	"github.com/Nmomos/hedgehog-reservation/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementations of the handler-side interfaces

type fakeUserDirectory struct {
	registerFn func(ctx context.Context, req user.CreateRequest) (user.User, error)
	authFn     func(ctx context.Context, email, password string) (user.User, error)
}

func (f *fakeUserDirectory) Register(ctx context.Context, req user.CreateRequest) (user.User, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return user.User{}, nil
}

func (f *fakeUserDirectory) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	if f.authFn != nil {
		return f.authFn(ctx, email, password)
	}
	return user.User{}, nil
}

type fakeProfileReader struct {
	getFn func(ctx context.Context, userID int64) (profile.Profile, error)
}

func (f *fakeProfileReader) GetByUserID(ctx context.Context, userID int64) (profile.Profile, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID)
	}
	return profile.Profile{UserID: userID}, nil
}

type fakeIssuer struct {
	issueFn func(u user.User) (string, error)
}

func (f *fakeIssuer) IssueAccessToken(u user.User) (string, error) {
	if f.issueFn != nil {
		return f.issueFn(u)
	}
	return "fake-token", nil
}

func sampleUser() user.User {
	now := time.Now().UTC()

	return user.User{
		ID:        1,
		Username:  "amy",
		Email:     "amy@example.com",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// small helper which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func setupAuthedRouter(method, path string, u user.User, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		c.Set(middlewares.CtxCurrentUser, u)
		c.Next()
	}, h)

	return r
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		dirSetup       func(*fakeUserDirectory)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"new_user": {"email": "amy@example.com", "username": "amy", "password": "secret-pass"}}`,
			dirSetup: func(f *fakeUserDirectory) {
				f.registerFn = func(ctx context.Context, req user.CreateRequest) (user.User, error) {
					u := sampleUser()
					u.Email = req.Email
					u.Username = req.Username
					return u, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name: "duplicate_email",
			body: `{"new_user": {"email": "amy@example.com", "username": "amy", "password": "secret-pass"}}`,
			dirSetup: func(f *fakeUserDirectory) {
				f.registerFn = func(ctx context.Context, req user.CreateRequest) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_username",
			body: `{"new_user": {"email": "other@example.com", "username": "amy", "password": "secret-pass"}}`,
			dirSetup: func(f *fakeUserDirectory) {
				f.registerFn = func(ctx context.Context, req user.CreateRequest) (user.User, error) {
					return user.User{}, user.ErrUsernameTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_wrapper_key",
			body:           `{"email": "amy@example.com", "username": "amy", "password": "secret-pass"}`,
			dirSetup:       nil, // repo must not be reached
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "short_password",
			body:           `{"new_user": {"email": "amy@example.com", "username": "amy", "password": "short"}}`,
			dirSetup:       nil,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "bad_username_chars",
			body:           `{"new_user": {"email": "amy@example.com", "username": "amy rose!", "password": "secret-pass"}}`,
			dirSetup:       nil,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "repo_error",
			body: `{"new_user": {"email": "amy@example.com", "username": "amy", "password": "secret-pass"}}`,
			dirSetup: func(f *fakeUserDirectory) {
				f.registerFn = func(ctx context.Context, req user.CreateRequest) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			dir := &fakeUserDirectory{}

			if tt.dirSetup != nil {
				tt.dirSetup(dir)
			}

			h := handlers.NewUsersHandler(dir, &fakeProfileReader{}, &fakeIssuer{}, nil)

			r := setupRouter(http.MethodPost, "/users/", h.Register)

			req := httptest.NewRequest(http.MethodPost, "/users/", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRegisterHandlerReturnsTokenAndProfile(t *testing.T) {
	dir := &fakeUserDirectory{
		registerFn: func(ctx context.Context, req user.CreateRequest) (user.User, error) {
			u := sampleUser()
			u.Email = req.Email
			u.Username = req.Username
			return u, nil
		},
	}

	h := handlers.NewUsersHandler(dir, &fakeProfileReader{}, &fakeIssuer{}, nil)

	r := setupRouter(http.MethodPost, "/users/", h.Register)

	body := `{"new_user": {"email": "amy@example.com", "username": "amy", "password": "secret-pass"}}`
	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Email string `json:"email"`
		Token *struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		} `json:"access_token"`
		Profile *struct {
			UserID int64 `json:"user_id"`
		} `json:"profile"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Email != "amy@example.com" {
		t.Fatalf("unexpected email %q", resp.Email)
	}

	if resp.Token == nil || resp.Token.AccessToken != "fake-token" || resp.Token.TokenType != "bearer" {
		t.Fatalf("expected bearer token in response, got %+v", resp.Token)
	}

	if resp.Profile == nil || resp.Profile.UserID != 1 {
		t.Fatalf("expected companion profile in response, got %+v", resp.Profile)
	}

	if strings.Contains(w.Body.String(), "password") || strings.Contains(w.Body.String(), "salt") {
		t.Fatalf("response must never leak password material: %s", w.Body.String())
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name           string
		form           url.Values
		dirSetup       func(*fakeUserDirectory)
		wantStatusCode int
	}{
		{
			name: "success",
			form: url.Values{"username": {"amy@example.com"}, "password": {"secret-pass"}},
			dirSetup: func(f *fakeUserDirectory) {
				f.authFn = func(ctx context.Context, email, password string) (user.User, error) {
					if email != "amy@example.com" || password != "secret-pass" {
						return user.User{}, user.ErrInvalidCredentials
					}
					return sampleUser(), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "bad_credentials",
			form: url.Values{"username": {"amy@example.com"}, "password": {"wrong"}},
			dirSetup: func(f *fakeUserDirectory) {
				f.authFn = func(ctx context.Context, email, password string) (user.User, error) {
					return user.User{}, user.ErrInvalidCredentials
				}
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "missing_password",
			form:           url.Values{"username": {"amy@example.com"}},
			dirSetup:       nil,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name: "repo_error",
			form: url.Values{"username": {"amy@example.com"}, "password": {"secret-pass"}},
			dirSetup: func(f *fakeUserDirectory) {
				f.authFn = func(ctx context.Context, email, password string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			dir := &fakeUserDirectory{}

			if tt.dirSetup != nil {
				tt.dirSetup(dir)
			}

			h := handlers.NewUsersHandler(dir, &fakeProfileReader{}, &fakeIssuer{}, nil)

			r := setupRouter(http.MethodPost, "/users/login/token/", h.Login)

			req := httptest.NewRequest(http.MethodPost, "/users/login/token/", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusUnauthorized {
				if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
					t.Fatalf("401 must carry WWW-Authenticate: Bearer, got %q", got)
				}
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					AccessToken string `json:"access_token"`
					TokenType   string `json:"token_type"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.AccessToken == "" || resp.TokenType != "bearer" {
					t.Fatalf("unexpected token payload: %+v", resp)
				}
			}
		})
	}
}

func TestMeHandler(t *testing.T) {
	h := handlers.NewUsersHandler(&fakeUserDirectory{}, &fakeProfileReader{}, &fakeIssuer{}, nil)

	r := setupAuthedRouter(http.MethodGet, "/users/me/", sampleUser(), h.Me)

	req := httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Username string `json:"username"`
		Profile  *struct {
			UserID int64 `json:"user_id"`
		} `json:"profile"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Username != "amy" {
		t.Fatalf("unexpected username %q", resp.Username)
	}

	if resp.Profile == nil || resp.Profile.UserID != 1 {
		t.Fatalf("expected profile in response, got %+v", resp.Profile)
	}
}

func TestMeHandlerWithoutIdentity(t *testing.T) {
	h := handlers.NewUsersHandler(&fakeUserDirectory{}, &fakeProfileReader{}, &fakeIssuer{}, nil)

	r := setupRouter(http.MethodGet, "/users/me/", h.Me)

	req := httptest.NewRequest(http.MethodGet, "/users/me/", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
	}
}
