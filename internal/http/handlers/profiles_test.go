package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Nmomos/hedgehog-reservation/internal/domain/profile"
	"github.com/Nmomos/hedgehog-reservation/internal/http/handlers"
)

type fakeProfileStore struct {
	getFn    func(ctx context.Context, username string) (profile.Profile, error)
	updateFn func(ctx context.Context, userID int64, req profile.UpdateRequest) (profile.Profile, error)
}

func (f *fakeProfileStore) GetByUsername(ctx context.Context, username string) (profile.Profile, error) {
	if f.getFn != nil {
		return f.getFn(ctx, username)
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (f *fakeProfileStore) UpdateForUser(ctx context.Context, userID int64, req profile.UpdateRequest) (profile.Profile, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, req)
	}
	return profile.Profile{UserID: userID}, nil
}

func TestGetProfileByUsername(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		getFn          func(ctx context.Context, username string) (profile.Profile, error)
		wantStatusCode int
	}{
		{
			name: "found",
			path: "/profiles/amy/",
			getFn: func(ctx context.Context, username string) (profile.Profile, error) {
				return profile.Profile{ID: 1, UserID: 1, Username: username}, nil
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing",
			path:           "/profiles/nobody/",
			getFn:          nil,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "username_too_short",
			path:           "/profiles/ab/",
			getFn:          nil,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "username_bad_chars",
			path:           "/profiles/amy%20rose!/",
			getFn:          nil,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeProfileStore{getFn: tt.getFn}

			h := handlers.NewProfilesHandler(store)

			r := setupAuthedRouter(http.MethodGet, "/profiles/:username/", sampleUser(), h.GetProfileByUsername)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateOwnProfile(t *testing.T) {
	var askedUserID int64
	var gotFullName *string

	store := &fakeProfileStore{
		updateFn: func(ctx context.Context, userID int64, req profile.UpdateRequest) (profile.Profile, error) {
			askedUserID = userID
			gotFullName = req.FullName
			return profile.Profile{ID: 1, UserID: userID, FullName: req.FullName}, nil
		},
	}

	h := handlers.NewProfilesHandler(store)

	r := setupAuthedRouter(http.MethodPut, "/profiles/me/", sampleUser(), h.UpdateOwnProfile)

	body := `{"profile_update": {"full_name": "Amy Rose"}}`

	req := httptest.NewRequest(http.MethodPut, "/profiles/me/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if askedUserID != sampleUser().ID {
		t.Fatalf("update must target the caller's profile, asked for user %d", askedUserID)
	}

	if gotFullName == nil || *gotFullName != "Amy Rose" {
		t.Fatalf("full_name not forwarded, got %v", gotFullName)
	}
}

func TestUpdateOwnProfileMissingWrapper(t *testing.T) {
	h := handlers.NewProfilesHandler(&fakeProfileStore{})

	r := setupAuthedRouter(http.MethodPut, "/profiles/me/", sampleUser(), h.UpdateOwnProfile)

	req := httptest.NewRequest(http.MethodPut, "/profiles/me/", strings.NewReader(`{"full_name": "Amy Rose"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422, body=%s", w.Code, w.Body.String())
	}
}
