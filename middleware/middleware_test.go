package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/eduengage-api/apierr"
	"github.com/andrewpaige1/eduengage-api/auth"
	"github.com/andrewpaige1/eduengage-api/config"
	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/models"
	"github.com/andrewpaige1/eduengage-api/utils"
)

var testAuth = config.AuthConfig{
	Audience: "eduengage-api",
	Issuer:   "eduengage-test",
	Secret:   "test-secret",
}

type fakeUsers struct {
	seen []string
	err  error
}

func (f *fakeUsers) EnsureUser(_ context.Context, auth0ID, nickname string) (*models.User, error) {
	f.seen = append(f.seen, auth0ID+"/"+nickname)
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{Auth0ID: auth0ID, Nickname: nickname}, nil
}

func mint(t *testing.T, secret, subject string) string {
	t.Helper()
	tok, err := auth.CreateToken(auth.TokenRequest{
		Secret:   secret,
		Issuer:   testAuth.Issuer,
		Audience: testAuth.Audience,
		Subject:  subject,
		Nickname: "ada",
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	return tok
}

func chain(t *testing.T, users UserStore) http.Handler {
	t.Helper()
	authMW, err := EnsureValidToken(testAuth, logger.Nop())
	if err != nil {
		t.Fatalf("EnsureValidToken: %v", err)
	}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user", http.StatusInternalServerError)
			return
		}
		sub, _ := utils.GetAuth0ID(r)
		utils.WriteJSON(w, http.StatusOK, map[string]string{"user": u.Auth0ID, "sub": sub, "nickname": u.Nickname})
	})
	return authMW(SyncUserMiddleware(users, logger.Nop())(final))
}

func TestAuthChain(t *testing.T) {
	users := &fakeUsers{}
	h := chain(t, users)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + mint(t, testAuth.Secret, "auth0|1"), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + mint(t, "other", "auth0|1"), http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/pathways", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tt.status, rec.Body)
			}
			if tt.status != http.StatusOK {
				var body apierr.Body
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Error != "unauthorized" {
					t.Fatalf("body=%+v err=%v", body, err)
				}
				return
			}
			var got map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got["user"] != "auth0|1" || got["sub"] != "auth0|1" || got["nickname"] != "ada" {
				t.Fatalf("got=%v", got)
			}
		})
	}
	if len(users.seen) != 1 || users.seen[0] != "auth0|1/ada" {
		t.Fatalf("EnsureUser calls=%v", users.seen)
	}
}

func TestSyncUserFailure(t *testing.T) {
	h := chain(t, &fakeUsers{err: errors.New("db down")})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mint(t, testAuth.Secret, "auth0|1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestSyncUserWithoutClaims(t *testing.T) {
	h := SyncUserMiddleware(&fakeUsers{}, logger.Nop())(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestSyncUserEmptySubject(t *testing.T) {
	users := &fakeUsers{}
	h := SyncUserMiddleware(users, logger.Nop())(http.NotFoundHandler())
	claims := &validator.ValidatedClaims{CustomClaims: &CustomClaims{Nickname: "ada"}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), jwtmiddleware.ContextKey{}, claims))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || len(users.seen) != 0 {
		t.Fatalf("status=%d seen=%v", rec.Code, users.seen)
	}
}

func TestRequestLogger(t *testing.T) {
	h := RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot || rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("status=%d id=%q", rec.Code, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc" {
		t.Fatalf("request id=%q want abc", got)
	}
}
