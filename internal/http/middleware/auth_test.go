package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/pkg/auth"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

func newSessionServiceMock(t *testing.T) (*auth.SessionService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	svc := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		JWTSecret:       []byte("a-secret-that-is-at-least-32-chars!!"),
		Issuer:          "fitdesk",
	}, repository.NewSessionsRepository(db), repository.NewUsersRepository(db))
	return svc, mock, db
}

func sessionRow(sessionID, userID uuid.UUID, tokenHash string, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "token_hash", "created_at", "expires_at",
		"revoked_at", "last_seen_at", "metadata",
	}).AddRow(sessionID, userID, tokenHash, time.Now(), expiresAt, nil, nil, nil)
}

func userRow(userID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "name", "role", "email_confirmed", "failed_login_attempts",
		"locked_until", "mfa_enabled", "created_at", "updated_at", "deleted_at",
	}).AddRow(userID, "owner@example.com", "Ada", "admin", true, 0, nil, false, now, now, nil)
}

// An expired or garbage access token with a live refresh cookie must
// yield an authenticated request and rotated cookies on the response,
// not a silent logout.
func TestResolveSessionSilentRefresh(t *testing.T) {
	svc, mock, db := newSessionServiceMock(t)
	defer db.Close()

	refreshToken := "opaque-refresh-token-value"
	sessionID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT`).
		WithArgs(auth.HashToken(refreshToken)).
		WillReturnRows(sessionRow(sessionID, userID, auth.HashToken(refreshToken), time.Now().Add(time.Hour)))
	mock.ExpectExec(`UPDATE sessions`).
		WithArgs(sessionID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnRows(userRow(userID))

	var sawUserID, sawSessionID uuid.UUID
	var authenticated bool
	handler := ResolveSession(svc, gateTestLogger(), httputil.DefaultCookieConfig(false))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated = IsAuthenticated(r.Context())
			sawUserID, _ = GetUserID(r.Context())
			sawSessionID, _ = GetSessionID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "expired-or-garbage"})
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshToken})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !authenticated {
		t.Fatal("request stayed anonymous despite a live refresh cookie")
	}
	if sawUserID != userID {
		t.Errorf("user id = %s, want %s", sawUserID, userID)
	}
	if sawSessionID != sessionID {
		t.Errorf("session id = %s, want %s", sawSessionID, sessionID)
	}

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	access, ok := cookies["access_token"]
	if !ok || access.Value == "" {
		t.Fatal("no rotated access_token cookie on the response")
	}
	claims, err := svc.ValidateAccessToken(access.Value)
	if err != nil {
		t.Fatalf("rotated access token does not validate: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("rotated token subject = %q, want %q", claims.Subject, userID)
	}
	refresh, ok := cookies["refresh_token"]
	if !ok || refresh.Value != refreshToken {
		t.Errorf("refresh_token cookie = %+v, want the original token retained", refresh)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestResolveSessionUnknownRefreshStaysAnonymous(t *testing.T) {
	svc, mock, db := newSessionServiceMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "token_hash", "created_at", "expires_at",
			"revoked_at", "last_seen_at", "metadata",
		}))

	ran := false
	handler := ResolveSession(svc, gateTestLogger(), httputil.DefaultCookieConfig(false))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ran = true
			if IsAuthenticated(r.Context()) {
				t.Error("revoked refresh token resolved an identity")
			}
		}))

	req := httptest.NewRequest("GET", "/pricing", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "revoked-or-unknown"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !ran {
		t.Fatal("handler did not run; resolution must never reject")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Errorf("cookies were set for a failed refresh: %v", w.Result().Cookies())
	}
}

func TestResolveSessionNoCredentials(t *testing.T) {
	svc, _, db := newSessionServiceMock(t)
	defer db.Close()

	ran := false
	handler := ResolveSession(svc, gateTestLogger(), httputil.DefaultCookieConfig(false))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ran = true
			if IsAuthenticated(r.Context()) {
				t.Error("anonymous request resolved an identity")
			}
		}))

	req := httptest.NewRequest("GET", "/pricing", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !ran {
		t.Fatal("handler did not run")
	}
}
