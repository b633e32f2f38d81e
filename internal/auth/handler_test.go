package auth_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/coursedesk/coursedesk/internal/auth"
	"github.com/coursedesk/coursedesk/internal/shared"
)

type authFixture struct {
	router   chi.Router
	sessions *shared.SessionManager
	lastSess *shared.Session
}

func newAuthFixture(t *testing.T, repo auth.Repository) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	fixture := &authFixture{sessions: sm}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), sm)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sm.Load(r.Context(), r)
			require.NoError(t, err)
			fixture.lastSess = sess
			next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
			require.NoError(t, sm.Commit(r.Context(), w, r, sess))
		})
	})
	handler.MountRoutes(router)
	fixture.router = router
	return fixture
}

func (f *authFixture) do(t *testing.T, method, path, body, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: f.sessions.CookieName(), Value: cookie})
	}
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func (f *authFixture) login(t *testing.T, email, password string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	res := f.do(t, http.MethodPost, "/login", string(body), "")
	return res, f.lastSess.ID
}

func TestLoginSuccess(t *testing.T) {
	repo := newMemoryAuthRepo(&auth.User{
		ID:           1,
		Name:         "Ada",
		Email:        "ada@campus.test",
		PasswordHash: mustHash(t, "correct horse"),
		Role:         shared.RoleAdmin,
	})
	fixture := newAuthFixture(t, repo)

	res, sessID := fixture.login(t, "ada@campus.test", "correct horse")
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Message string            `json:"message"`
		User    *shared.Principal `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "Login successful.", payload.Message)
	require.NotNil(t, payload.User)
	require.Equal(t, "ada@campus.test", payload.User.Email)
	require.Equal(t, shared.RoleAdmin, payload.User.Role)
	require.NotEmpty(t, sessID)

	// The session record lands in postgres-side bookkeeping too.
	require.Contains(t, repo.sessions, sessID)
}

func TestLoginRotatesSessionID(t *testing.T) {
	repo := newMemoryAuthRepo(&auth.User{
		ID:           1,
		Email:        "ada@campus.test",
		PasswordHash: mustHash(t, "correct horse"),
		Role:         shared.RoleStudent,
	})
	fixture := newAuthFixture(t, repo)

	// Establish an anonymous session first, the way a browser would.
	res := fixture.do(t, http.MethodGet, "/session", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	anonymousID := fixture.lastSess.ID
	require.NotEmpty(t, anonymousID)

	body := `{"email":"ada@campus.test","password":"correct horse"}`
	loginRes := fixture.do(t, http.MethodPost, "/login", body, anonymousID)
	require.Equal(t, http.StatusOK, loginRes.Code)
	require.NotEqual(t, anonymousID, fixture.lastSess.ID, "login must issue a fresh session id")
}

func TestLoginInvalidCredentialsUniform(t *testing.T) {
	repo := newMemoryAuthRepo(&auth.User{
		ID:           1,
		Email:        "ada@campus.test",
		PasswordHash: mustHash(t, "correct horse"),
	})
	fixture := newAuthFixture(t, repo)

	wrongPass, _ := fixture.login(t, "ada@campus.test", "bad")
	unknownUser, _ := fixture.login(t, "ghost@campus.test", "bad")

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.JSONEq(t, wrongPass.Body.String(), unknownUser.Body.String(),
		"both failures must be indistinguishable")
	require.Contains(t, wrongPass.Body.String(), "invalid credentials")
}

func TestLoginValidation(t *testing.T) {
	fixture := newAuthFixture(t, newMemoryAuthRepo())

	res := fixture.do(t, http.MethodPost, "/login", `{}`, "")
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)

	var problem struct {
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	require.ElementsMatch(t, []string{"email", "password"}, problem.Fields)

	res = fixture.do(t, http.MethodPost, "/login", `{"email":"not-an-email","password":"x"}`, "")
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	require.Equal(t, []string{"email"}, problem.Fields)
}

func TestLogoutIsIdempotent(t *testing.T) {
	repo := newMemoryAuthRepo(&auth.User{
		ID:           1,
		Email:        "ada@campus.test",
		PasswordHash: mustHash(t, "correct horse"),
	})
	fixture := newAuthFixture(t, repo)

	_, sessID := fixture.login(t, "ada@campus.test", "correct horse")

	first := fixture.do(t, http.MethodPost, "/logout", "", sessID)
	require.Equal(t, http.StatusOK, first.Code)
	require.NotContains(t, repo.sessions, sessID)

	second := fixture.do(t, http.MethodPost, "/logout", "", sessID)
	require.Equal(t, http.StatusOK, second.Code)
	require.Contains(t, second.Body.String(), "Logged out.")
}

func TestSessionEndpoint(t *testing.T) {
	repo := newMemoryAuthRepo(&auth.User{
		ID:           1,
		Email:        "ada@campus.test",
		PasswordHash: mustHash(t, "correct horse"),
	})
	fixture := newAuthFixture(t, repo)

	anonymous := fixture.do(t, http.MethodGet, "/session", "", "")
	require.Equal(t, http.StatusOK, anonymous.Code)
	require.Contains(t, anonymous.Body.String(), `"authenticated":false`)

	_, sessID := fixture.login(t, "ada@campus.test", "correct horse")
	authed := fixture.do(t, http.MethodGet, "/session", "", sessID)
	require.Equal(t, http.StatusOK, authed.Code)
	require.Contains(t, authed.Body.String(), `"authenticated":true`)
	require.Contains(t, authed.Body.String(), "ada@campus.test")
}

func TestChangePasswordRequiresAuthentication(t *testing.T) {
	fixture := newAuthFixture(t, newMemoryAuthRepo())

	res := fixture.do(t, http.MethodPost, "/password",
		`{"current_password":"a","new_password":"longenough"}`, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestChangePasswordFlow(t *testing.T) {
	repo := newMemoryAuthRepo(&auth.User{
		ID:           1,
		Email:        "ada@campus.test",
		PasswordHash: mustHash(t, "original-pass"),
	})
	fixture := newAuthFixture(t, repo)

	_, sessID := fixture.login(t, "ada@campus.test", "original-pass")

	short := fixture.do(t, http.MethodPost, "/password",
		`{"current_password":"original-pass","new_password":"short"}`, sessID)
	require.Equal(t, http.StatusUnprocessableEntity, short.Code)
	require.Contains(t, short.Body.String(), "new_password")

	wrong := fixture.do(t, http.MethodPost, "/password",
		`{"current_password":"not-it","new_password":"replacement-pass"}`, sessID)
	require.Equal(t, http.StatusUnauthorized, wrong.Code)

	ok := fixture.do(t, http.MethodPost, "/password",
		`{"current_password":"original-pass","new_password":"replacement-pass"}`, sessID)
	require.Equal(t, http.StatusOK, ok.Code)
	require.Contains(t, ok.Body.String(), "Password updated successfully.")
}
