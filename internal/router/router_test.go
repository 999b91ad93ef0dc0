package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-backend/internal/auth"
	"diary-backend/internal/auth/authtest"
	"diary-backend/internal/config"
	"diary-backend/internal/models"
	"diary-backend/internal/service"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type app struct {
	engine  *gin.Engine
	clock   *clock
	members *authtest.MemberStore
}

func newApp(t *testing.T, mode string) *app {
	t.Helper()
	cfg := &config.Config{
		Mode:   mode,
		Server: config.ServerConfig{GinMode: gin.TestMode},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	cfg.Security.CookieSecure = mode == config.ModeProd
	cfg.Security.SameSite = "lax"
	if mode == config.ModeProd {
		cfg.Security.SameSite = "none"
	}

	c := &clock{now: time.Now()}
	tokens := auth.NewTokenService("router-secret", 5*time.Minute, 2*time.Hour, auth.WithClock(c.Now))
	members := authtest.NewMemberStore()
	refresh := authtest.NewRefreshStore()
	audit := &authtest.AuditLog{}
	log := authtest.DiscardLogger()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	engine := New(cfg, Deps{
		Tokens:  tokens,
		Auth:    service.NewAuthService(members, refresh, authtest.NewLoginChecks(), audit, tokens, log),
		Members: service.NewMemberService(members, refresh, audit, log),
		Logger:  logger,
	})

	authtest.NewMember(t, members, "alice@example.com", "alice", "secret1", models.RoleUser)
	authtest.NewMember(t, members, "root@example.com", "root", "secret1", models.RoleAdmin)
	return &app{engine: engine, clock: c, members: members}
}

func (a *app) do(method, target string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) login(t *testing.T, username string) (access, refresh string) {
	t.Helper()
	form := url.Values{"username": {username}, "password": {"secret1"}}
	w := a.do(http.MethodPost, "/api/member/login", strings.NewReader(form.Encode()),
		http.Header{"Content-Type": {"application/x-www-form-urlencoded"}})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["access"].(string), body["refresh"].(string)
}

func TestAccessExpiryAndReissue(t *testing.T) {
	a := newApp(t, config.ModeDev)
	access, refresh := a.login(t, "alice@example.com")

	w := a.do(http.MethodGet, "/api/member/me", nil, http.Header{"Access": {access}})
	require.Equal(t, http.StatusOK, w.Code)

	a.clock.Advance(6 * time.Minute)

	w = a.do(http.MethodGet, "/api/member/me", nil, http.Header{"Access": {access}})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "access token expired", w.Body.String())

	w = a.do(http.MethodPost, "/api/member/reissue", nil, http.Header{"Cookie": {"refresh=" + refresh}})
	require.Equal(t, http.StatusOK, w.Code)
	var pair map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))

	w = a.do(http.MethodGet, "/api/member/me", nil, http.Header{"Authorization": {"Bearer " + pair["access"]}})
	assert.Equal(t, http.StatusOK, w.Code)

	// The rotated-out token is dead on both the reissue and silent refresh paths.
	w = a.do(http.MethodPost, "/api/member/reissue", nil, http.Header{"Refresh-Token": {refresh}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = a.do(http.MethodGet, "/api/member/me", nil, http.Header{"Refresh-Token": {refresh}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid refresh token", w.Body.String())
}

func TestAnonymousRequestsArePermissive(t *testing.T) {
	a := newApp(t, config.ModeDev)

	for _, target := range []string{"/api/member/me", "/api/admin/members", "/api/anything/else"} {
		w := a.do(http.MethodGet, target, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
		assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String(), target)
	}

	w := a.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSilentRefreshThroughRouter(t *testing.T) {
	a := newApp(t, config.ModeDev)
	_, refresh := a.login(t, "alice@example.com")

	w := a.do(http.MethodGet, "/api/member/me", nil, http.Header{"Cookie": {"refresh=" + refresh}})
	require.Equal(t, http.StatusOK, w.Code)
	fresh := w.Header().Get("access")
	require.NotEmpty(t, fresh)

	w = a.do(http.MethodGet, "/api/member/me", nil, http.Header{"Access": {fresh}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	a := newApp(t, config.ModeDev)
	userAccess, _ := a.login(t, "alice@example.com")
	adminAccess, _ := a.login(t, "root@example.com")

	w := a.do(http.MethodGet, "/api/admin/members", nil, http.Header{"Access": {userAccess}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, w.Body.String())

	w = a.do(http.MethodGet, "/api/admin/members", nil, http.Header{"Access": {adminAccess}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutThenReissueFails(t *testing.T) {
	a := newApp(t, config.ModeProd)
	_, refresh := a.login(t, "alice@example.com")

	w := a.do(http.MethodPost, "/api/member/logout", nil, http.Header{"Cookie": {"refresh=" + refresh}})
	require.Equal(t, http.StatusOK, w.Code)
	setCookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, setCookie, "Max-Age=0")
	assert.Contains(t, setCookie, "Secure")
	assert.Contains(t, setCookie, "SameSite=None")

	w = a.do(http.MethodPost, "/api/member/reissue", nil, http.Header{"Cookie": {"refresh=" + refresh}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "refresh token not found", w.Body.String())
}

func TestLogoutOnlyAcceptsPost(t *testing.T) {
	a := newApp(t, config.ModeDev)

	w := a.do(http.MethodGet, "/api/member/logout", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestReissueAliases(t *testing.T) {
	a := newApp(t, config.ModeDev)
	_, refresh := a.login(t, "alice@example.com")

	w := a.do(http.MethodPost, "/reissue", nil, http.Header{"Refresh-Token": {refresh}})
	require.Equal(t, http.StatusOK, w.Code)
	var pair map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))

	w = a.do(http.MethodPost, "/api/reissue", nil, http.Header{"Refresh-Token": {pair["refresh"]}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/api/reissue", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "refresh token null", w.Body.String())
}

func TestPreflight(t *testing.T) {
	a := newApp(t, config.ModeDev)

	w := a.do(http.MethodOptions, "/api/member/me", nil, http.Header{"Origin": {"http://localhost:5173"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
