package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rpupo63/portfolio-cms-backend/auth"
	"github.com/rpupo63/portfolio-cms-backend/config"
	"github.com/rpupo63/portfolio-cms-backend/database"
	"github.com/rpupo63/portfolio-cms-backend/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "admin"
	testPassword = "smartscale2024"
	testSecret   = "test-secret"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testServer struct {
	t         *testing.T
	handler   http.Handler
	database  database.Database
	uploadDir string
}

func newTestServer(t *testing.T, overrides map[string]string, opts ...func(*router)) *testServer {
	t.Helper()

	dir := t.TempDir()
	env := map[string]string{
		"DB_PATH":             filepath.Join(dir, "portfolio.db"),
		"UPLOAD_PATH":         filepath.Join(dir, "uploads"),
		"JWT_SECRET":          testSecret,
		"RATE_LIMIT_REQUESTS": "10000",
	}
	for key, value := range overrides {
		env[key] = value
	}

	cfg, err := config.Load(env)
	require.NoError(t, err)

	db, err := database.OpenSQLite(cfg.DBPath, nil)
	require.NoError(t, err)
	store := database.New(db)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.AdminUserRepo().EnsureDefault(context.Background(), cfg.AdminUsername, func() (string, error) {
		return auth.HashPassword(cfg.AdminPassword)
	})
	require.NoError(t, err)

	images, err := storage.NewDiskStore(cfg.UploadPath)
	require.NoError(t, err)

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	require.NoError(t, err)

	return &testServer{
		t:         t,
		handler:   newRouter(store, cfg, images, tokens, opts...),
		database:  store,
		uploadDir: cfg.UploadPath,
	}
}

func (s *testServer) do(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(method, path string, payload any, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(s.t, err)
	return s.do(method, path, bytes.NewReader(body), "application/json", token)
}

func (s *testServer) login() string {
	s.t.Helper()

	rec := s.doJSON(http.MethodPost, "/api/auth/login", LoginRequest{Username: testUsername, Password: testPassword}, "")
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[LoginResponse](s.t, rec).Token
}

func (s *testServer) uploadedFiles() []string {
	s.t.Helper()

	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(s.t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

type formField struct {
	name  string
	value string
}

func projectFields(title string) []formField {
	return []formField{
		{"title", title},
		{"description", title + " description"},
		{"category", "WEB"},
		{"features", "a, b"},
	}
}

func multipartBody(t *testing.T, fields []formField, imageName string, image []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, field := range fields {
		require.NoError(t, mw.WriteField(field.name, field.value))
	}
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAdminScenario(t *testing.T) {
	server := newTestServer(t, nil)

	rec := server.doJSON(http.MethodPost, "/api/auth/login", LoginRequest{Username: testUsername, Password: testPassword}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[LoginResponse](t, rec)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, UserResponse{ID: 1, Username: "admin"}, login.User)
	assert.False(t, login.ExpiresAt.IsZero())

	body, contentType := multipartBody(t, []formField{
		{"title", "X"},
		{"description", "Y"},
		{"category", "Z"},
		{"features", "a, b"},
	}, "", nil)
	rec = server.do(http.MethodPost, "/api/projects", body, contentType, login.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[CreatedResponse](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Project created successfully", created.Message)

	rec = server.do(http.MethodGet, "/api/projects", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[[]PublicProject](t, rec)
	require.Len(t, projects, 1)
	assert.Equal(t, created.ID, projects[0].ID)
	assert.Equal(t, []string{"a", "b"}, projects[0].Features)
	assert.Nil(t, projects[0].ImageURL)
	assert.Nil(t, projects[0].LiveURL)

	rec = server.do(http.MethodPost, "/api/auth/verify", nil, "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	verify := decode[VerifyResponse](t, rec)
	assert.True(t, verify.Valid)
	assert.Equal(t, "admin", verify.User.Username)
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, map[string]string{"ENVIRONMENT": "staging"})

	rec := server.do(http.MethodGet, "/api/health", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, "staging", health.Environment)
	assert.NotEmpty(t, health.Timestamp)
}

func TestAdminPageAndMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	server := newTestServer(t, nil, withRegistry(registry))

	rec := server.do(http.MethodGet, "/admin", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/auth/login")

	server.do(http.MethodGet, "/api/projects", nil, "", "")
	server.login()

	families, err := registry.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if counter := metric.GetCounter(); counter != nil {
				counts[family.GetName()] += counter.GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), counts["portfolio_auth_logins_total"])
	assert.GreaterOrEqual(t, counts["portfolio_http_requests_total"], float64(3))

	rec = server.do(http.MethodGet, "/metrics", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/api/projects`)
	assert.NotContains(t, rec.Body.String(), "go_goroutines", "a caller supplied registry has only the http metrics")
}

func TestNotFoundRoute(t *testing.T) {
	server := newTestServer(t, nil)

	rec := server.do(http.MethodGet, "/api/nothing-here", nil, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "404"))
}
