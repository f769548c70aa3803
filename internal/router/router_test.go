package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/config"
	"portfolio-api/internal/handler"
	"portfolio-api/internal/middleware"
	"portfolio-api/internal/service"
	"portfolio-api/internal/storage"
	"portfolio-api/internal/testutil"
	"portfolio-api/internal/token"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	server *httptest.Server
	mailer *testutil.Mailer
	users  *service.UserService
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Env:                "test",
		RequestTimeout:     5 * time.Second,
		JWTSecret:          "test-secret",
		JWTAccessTTL:       15 * time.Minute,
		JWTRefreshTTL:      24 * time.Hour,
		CookieName:         "accessToken",
		CORSOrigins:        []string{"http://localhost:3000"},
		RateLimitRPM:       1000,
		AuthRateLimitRPM:   1000,
		CacheTTL:           time.Minute,
		StorageDriver:      "local",
		UploadDir:          t.TempDir(),
		MaxUploadSize:      1 << 20,
		DefaultProfileSlug: "jane-doe",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	users := testutil.NewMemoryCredentialStore()
	profiles := testutil.NewMemoryProfileStore()
	mailer := &testutil.Mailer{}
	profileCache := cache.NewMemory()

	images, err := storage.NewLocalStore(cfg.UploadDir, "/uploads")
	require.NoError(t, err)

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	require.NoError(t, err)

	sessions, err := service.NewSessionService(users, codec, profileCache, nil)
	require.NoError(t, err)
	resets := service.NewPasswordResetService(users, mailer, profileCache, service.PasswordResetConfig{
		TokenTTL:    time.Hour,
		SendTimeout: time.Second,
		FrontendURL: "http://localhost:3000",
	}, nil)
	userService := service.NewUserService(users, profileCache, cfg.CacheTTL, images, nil, nil)

	cookie := middleware.NewSessionCookie(cfg.CookieName, cfg.CookieDomain, cfg.IsProduction(), cfg.JWTAccessTTL)
	h := Handlers{
		Auth:           handler.NewAuthHandler(userService, sessions, resets, cookie, cfg.MaxUploadSize),
		User:           handler.NewUserHandler(service.NewUserAdminService(users, profileCache, nil)),
		Profile:        handler.NewProfileHandler(service.NewProfileService(profiles, images, nil), cfg.DefaultProfileSlug, cfg.MaxUploadSize),
		Project:        handler.NewProjectHandler(service.NewProjectService(testutil.NewMemoryProjectStore(), profiles, images, nil), cfg.MaxUploadSize),
		Skill:          handler.NewSkillHandler(service.NewSkillService(testutil.NewMemorySkillStore(), nil)),
		Education:      handler.NewEducationHandler(service.NewEducationService(testutil.NewMemoryEducationStore(), profiles, nil), cfg.MaxUploadSize),
		WorkExperience: handler.NewWorkExperienceHandler(service.NewWorkExperienceService(testutil.NewMemoryWorkExperienceStore(), profiles, images, nil), cfg.MaxUploadSize),
		SocialLink:     handler.NewSocialLinkHandler(service.NewSocialLinkService(testutil.NewMemorySocialLinkStore(), profiles, nil)),
		Blog:           handler.NewBlogHandler(service.NewBlogService(testutil.NewMemoryBlogStore(), profiles, images, nil), cfg.MaxUploadSize),
		Health:         handler.NewHealthHandler(stubPinger{}, nil, cfg.Env),
	}

	server := httptest.NewServer(New(cfg, middleware.NewAuthMiddleware(sessions, cookie), nil, h))
	t.Cleanup(server.Close)

	return &testEnv{server: server, mailer: mailer, users: userService}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type sessionBody struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (e *testEnv) do(t *testing.T, method string, path string, body any, accessToken string) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func (e *testEnv) register(t *testing.T, name string, email string, password string) {
	t.Helper()

	resp, body := e.do(t, http.MethodPost, "/api/v1/users/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)
}

func (e *testEnv) login(t *testing.T, email string, password string) (*http.Response, sessionBody) {
	t.Helper()

	resp, body := e.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	var session sessionBody
	require.NoError(t, json.Unmarshal(body.Data, &session))
	return resp, session
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, method string, url string, fields map[string]string, fileField string, file []byte, accessToken string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, "upload.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return req
}

func TestRegisterLoginProfile(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))

	env.register(t, "Alice", "alice@example.com", "secret123")

	resp, body := env.do(t, http.MethodPost, "/api/v1/users/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "User with this email already exists", body.Message)

	loginResp, session := env.login(t, "alice@example.com", "secret123")
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)

	var cookie *http.Cookie
	for _, c := range loginResp.Cookies() {
		if c.Name == "accessToken" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, session.AccessToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/users/profile", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: session.AccessToken})
	resp, body = env.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	assert.Equal(t, "User profile fetched successfully", body.Message)
	assert.NotContains(t, string(body.Data), "password")

	resp, _ = env.do(t, http.MethodGet, "/api/v1/users/profile", nil, session.AccessToken)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	resp, body = env.do(t, http.MethodGet, "/api/v1/users/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))
	env.register(t, "Alice", "alice@example.com", "secret123")

	wrongPassword, a := env.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email": "alice@example.com", "password": "nope-nope",
	}, "")
	unknownEmail, b := env.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email": "bob@example.com", "password": "secret123",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, wrongPassword.StatusCode, unknownEmail.StatusCode)
	assert.Equal(t, a.Error, b.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", a.Error.Code)
}

func TestRefreshRotation(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))
	env.register(t, "Alice", "alice@example.com", "secret123")
	_, session := env.login(t, "alice@example.com", "secret123")

	resp, body := env.do(t, http.MethodPost, "/api/v1/users/refresh-token", map[string]string{"refreshToken": session.RefreshToken}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Token refreshed successfully", body.Message)

	var rotated sessionBody
	require.NoError(t, json.Unmarshal(body.Data, &rotated))
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	resp, body = env.do(t, http.MethodPost, "/api/v1/users/refresh-token", map[string]string{"refreshToken": session.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired refresh token", body.Message)

	resp, body = env.do(t, http.MethodPost, "/api/v1/users/refresh-token", map[string]string{}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Refresh token is required", body.Message)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/users/refresh-token", map[string]string{"refreshToken": rotated.RefreshToken}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutClearsCookieAndRefreshToken(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))
	env.register(t, "Alice", "alice@example.com", "secret123")
	_, session := env.login(t, "alice@example.com", "secret123")

	resp, body := env.do(t, http.MethodPost, "/api/v1/users/logout", nil, session.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logout successful", body.Message)

	setCookie := resp.Header.Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(setCookie, "accessToken=;"), setCookie)
	assert.Contains(t, setCookie, "Path=/")
	assert.Contains(t, setCookie, "Max-Age=0")
	assert.Contains(t, setCookie, "HttpOnly")
	assert.Contains(t, setCookie, "SameSite=Lax")

	resp, _ = env.do(t, http.MethodPost, "/api/v1/users/refresh-token", map[string]string{"refreshToken": session.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

var resetLink = regexp.MustCompile(`token=([0-9a-f]{64})`)

func TestPasswordResetFlow(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))
	env.register(t, "Alice", "alice@example.com", "secret123")

	unknown, a := env.do(t, http.MethodPost, "/api/v1/users/forgot-password", map[string]string{"email": "nobody@example.com"}, "")
	known, b := env.do(t, http.MethodPost, "/api/v1/users/forgot-password", map[string]string{"email": "alice@example.com"}, "")
	require.Equal(t, http.StatusOK, unknown.StatusCode)
	require.Equal(t, http.StatusOK, known.StatusCode)
	assert.Equal(t, a.Message, b.Message)

	msg, ok := env.mailer.Last()
	require.True(t, ok)
	m := resetLink.FindStringSubmatch(msg.Text)
	require.Len(t, m, 2)

	resp, body := env.do(t, http.MethodPost, "/api/v1/users/reset-password", map[string]string{"token": m[1], "newPassword": "changed456"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	resp, body = env.do(t, http.MethodPost, "/api/v1/users/reset-password", map[string]string{"token": m[1], "newPassword": "another789"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or expired reset token.", body.Message)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{"email": "alice@example.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	env.login(t, "alice@example.com", "changed456")
}

func TestAuthRateLimit(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.AuthRateLimitRPM = 2
	env := newTestServer(t, cfg)

	creds := map[string]string{"email": "alice@example.com", "password": "secret123"}
	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/users/login", creds, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodPost, "/api/v1/users/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/skills", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfileAndProjectRoutes(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))
	env.register(t, "Jane", "jane@example.com", "secret123")
	env.register(t, "Mallory", "mallory@example.com", "secret123")
	_, jane := env.login(t, "jane@example.com", "secret123")
	_, mallory := env.login(t, "mallory@example.com", "secret123")

	req := multipartRequest(t, http.MethodPost, env.server.URL+"/api/v1/profile", map[string]string{"fullName": "Jane Doe"}, "", nil, jane.AccessToken)
	resp, body := env.send(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file uploaded", body.Message)

	req = multipartRequest(t, http.MethodPost, env.server.URL+"/api/v1/profile", map[string]string{"fullName": "Jane Doe", "headline": "Engineer"}, "image", pngBytes(t), jane.AccessToken)
	resp, body = env.send(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)

	var profile struct {
		ID        string `json:"id"`
		Slug      string `json:"slug"`
		AvatarURL string `json:"avatarUrl"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &profile))
	assert.Equal(t, "jane-doe", profile.Slug)
	require.True(t, strings.HasPrefix(profile.AvatarURL, "/uploads/"), profile.AvatarURL)

	avatar, err := http.Get(env.server.URL + profile.AvatarURL)
	require.NoError(t, err)
	_ = avatar.Body.Close()
	assert.Equal(t, http.StatusOK, avatar.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/v1/profile", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"fullName":"Jane Doe"`)

	resp, body = env.do(t, http.MethodPost, "/api/v1/projects", map[string]any{
		"title":        "Portfolio API",
		"technologies": []string{"Go", "PostgreSQL", "go"},
	}, jane.AccessToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Message)

	var project struct {
		ID   string   `json:"id"`
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &project))
	assert.Equal(t, []string{"Go", "PostgreSQL"}, project.Tags)

	resp, body = env.do(t, http.MethodPut, "/api/v1/projects/"+project.ID, map[string]any{"title": "Stolen"}, mallory.AccessToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/projects/"+project.ID, nil, jane.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/v1/projects/"+project.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))
	env.register(t, "Alice", "alice@example.com", "secret123")
	_, session := env.login(t, "alice@example.com", "secret123")

	resp, body := env.do(t, http.MethodGet, "/api/v1/admin/users", nil, session.AccessToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))
	_, err := env.users.SeedAdmin(context.Background(), "Root", "root@example.com", "rootpass1")
	require.NoError(t, err)
	_, session := env.login(t, "root@example.com", "rootpass1")

	for _, path := range []string{
		"/api/v1/projects/abc",
		"/api/v1/education/abc",
		"/api/v1/work-experience/abc",
		"/api/v1/social-links/abc",
		"/api/v1/admin/users/abc",
	} {
		resp, body := env.do(t, http.MethodGet, path, nil, session.AccessToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		require.NotNil(t, body.Error, path)
		assert.Equal(t, "NOT_FOUND", body.Error.Code, path)
	}

	resp, _ := env.do(t, http.MethodDelete, "/api/v1/blog/abc", nil, session.AccessToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/v1/education?profileId=abc", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body.Data))
}

func TestHealthAndUnknownRoute(t *testing.T) {
	env := newTestServer(t, newTestConfig(t))

	resp, body := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body.Data), `"database":"connected"`)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, body = env.do(t, http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}
