package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parish-backend-go/internal/config"
	"parish-backend-go/internal/models"
	"parish-backend-go/internal/services"
	"parish-backend-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "admin-token"

type fakeIdentity struct {
	identity services.Identity
	err      error
}

func (f fakeIdentity) Verify(context.Context, string) (services.Identity, error) {
	return f.identity, f.err
}

type testEnv struct {
	server  *Server
	handler http.Handler
	store   *store.MemoryStore
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		StoreBackend:      "file",
		UploadDir:         t.TempDir(),
		AttachmentBackend: "local",
		MaxUploadMB:       1,
		SessionSecret:     "test-secret",
		SessionIssuer:     "parish-test",
		SessionTTLSeconds: 3600,
		AdminToken:        testAdminToken,
		AdminEmails:       []string{"pastor@example.com"},
		AdminUser:         "admin",
		AdminPass:         "hunter2",
		GoogleClientID:    "client-id",
		RateLimitRPS:      1000,
		RateLimitBurst:    1000,
	}
}

func newTestEnv(t *testing.T, mutate func(*config.Config, *Dependencies)) testEnv {
	t.Helper()
	cfg := testConfig(t)
	memory := store.NewMemoryStore()
	attachments, err := services.NewLocalAttachments(cfg.UploadDir)
	require.NoError(t, err)
	deps := Dependencies{
		Store:       memory,
		Attachments: attachments,
		Identity:    fakeIdentity{identity: services.Identity{Email: "Pastor@Example.com", Name: "Pastor"}},
		Now:         func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) },
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}
	server := NewServer(cfg, deps)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return testEnv{server: server, handler: server.Router(ctx), store: memory}
}

func (e testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e testEnv) doJSON(t *testing.T, method, path string, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = "application/json"
	return e.do(t, method, path, bytes.NewReader(raw), headers)
}

func adminHeaders() map[string]string {
	return map[string]string{"X-Admin-Token": testAdminToken}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndConfig(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/config", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"googleClientId":"client-id","adminEmails":["pastor@example.com"]}`, rec.Body.String())
}

func TestPrayerLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]interface{}{"text": "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Missing text"}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/submit/prayer", strings.NewReader("not json"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]interface{}{"text": "Pray for me", "name": "Ana"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"id":1}`, rec.Body.String())
	rec = env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]interface{}{"text": "Second", "anon": true, "ts": 1700000000.7}, nil)
	assert.JSONEq(t, `{"success":true,"id":2}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/pending-prayers", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())
	rec = env.do(t, http.MethodGet, "/api/pending-prayers", nil, map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/pending-prayers", nil, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[[]models.Prayer](t, rec)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(1700000000), pending[1].TS)
	assert.True(t, pending[1].Anon)

	rec = env.do(t, http.MethodPost, "/api/pending-prayers/2/approve", nil, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"id":1}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/pending-prayers/2/approve", nil, adminHeaders())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not found"}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/pending-prayers/abc/approve", nil, adminHeaders())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/pending-prayers/1/reject", nil, adminHeaders())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	rec = env.do(t, http.MethodPost, "/api/pending-prayers/1/reject", nil, adminHeaders())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/pending-prayers", nil, adminHeaders())
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/prayers", nil, adminHeaders())
	approved := decode[[]models.Prayer](t, rec)
	require.Len(t, approved, 1)
	assert.Equal(t, "Second", approved[0].Text)
}

func TestEmptyAdminTokenNeverGrantsAccess(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, _ *Dependencies) { cfg.AdminToken = "" })

	rec := env.do(t, http.MethodGet, "/api/pending-prayers", nil, map[string]string{"X-Admin-Token": ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/prayers", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type membershipForm struct {
	fields map[string]string
	files  map[string]struct{ name, content string }
}

func (f membershipForm) encode(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range f.fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for field, file := range f.files {
		part, err := writer.CreateFormFile(field, file.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (e testEnv) postMembership(t *testing.T, form membershipForm) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := form.encode(t)
	return e.do(t, http.MethodPost, "/api/memberships", body, map[string]string{"Content-Type": contentType})
}

func TestMembershipSubmission(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.postMembership(t, membershipForm{
		fields: map[string]string{
			"memberName":  "Jane",
			"memberPhone": "1234567890",
			"memberEmail": "jane@example.com",
			"children":    `[{"name":"Tom","age":7}]`,
		},
		files: map[string]struct{ name, content string }{
			"familyPhoto": {name: "family photo.jpg", content: "jpeg-bytes"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[MembershipSubmitResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Submitted for review", resp.Message)
	assert.Equal(t, 1, resp.PendingID)
	assert.True(t, strings.HasPrefix(resp.FamilyPhoto, "/uploads/familyPhoto_family_photo_20240506070809_"), resp.FamilyPhoto)
	assert.Empty(t, resp.MemberSignature)
	assert.NotContains(t, rec.Body.String(), "member_signature")

	rec = env.do(t, http.MethodGet, resp.FamilyPhoto, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/pending-memberships", nil, adminHeaders())
	pending := decode[[]models.Membership](t, rec)
	require.Len(t, pending, 1)
	assert.Equal(t, "Jane", pending[0].Name)
	assert.Equal(t, "2024-05-06T07:08:09Z", pending[0].Timestamp)
	require.Len(t, pending[0].Children, 1)
	assert.Equal(t, models.FlexString("7"), pending[0].Children[0].Age)

	rec = env.do(t, http.MethodPost, "/api/pending-memberships/1/approve", nil, adminHeaders())
	assert.JSONEq(t, `{"success":true,"id":1}`, rec.Body.String())
	rec = env.do(t, http.MethodGet, "/api/memberships", nil, adminHeaders())
	assert.Len(t, decode[[]models.Membership](t, rec), 1)
}

func TestMembershipSubmissionErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.postMembership(t, membershipForm{fields: map[string]string{"memberName": "Jane", "memberPhone": "12345"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Phone must be 10 digits"}`, rec.Body.String())

	rec = env.postMembership(t, membershipForm{
		fields: map[string]string{"memberName": "Jane", "memberPhone": "1234567890"},
		files:  map[string]struct{ name, content string }{"memberSignature": {name: "sign.exe", content: "MZ"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"File type not allowed for memberSignature"}`, rec.Body.String())

	rec = env.postMembership(t, membershipForm{
		fields: map[string]string{"memberName": "Jane", "memberPhone": "1234567890"},
		files:  map[string]struct{ name, content string }{"familyPhoto": {name: "big.png", content: strings.Repeat("x", 2<<20)}},
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"File too large. Limit is 1 MB"}`, rec.Body.String())

	assert.Nil(t, env.store.Raw(store.PendingMembers))
}

func TestMembershipSubmission_StoreFailureRemovesAttachments(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.FailSaves(store.PendingMembers, errors.New("disk full"))

	rec := env.postMembership(t, membershipForm{
		fields: map[string]string{"memberName": "Jane", "memberPhone": "1234567890"},
		files:  map[string]struct{ name, content string }{"familyPhoto": {name: "family.png", content: "png"}},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to save"}`, rec.Body.String())

	entries, err := readDirNames(env.server.Config.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadsRejectTraversal(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/uploads/..%2Fsecret", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodGet, "/uploads/missing.png", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkImport(t *testing.T) {
	env := newTestEnv(t, nil)
	payload := []interface{}{
		map[string]interface{}{"name": "A", "phone": "1"},
		"not an object",
		map[string]interface{}{"name": "B", "children": []interface{}{}},
	}

	rec := env.doJSON(t, http.MethodPost, "/upload/memberships", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/upload/memberships", strings.NewReader("[]"), adminHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Expected application/json"}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/upload/memberships", map[string]string{"name": "x"}, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Expected a JSON array"}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/upload/memberships", payload, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Saved","saved":2,"ids":[1,2]}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/upload/prayers", []interface{}{map[string]interface{}{"text": "t", "ts": 5}}, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Prayers saved","saved":1,"ids":[1]}`, rec.Body.String())
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookie {
			return cookie
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestFallbackLoginAndLogout(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Missing username or password"}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid credentials"}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[SessionResponse](t, rec)
	assert.True(t, login.User.Admin)
	assert.Empty(t, login.Token)
	assert.NotContains(t, rec.Body.String(), `"token"`)
	cookie := sessionCookieFrom(t, rec)
	assert.True(t, cookie.HttpOnly)

	withCookie := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.AddCookie(cookie)
		out := httptest.NewRecorder()
		env.handler.ServeHTTP(out, req)
		return out
	}

	rec = withCookie(http.MethodGet, "/auth/me")
	me := decode[MeResponse](t, rec)
	require.NotNil(t, me.User)
	assert.Equal(t, "admin", me.User.Email)

	rec = withCookie(http.MethodGet, "/api/login-logs")
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]models.LoginLogEntry](t, rec)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].LogoutTime)

	rec = withCookie(http.MethodPost, "/auth/logout")
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = withCookie(http.MethodGet, "/auth/me")
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
	rec = withCookie(http.MethodGet, "/api/pending-prayers")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/login-logs", nil, adminHeaders())
	logs = decode[[]models.LoginLogEntry](t, rec)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].LogoutTime)
	require.NotNil(t, logs[0].DurationSeconds)
}

func TestLogin_BearerTokenOnlyOnRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	creds := map[string]string{"username": "admin", "password": "hunter2"}

	rec := env.doJSON(t, http.MethodPost, "/auth/login", creds, map[string]string{"X-Session-Transport": "bearer"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[SessionResponse](t, rec)
	require.NotEmpty(t, login.Token)

	rec = env.do(t, http.MethodGet, "/api/pending-prayers", nil, map[string]string{"Authorization": "Bearer " + login.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFallbackLoginNotConfigured(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, _ *Dependencies) { cfg.AdminPass = "" })
	rec := env.doJSON(t, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "x"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Server not configured for fallback login"}`, rec.Body.String())
}

func TestGoogleVerify(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.doJSON(t, http.MethodPost, "/auth/google/verify", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Missing id_token"}`, rec.Body.String())

	rec = env.doJSON(t, http.MethodPost, "/auth/google/verify", map[string]string{"credential": "tok"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SessionResponse](t, rec)
	assert.True(t, resp.User.Admin)
	assert.Equal(t, "Pastor@Example.com", resp.User.Email)

	rec = env.do(t, http.MethodGet, "/api/login-logs", nil, adminHeaders())
	assert.Len(t, decode[[]models.LoginLogEntry](t, rec), 1)
}

func TestGoogleVerifyFailures(t *testing.T) {
	env := newTestEnv(t, func(_ *config.Config, deps *Dependencies) {
		deps.Identity = fakeIdentity{identity: services.Identity{Email: "member@example.com"}}
	})
	rec := env.doJSON(t, http.MethodPost, "/auth/google/verify", map[string]string{"id_token": "tok"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[SessionResponse](t, rec).User.Admin)
	rec = env.do(t, http.MethodGet, "/api/login-logs", nil, adminHeaders())
	assert.JSONEq(t, `[]`, rec.Body.String())

	env = newTestEnv(t, func(_ *config.Config, deps *Dependencies) {
		deps.Identity = fakeIdentity{err: errors.New("token expired")}
	})
	rec = env.doJSON(t, http.MethodPost, "/auth/google/verify", map[string]string{"id_token": "tok"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"token expired"}`, rec.Body.String())

	env = newTestEnv(t, func(cfg *config.Config, _ *Dependencies) { cfg.GoogleClientID = "" })
	rec = env.doJSON(t, http.MethodPost, "/auth/google/verify", map[string]string{"id_token": "tok"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDevLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/auth/dev-login", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not available"}`, rec.Body.String())

	env = newTestEnv(t, func(cfg *config.Config, _ *Dependencies) { cfg.DevMode = true })
	rec = env.do(t, http.MethodPost, "/auth/dev-login", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev-admin@example.com", decode[SessionResponse](t, rec).User.Email)
}

func TestRateLimitedSubmissions(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config, _ *Dependencies) {
		cfg.RateLimitRPS = 0.001
		cfg.RateLimitBurst = 1
	})
	rec := env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]string{"text": "one"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]string{"text": "two"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]string{"text": "three"}, map[string]string{"X-Forwarded-For": "10.0.0.9"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	env = newTestEnv(t, func(cfg *config.Config, _ *Dependencies) {
		cfg.RateLimitRPS = 0.001
		cfg.RateLimitBurst = 1
		cfg.TrustedProxies = []string{"192.0.2.0/24"}
	})
	forwardedFor := func(ip string) map[string]string { return map[string]string{"X-Forwarded-For": ip} }
	rec = env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]string{"text": "one"}, forwardedFor("10.0.0.9"))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]string{"text": "two"}, forwardedFor("10.0.0.9"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	rec = env.doJSON(t, http.MethodPost, "/submit/prayer", map[string]string{"text": "three"}, forwardedFor("10.0.0.10"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHistoryRequiresAdmin(t *testing.T) {
	history := services.NewMetricsHistory(10)
	history.Add(services.MetricSample{SystemMemoryTotal: 42})
	env := newTestEnv(t, func(_ *config.Config, deps *Dependencies) { deps.Metrics = history })

	rec := env.do(t, http.MethodGet, "/api/admin/metrics/history", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/metrics/history?limit=5", nil, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[MetricsHistoryResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(42), resp.Items[0].SystemMemoryTotal)

	rec = env.do(t, http.MethodGet, "/ws/metrics", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
