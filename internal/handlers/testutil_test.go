package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/yatube/yatube/internal/config"
	"github.com/yatube/yatube/internal/database"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/repository"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
	"github.com/yatube/yatube/web"
)

type testEnv struct {
	app    *fiber.App
	store  *repository.Store
	events *recordingPublisher
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []string
	updated []string
}

func (p *recordingPublisher) PublishPostCreated(_ context.Context, post *models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, post.ID.String())
	return nil
}

func (p *recordingPublisher) PublishPostUpdated(_ context.Context, post *models.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, post.ID.String())
	return nil
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := database.Connect(config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	store := repository.NewGormStore(db)
	events := &recordingPublisher{}

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		Views:        web.NewEngine(),
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	Register(app, Dependencies{
		Store:    store,
		Events:   events,
		PageSize: 10,
		LoginURL: "/auth/login/",
	})

	return &testEnv{app: app, store: store, events: events}
}

func createTestUser(t *testing.T, env *testEnv, username string) (*models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}
	user := &models.User{Username: username, PasswordHash: hash}
	if err := env.store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed creating user: %v", err)
	}
	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating token: %v", err)
	}
	return user, token
}

func createTestGroup(t *testing.T, env *testEnv, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	if err := env.store.Groups.Create(context.Background(), group); err != nil {
		t.Fatalf("failed creating group: %v", err)
	}
	return group
}

var postClock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
var postClockMu sync.Mutex

// createTestPost stamps each post a minute after the previous one so
// newest-first ordering is deterministic.
func createTestPost(t *testing.T, env *testEnv, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	postClockMu.Lock()
	postClock = postClock.Add(time.Minute)
	createdAt := postClock
	postClockMu.Unlock()

	post := &models.Post{Text: text, AuthorID: author.ID}
	post.CreatedAt = createdAt
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := env.store.Posts.Create(context.Background(), post); err != nil {
		t.Fatalf("failed creating post: %v", err)
	}
	return post
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func jsonHeaders(token string) map[string]string {
	headers := map[string]string{"Accept": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return headers
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performForm(t *testing.T, app *fiber.App, path string, values url.Values, headers map[string]string) *http.Response {
	t.Helper()

	requestHeaders := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	return performRequest(t, app, http.MethodPost, path, strings.NewReader(values.Encode()), requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	return string(raw)
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assertStatus(t, resp, http.StatusFound)
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

// renderedPage decodes a JSON-rendered page and checks its template name.
func renderedPage(t *testing.T, resp *http.Response, template string) map[string]any {
	t.Helper()
	body := decodeJSONMap(t, resp)
	if got, _ := body["template"].(string); got != template {
		t.Fatalf("expected template %q, got %q (body=%+v)", template, got, body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", body["data"])
	}
	return data
}

func pageItems(t *testing.T, data map[string]any) []any {
	t.Helper()
	page, ok := data["page_obj"].(map[string]any)
	if !ok {
		t.Fatalf("expected page_obj object, got %T", data["page_obj"])
	}
	items, ok := page["items"].([]any)
	if !ok {
		t.Fatalf("expected items array, got %T", page["items"])
	}
	return items
}
