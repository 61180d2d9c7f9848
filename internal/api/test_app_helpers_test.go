package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cvagent/internal/db"
	"github.com/terraincognita07/cvagent/internal/models"
	"github.com/terraincognita07/cvagent/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "Secret1!"

type capturingNotifier struct {
	mu   sync.Mutex
	sent []services.PasscodeNotification
}

func (notifier *capturingNotifier) SendPasscode(_ context.Context, notification services.PasscodeNotification) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.sent = append(notifier.sent, notification)
	return nil
}

func (notifier *capturingNotifier) lastPasscode(t *testing.T) string {
	t.Helper()
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.sent) == 0 {
		t.Fatal("expected a passcode to be sent")
	}
	return notifier.sent[len(notifier.sent)-1].Passcode
}

type testApp struct {
	app      *fiber.App
	database *gorm.DB
	notifier *capturingNotifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithCookieSecure(t, false)
}

func newTestAppWithCookieSecure(t *testing.T, cookieSecure bool) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cvagent-api-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	notifier := &capturingNotifier{}
	handler, err := NewHandler(database, HandlerConfig{
		SecretKey:    []byte("test-secret-key-with-enough-entropy-0123"),
		CookieSecure: cookieSecure,
		Notifier:     notifier,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{app: app, database: database, notifier: notifier}
}

func (env *testApp) createPerson(t *testing.T, username string, role string) models.Person {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	person := models.Person{
		Name:         "Test",
		Surname:      "Person",
		Email:        models.StringPointer(username + "@example.com"),
		Username:     models.StringPointer(username),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := env.database.Create(&person).Error; err != nil {
		t.Fatalf("create person %q: %v", username, err)
	}
	return person
}

func (env *testApp) createLegacyApplicant(t *testing.T, email string) models.Person {
	t.Helper()

	person := models.Person{
		Name:           "Legacy",
		Surname:        "Applicant",
		Email:          models.StringPointer(email),
		PersonalNumber: models.StringPointer("197001011234"),
		Role:           models.RoleApplicant,
	}
	if err := env.database.Create(&person).Error; err != nil {
		t.Fatalf("create legacy applicant: %v", err)
	}
	return person
}

func (env *testApp) do(t *testing.T, method string, path string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	switch value := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(value)
	default:
		payload, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if reader != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", sessionCookieName+"="+cookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func (env *testApp) login(t *testing.T, username string) string {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": testPassword,
	}, "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("login %q: expected status 200, got %d", username, response.StatusCode)
	}
	cookie := responseCookieValue(response.Cookies(), sessionCookieName)
	if cookie == "" {
		t.Fatalf("login %q: expected session cookie", username)
	}
	return cookie
}

func responseCookieValue(cookies []*http.Cookie, name string) string {
	if cookie := responseCookie(cookies, name); cookie != nil {
		return cookie.Value
	}
	return ""
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func readAPIError(t *testing.T, body io.Reader) errorResponse {
	t.Helper()

	payload := errorResponse{}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload
}

func decodeBody[T any](t *testing.T, body io.Reader) T {
	t.Helper()

	var payload T
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload
}

func assertStatus(t *testing.T, response *http.Response, want int) {
	t.Helper()
	if response.StatusCode != want {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", want, response.StatusCode, body)
	}
}
