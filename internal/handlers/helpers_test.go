package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/diewo77/go-tickets/internal/apierr"
	"github.com/diewo77/go-tickets/internal/auth"
	"github.com/diewo77/go-tickets/internal/models"
	"github.com/diewo77/go-tickets/internal/policy"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Ticket{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func testAPI(t *testing.T) (*API, *gorm.DB) {
	t.Helper()
	conn := setupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := NewAPI(conn, policy.NewGate(), apierr.NewClassifier(logger), logger)
	return api, conn
}

func seedUser(t *testing.T, conn *gorm.DB, name, email string, manager bool) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Password: "x", IsManager: manager}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedTicket(t *testing.T, conn *gorm.DB, userID uint, title, status string) models.Ticket {
	t.Helper()
	ticket := models.Ticket{Title: title, Description: "desc", Status: status, UserID: userID}
	if err := conn.Create(&ticket).Error; err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// asUser injects an authenticated principal, as the auth middleware
// would.
func asUser(r *http.Request, uid uint) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), uid))
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []apierr.Entry  `json:"errors"`
	Meta   *struct {
		Page    int   `json:"page"`
		PerPage int   `json:"per_page"`
		Total   int64 `json:"total"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, w.Body.String())
	}
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	if env.Errors != nil {
		t.Fatalf("expected success envelope, got errors: %+v", env.Errors)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

// firstError asserts an error envelope and returns its only entry.
func firstError(t *testing.T, w *httptest.ResponseRecorder) apierr.Entry {
	t.Helper()
	env := decodeEnvelope(t, w)
	if len(env.Errors) != 1 {
		t.Fatalf("expected one error entry, got %d (body: %s)", len(env.Errors), w.Body.String())
	}
	if env.Data != nil {
		t.Fatalf("error envelope must not contain data: %s", w.Body.String())
	}
	return env.Errors[0]
}
