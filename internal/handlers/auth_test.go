package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-tickets/internal/auth"
	"github.com/diewo77/go-tickets/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	api, conn := testAPI(t)
	h := NewAuthHandler(api, time.Hour)

	body := `{"name":"Ann","email":"ann@test","password":"secret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	api.Handle(h.Register)(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	var payload struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeData(t, w, &payload)
	if payload.Token == "" {
		t.Fatal("expected a token")
	}
	if uid, ok := auth.ParseToken(payload.Token); !ok || uid != payload.User.ID {
		t.Errorf("token should resolve to the registered user")
	}

	// stored password is hashed
	var stored models.User
	if err := conn.First(&stored, payload.User.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret-password")) != nil {
		t.Error("stored password should be a bcrypt hash of the input")
	}

	// login with the right password succeeds
	req = httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"ann@test","password":"secret-password"}`))
	w = httptest.NewRecorder()
	api.Handle(h.Login)(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}

	// and with the wrong one fails with the 401 envelope
	req = httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"ann@test","password":"wrong"}`))
	w = httptest.NewRecorder()
	api.Handle(h.Login)(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestAuthRegister_Validation(t *testing.T) {
	api, _ := testAPI(t)
	h := NewAuthHandler(api, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"password":"short"}`))
	w := httptest.NewRecorder()
	api.Handle(h.Register)(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", w.Code)
	}
	e := firstError(t, w)
	fields := make(map[string]string)
	for _, fe := range e.ValidationErrors {
		fields[fe.Field] = fe.Message
	}
	if fields["name"] != "required" || fields["email"] != "required" || fields["password"] != "too_short" {
		t.Errorf("unexpected violations: %+v", e.ValidationErrors)
	}
}

func TestAuthMe(t *testing.T) {
	api, conn := testAPI(t)
	h := NewAuthHandler(api, time.Hour)
	ann := seedUser(t, conn, "Ann", "ann@test", false)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/user", nil), ann.ID)
	w := httptest.NewRecorder()
	api.Handle(h.Me)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var me models.User
	decodeData(t, w, &me)
	if me.ID != ann.ID {
		t.Errorf("expected principal %d, got %d", ann.ID, me.ID)
	}

	// unauthenticated request gets the 401 envelope
	w = httptest.NewRecorder()
	api.Handle(h.Me)(w, httptest.NewRequest(http.MethodGet, "/api/user", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	var env struct {
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil || len(env.Errors) != 1 {
		t.Fatalf("expected one-entry error envelope: %s", w.Body.String())
	}
}
