package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-tickets/internal/validation"
	"gorm.io/gorm"
)

func testClassifier() *Classifier {
	return NewClassifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/v1/tickets/1", nil)
}

func TestClassify_Authentication(t *testing.T) {
	status, entries := testClassifier().Classify(Authentication(), testRequest())
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", status)
	}
	e := entries[0]
	if e.Status != http.StatusUnauthorized {
		t.Errorf("entry status %d does not match transport status", e.Status)
	}
	if e.Message != "Authentication required. Please provide valid credentials." {
		t.Errorf("unexpected message: %s", e.Message)
	}
	if e.Timestamp == "" {
		t.Error("expected timestamp")
	}
}

func TestClassify_Authorization(t *testing.T) {
	status, entries := testClassifier().Classify(Authorization(), testRequest())
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", status)
	}
	if entries[0].Message != "You do not have permission to perform this action." {
		t.Errorf("unexpected message: %s", entries[0].Message)
	}
}

func TestClassify_Validation_FlattensInOrder(t *testing.T) {
	v := validation.New()
	v.Add("name", "required")
	v.Add("email", "invalid")
	v.Add("email", "taken")

	status, entries := testClassifier().Classify(Validation(v), testRequest())
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", status)
	}
	e := entries[0]
	if e.Message != "The provided data is invalid." {
		t.Errorf("unexpected message: %s", e.Message)
	}
	want := []validation.FieldError{
		{Field: "name", Message: "required"},
		{Field: "email", Message: "invalid"},
		{Field: "email", Message: "taken"},
	}
	if len(e.ValidationErrors) != len(want) {
		t.Fatalf("expected %d validation errors, got %d", len(want), len(e.ValidationErrors))
	}
	for i := range want {
		if e.ValidationErrors[i] != want[i] {
			t.Errorf("entry %d: got %+v want %+v", i, e.ValidationErrors[i], want[i])
		}
	}
}

func TestClassify_NotFound_Instance(t *testing.T) {
	status, entries := testClassifier().Classify(NotFound("Ticket", gorm.ErrRecordNotFound), testRequest())
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", status)
	}
	e := entries[0]
	if e.Message != "The requested resource was not found." {
		t.Errorf("unexpected message: %s", e.Message)
	}
	if e.Source != "Ticket" {
		t.Errorf("expected source Ticket, got %s", e.Source)
	}
}

func TestClassify_NotFound_Route(t *testing.T) {
	status, entries := testClassifier().Classify(RouteNotFound("/api/v1/nope"), testRequest())
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", status)
	}
	e := entries[0]
	if !strings.Contains(e.Message, "/api/v1/nope") {
		t.Errorf("message should name the requested path: %s", e.Message)
	}
	if e.Source != "Not Found" {
		t.Errorf("expected source 'Not Found', got %s", e.Source)
	}
}

func TestClassify_MethodNotAllowed(t *testing.T) {
	status, entries := testClassifier().Classify(MethodNotAllowed(http.MethodPatch, "GET, POST"), testRequest())
	if status != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", status)
	}
	e := entries[0]
	if !strings.Contains(e.Message, "PATCH") {
		t.Errorf("message should name the rejected method: %s", e.Message)
	}
	if e.AllowedMethods != "GET, POST" {
		t.Errorf("unexpected allowed_methods: %s", e.AllowedMethods)
	}
}

func TestClassify_MethodNotAllowed_NoAllowHeader(t *testing.T) {
	_, entries := testClassifier().Classify(MethodNotAllowed(http.MethodPut, ""), testRequest())
	if entries[0].AllowedMethods != "Unknown" {
		t.Errorf("expected Unknown, got %s", entries[0].AllowedMethods)
	}
}

func TestClassify_HTTPGeneric(t *testing.T) {
	status, entries := testClassifier().Classify(HTTP(http.StatusTooManyRequests, "slow down"), testRequest())
	if status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", status)
	}
	if entries[0].Message != "slow down" {
		t.Errorf("unexpected message: %s", entries[0].Message)
	}

	_, entries = testClassifier().Classify(HTTP(http.StatusBadGateway, ""), testRequest())
	if entries[0].Message != "An HTTP error occurred." {
		t.Errorf("expected generic fallback, got %s", entries[0].Message)
	}
}

func TestClassify_Query_Duplicate(t *testing.T) {
	cause := fmt.Errorf("insert users: %w", gorm.ErrDuplicatedKey)
	status, entries := testClassifier().Classify(Query(cause), testRequest())
	if status != http.StatusConflict {
		t.Fatalf("expected 409 got %d", status)
	}
	if entries[0].Message != "A record with this information already exists." {
		t.Errorf("unexpected message: %s", entries[0].Message)
	}
}

func TestClassify_Query_ForeignKey(t *testing.T) {
	status, entries := testClassifier().Classify(Query(gorm.ErrForeignKeyViolated), testRequest())
	if status != http.StatusConflict {
		t.Fatalf("expected 409 got %d", status)
	}
	if entries[0].Message != "Cannot delete this resource because it is referenced by other records." {
		t.Errorf("unexpected message: %s", entries[0].Message)
	}
}

func TestClassify_Query_Other(t *testing.T) {
	status, entries := testClassifier().Classify(Query(errors.New("connection reset")), testRequest())
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", status)
	}
	if entries[0].Message != "A database error occurred. Please try again later." {
		t.Errorf("unexpected message: %s", entries[0].Message)
	}
}

func TestClassify_RawGormErrors(t *testing.T) {
	// Unwrapped persistence errors reaching the boundary still classify.
	status, _ := testClassifier().Classify(gorm.ErrRecordNotFound, testRequest())
	if status != http.StatusNotFound {
		t.Errorf("expected 404 got %d", status)
	}
	status, _ = testClassifier().Classify(gorm.ErrDuplicatedKey, testRequest())
	if status != http.StatusConflict {
		t.Errorf("expected 409 got %d", status)
	}
}

func TestClassify_Uncategorized(t *testing.T) {
	status, entries := testClassifier().Classify(errors.New("boom"), testRequest())
	if status != http.StatusInternalServerError {
		t.Fatalf("expected transport 500 got %d", status)
	}
	e := entries[0]
	if e.Status != 0 {
		t.Errorf("uncategorized entry status should be 0, got %d", e.Status)
	}
	if e.Message != "boom" {
		t.Errorf("expected the fault's own message, got %s", e.Message)
	}
	if e.Timestamp != "" {
		t.Errorf("uncategorized entries carry no timestamp, got %s", e.Timestamp)
	}
}

func TestClassify_Uncategorized_FaultCarriesOrigin(t *testing.T) {
	f := &Fault{Kind: Kind(99), Message: "odd", File: "handlers/ticket.go", Line: 12}
	_, entries := testClassifier().Classify(f, testRequest())
	e := entries[0]
	if e.Status != 0 {
		t.Errorf("expected status 0, got %d", e.Status)
	}
	if e.Source != "Line: 12: handlers/ticket.go" {
		t.Errorf("unexpected source: %s", e.Source)
	}
}

func TestRespond_WritesErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	testClassifier().Respond(w, testRequest(), NotFound("Ticket", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	var body struct {
		Data   any     `json:"data"`
		Errors []Entry `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data != nil {
		t.Error("error envelope must not contain data")
	}
	if len(body.Errors) != 1 || body.Errors[0].Status != http.StatusNotFound {
		t.Fatalf("unexpected errors: %+v", body.Errors)
	}
}

func TestFault_OriginCaptured(t *testing.T) {
	f := NotFound("Ticket", nil)
	if f.File == "" || f.Line == 0 {
		t.Errorf("constructor should capture origin, got %s:%d", f.File, f.Line)
	}
	if !strings.HasSuffix(f.File, "classify_test.go") {
		t.Errorf("origin should be the raising call site, got %s", f.File)
	}
}
