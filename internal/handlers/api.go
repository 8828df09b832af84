// Package handlers contains the resource dispatchers. Each action is
// a func(w, r) error; the handle boundary forwards any returned fault
// to the error classifier, so dispatchers never build error envelopes
// themselves.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-tickets/internal/apierr"
	"github.com/diewo77/go-tickets/internal/auth"
	"github.com/diewo77/go-tickets/internal/gate"
	"github.com/diewo77/go-tickets/internal/models"
	"github.com/diewo77/go-tickets/internal/validation"
	"gorm.io/gorm"
)

// API bundles the collaborators every dispatcher needs.
type API struct {
	db     *gorm.DB
	gate   *gate.Gate[*models.User]
	errors *apierr.Classifier
	log    *slog.Logger
}

func NewAPI(db *gorm.DB, g *gate.Gate[*models.User], classifier *apierr.Classifier, log *slog.Logger) *API {
	if log == nil {
		log = slog.Default()
	}
	return &API{db: db, gate: g, errors: classifier, log: log}
}

type apiFunc func(http.ResponseWriter, *http.Request) error

// Handle wraps an action with the request boundary: any fault the
// action raises is classified into an error envelope here, and only
// here.
func (a *API) Handle(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			a.errors.Respond(w, r, err)
		}
	}
}

// principal loads the authenticated user. No token, or a token for a
// user that no longer exists, is an authentication fault.
func (a *API) principal(r *http.Request) (*models.User, error) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, apierr.Authentication()
	}
	var user models.User
	if err := a.db.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Authentication()
		}
		return nil, apierr.Query(err)
	}
	return &user, nil
}

// isAble runs the authorization gate for an action. The target is a
// loaded instance, or nil for type-scoped checks (store, index). The
// 401/403 split is made here: missing principal is authentication,
// present-but-denied is authorization.
func (a *API) isAble(r *http.Request, action gate.Action, resourceType string, resource any) error {
	user, err := a.principal(r)
	if err != nil {
		return err
	}
	if !a.gate.Can(r.Context(), user, action, resourceType, resource) {
		return apierr.Authorization()
	}
	return nil
}

// include reports whether the request's include query parameter names
// the relationship (case-insensitive, dot-separated list).
func include(r *http.Request, relationship string) bool {
	param := r.URL.Query().Get("include")
	if param == "" {
		return false
	}
	for _, part := range strings.Split(strings.ToLower(param), ".") {
		if part == strings.ToLower(relationship) {
			return true
		}
	}
	return false
}

// readJSON decodes a request body. A body that cannot be decoded is a
// validation fault, not a transport error.
func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		v := validation.New()
		v.Add("body", "malformed")
		return apierr.Validation(v)
	}
	return nil
}

// pathID parses a numeric path value. Non-numeric ids behave like a
// missing resource of the given model.
func pathID(r *http.Request, name, model string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, apierr.NotFound(model, err)
	}
	return uint(id), nil
}

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

func pagination(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// ownerScope narrows a ticket query to the owning author. All
// author-scoped lookups go through this single resolver, so a ticket
// owned by someone else is indistinguishable from one that does not
// exist.
func ownerScope(authorID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", authorID)
	}
}
