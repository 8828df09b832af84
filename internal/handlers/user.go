package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-tickets/internal/apierr"
	"github.com/diewo77/go-tickets/internal/filters"
	"github.com/diewo77/go-tickets/internal/gate"
	"github.com/diewo77/go-tickets/internal/httpx"
	"github.com/diewo77/go-tickets/internal/models"
	"github.com/diewo77/go-tickets/internal/policy"
	"gorm.io/gorm"
)

type UserHandler struct {
	*API
}

func NewUserHandler(api *API) *UserHandler {
	return &UserHandler{API: api}
}

func (h *UserHandler) findUser(r *http.Request) (*models.User, error) {
	id, err := pathID(r, "id", "User")
	if err != nil {
		return nil, err
	}
	q := h.db
	if include(r, "tickets") {
		q = q.Preload("Tickets")
	}
	var user models.User
	if err := q.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("User", err)
		}
		return nil, apierr.Query(err)
	}
	return &user, nil
}

func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) error {
	if err := h.isAble(r, gate.ActionIndex, policy.ResourceUsers, nil); err != nil {
		return err
	}
	page, perPage := pagination(r)
	q := filters.AuthorFilter{}.Apply(r.URL.Query(), h.db.Model(&models.User{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apierr.Query(err)
	}
	var users []models.User
	if err := q.Limit(perPage).Offset((page - 1) * perPage).Find(&users).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.Page(w, users, httpx.Meta{Page: page, PerPage: perPage, Total: total})
	return nil
}

func (h *UserHandler) Store(w http.ResponseWriter, r *http.Request) error {
	if err := h.isAble(r, gate.ActionStore, policy.ResourceUsers, nil); err != nil {
		return err
	}
	var in userInput
	if err := readJSON(r, &in); err != nil {
		return err
	}
	if v := in.validate(false); !v.Empty() {
		return apierr.Validation(v)
	}
	attrs, err := in.attributes()
	if err != nil {
		return err
	}
	user := models.User{
		Name:     attrs["name"].(string),
		Email:    attrs["email"].(string),
		Password: attrs["password"].(string),
	}
	if in.IsManager != nil {
		user.IsManager = *in.IsManager
	}
	if err := h.db.Create(&user).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.Data(w, http.StatusCreated, user)
	return nil
}

func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) error {
	user, err := h.findUser(r)
	if err != nil {
		return err
	}
	if err := h.isAble(r, gate.ActionShow, policy.ResourceUsers, user); err != nil {
		return err
	}
	httpx.Data(w, http.StatusOK, user)
	return nil
}

func (h *UserHandler) save(w http.ResponseWriter, r *http.Request, action gate.Action, partial bool) error {
	user, err := h.findUser(r)
	if err != nil {
		return err
	}
	if err := h.isAble(r, action, policy.ResourceUsers, user); err != nil {
		return err
	}
	var in userInput
	if err := readJSON(r, &in); err != nil {
		return err
	}
	if v := in.validate(partial); !v.Empty() {
		return apierr.Validation(v)
	}
	attrs, err := in.attributes()
	if err != nil {
		return err
	}
	if err := h.db.Model(user).Updates(attrs).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.Data(w, http.StatusOK, user)
	return nil
}

// Replace expects the full payload (PUT).
func (h *UserHandler) Replace(w http.ResponseWriter, r *http.Request) error {
	return h.save(w, r, gate.ActionReplace, false)
}

// Update applies a partial payload (PATCH).
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) error {
	return h.save(w, r, gate.ActionUpdate, true)
}

func (h *UserHandler) Destroy(w http.ResponseWriter, r *http.Request) error {
	user, err := h.findUser(r)
	if err != nil {
		return err
	}
	if err := h.isAble(r, gate.ActionDelete, policy.ResourceUsers, user); err != nil {
		return err
	}
	// Deleting an author who still has tickets raises a foreign-key
	// fault from the store; the classifier turns it into a 409.
	if err := h.db.Delete(user).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.OK(w, "User successfully deleted")
	return nil
}
