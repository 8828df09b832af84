package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-tickets/internal/apierr"
	"github.com/diewo77/go-tickets/internal/auth"
	"github.com/diewo77/go-tickets/internal/httpx"
	"github.com/diewo77/go-tickets/internal/models"
	"github.com/diewo77/go-tickets/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler issues and revokes bearer tokens. Tokens are stateless,
// so logout is a client-side affair; the endpoint exists for API
// symmetry.
type AuthHandler struct {
	*API
	tokenTTL time.Duration
}

func NewAuthHandler(api *API, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{API: api, tokenTTL: tokenTTL}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	var in credentials
	if err := readJSON(r, &in); err != nil {
		return err
	}
	v := validation.New()
	validation.Required("name", in.Name, v)
	validation.Required("email", in.Email, v)
	if in.Email != "" {
		validation.Email("email", in.Email, v)
	}
	validation.Required("password", in.Password, v)
	if in.Password != "" {
		validation.MinLen("password", in.Password, 8, v)
	}
	if !v.Empty() {
		return apierr.Validation(v)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{Name: in.Name, Email: in.Email, Password: string(hash)}
	if err := h.db.Create(&user).Error; err != nil {
		return apierr.Query(err)
	}

	httpx.Data(w, http.StatusCreated, map[string]any{
		"token": auth.IssueToken(user.ID, h.tokenTTL),
		"user":  user,
	})
	return nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var in credentials
	if err := readJSON(r, &in); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("email = ?", in.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.Authentication()
		}
		return apierr.Query(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return apierr.Authentication()
	}

	httpx.Data(w, http.StatusOK, map[string]any{
		"token": auth.IssueToken(user.ID, h.tokenTTL),
		"user":  user,
	})
	return nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	if _, err := h.principal(r); err != nil {
		return err
	}
	httpx.OK(w, "Logged out")
	return nil
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) error {
	user, err := h.principal(r)
	if err != nil {
		return err
	}
	httpx.Data(w, http.StatusOK, user)
	return nil
}
