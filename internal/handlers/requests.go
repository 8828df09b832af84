package handlers

import (
	"github.com/diewo77/go-tickets/internal/models"
	"github.com/diewo77/go-tickets/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// ticketInput is the accepted ticket payload. Pointer fields
// distinguish "absent" from "zero" so partial updates only touch the
// fields the caller sent. The author field maps to the user_id column.
type ticketInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Author      *uint   `json:"author"`
}

// validate checks the payload. With partial set, absent fields pass;
// otherwise every field is required (store and replace). withAuthor
// controls whether the author reference is expected in the body;
// author-scoped routes take it from the path instead.
func (in *ticketInput) validate(partial, withAuthor bool) *validation.Violations {
	v := validation.New()
	if !partial || in.Title != nil {
		validation.Required("title", deref(in.Title), v)
	}
	if !partial || in.Description != nil {
		validation.Required("description", deref(in.Description), v)
	}
	if !partial || in.Status != nil {
		validation.Required("status", deref(in.Status), v)
		if deref(in.Status) != "" {
			validation.In("status", deref(in.Status), models.TicketStatuses, v)
		}
	}
	if withAuthor && (!partial || in.Author != nil) {
		validation.RequiredID("author", derefID(in.Author), v)
	}
	return v
}

// attributes maps the provided fields to storage attributes.
func (in *ticketInput) attributes() map[string]any {
	attrs := make(map[string]any)
	if in.Title != nil {
		attrs["title"] = *in.Title
	}
	if in.Description != nil {
		attrs["description"] = *in.Description
	}
	if in.Status != nil {
		attrs["status"] = *in.Status
	}
	if in.Author != nil {
		attrs["user_id"] = *in.Author
	}
	return attrs
}

// userInput is the accepted user payload.
type userInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	IsManager *bool   `json:"is_manager"`
}

func (in *userInput) validate(partial bool) *validation.Violations {
	v := validation.New()
	if !partial || in.Name != nil {
		validation.Required("name", deref(in.Name), v)
	}
	if !partial || in.Email != nil {
		validation.Required("email", deref(in.Email), v)
		if deref(in.Email) != "" {
			validation.Email("email", deref(in.Email), v)
		}
	}
	if !partial || in.Password != nil {
		validation.Required("password", deref(in.Password), v)
		if deref(in.Password) != "" {
			validation.MinLen("password", deref(in.Password), 8, v)
		}
	}
	return v
}

// attributes maps the provided fields to storage attributes, hashing
// the password when present.
func (in *userInput) attributes() (map[string]any, error) {
	attrs := make(map[string]any)
	if in.Name != nil {
		attrs["name"] = *in.Name
	}
	if in.Email != nil {
		attrs["email"] = *in.Email
	}
	if in.IsManager != nil {
		attrs["is_manager"] = *in.IsManager
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		attrs["password"] = string(hash)
	}
	return attrs, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
