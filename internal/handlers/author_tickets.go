package handlers

import (
	"net/http"

	"github.com/diewo77/go-tickets/internal/apierr"
	"github.com/diewo77/go-tickets/internal/gate"
	"github.com/diewo77/go-tickets/internal/httpx"
	"github.com/diewo77/go-tickets/internal/models"
	"github.com/diewo77/go-tickets/internal/policy"
)

// AuthorTicketsHandler serves the author-scoped ticket routes
// (/authors/{author_id}/tickets). Every lookup is narrowed by the
// route's author before anything else happens, so a ticket belonging
// to a different author answers exactly like a missing one.
type AuthorTicketsHandler struct {
	*TicketHandler
}

func NewAuthorTicketsHandler(api *API) *AuthorTicketsHandler {
	return &AuthorTicketsHandler{TicketHandler: NewTicketHandler(api)}
}

func (h *AuthorTicketsHandler) authorID(r *http.Request) (uint, error) {
	return pathID(r, "author_id", "Ticket")
}

func (h *AuthorTicketsHandler) Index(w http.ResponseWriter, r *http.Request) error {
	authorID, err := h.authorID(r)
	if err != nil {
		return err
	}
	return h.list(w, r, ownerScope(authorID))
}

// Store creates a ticket for the route's author: the owner identifier
// comes from the path, not the body.
func (h *AuthorTicketsHandler) Store(w http.ResponseWriter, r *http.Request) error {
	authorID, err := h.authorID(r)
	if err != nil {
		return err
	}
	if err := h.isAble(r, gate.ActionStore, policy.ResourceTickets, nil); err != nil {
		return err
	}
	var in ticketInput
	if err := readJSON(r, &in); err != nil {
		return err
	}
	if v := in.validate(false, false); !v.Empty() {
		return apierr.Validation(v)
	}
	ticket := models.Ticket{
		Title:       *in.Title,
		Description: *in.Description,
		Status:      *in.Status,
		UserID:      authorID,
	}
	if err := h.db.Create(&ticket).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.Data(w, http.StatusCreated, ticket)
	return nil
}

func (h *AuthorTicketsHandler) Show(w http.ResponseWriter, r *http.Request) error {
	authorID, err := h.authorID(r)
	if err != nil {
		return err
	}
	ticket, err := h.findTicket(r, ownerScope(authorID))
	if err != nil {
		return err
	}
	if err := h.isAble(r, gate.ActionShow, policy.ResourceTickets, ticket); err != nil {
		return err
	}
	httpx.Data(w, http.StatusOK, ticket)
	return nil
}

func (h *AuthorTicketsHandler) Replace(w http.ResponseWriter, r *http.Request) error {
	authorID, err := h.authorID(r)
	if err != nil {
		return err
	}
	return h.save(w, r, gate.ActionReplace, false, ownerScope(authorID))
}

func (h *AuthorTicketsHandler) Update(w http.ResponseWriter, r *http.Request) error {
	authorID, err := h.authorID(r)
	if err != nil {
		return err
	}
	return h.save(w, r, gate.ActionUpdate, true, ownerScope(authorID))
}

func (h *AuthorTicketsHandler) Destroy(w http.ResponseWriter, r *http.Request) error {
	authorID, err := h.authorID(r)
	if err != nil {
		return err
	}
	return h.destroy(w, r, ownerScope(authorID))
}
