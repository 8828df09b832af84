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

type TicketHandler struct {
	*API
}

func NewTicketHandler(api *API) *TicketHandler {
	return &TicketHandler{API: api}
}

// findTicket looks a ticket up by path id within the given scopes.
func (h *TicketHandler) findTicket(r *http.Request, scopes ...func(*gorm.DB) *gorm.DB) (*models.Ticket, error) {
	id, err := pathID(r, "id", "Ticket")
	if err != nil {
		return nil, err
	}
	q := h.db.Scopes(scopes...)
	if include(r, "author") {
		q = q.Preload("Author")
	}
	var ticket models.Ticket
	if err := q.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("Ticket", err)
		}
		return nil, apierr.Query(err)
	}
	return &ticket, nil
}

func (h *TicketHandler) list(w http.ResponseWriter, r *http.Request, scopes ...func(*gorm.DB) *gorm.DB) error {
	if err := h.isAble(r, gate.ActionIndex, policy.ResourceTickets, nil); err != nil {
		return err
	}
	page, perPage := pagination(r)
	q := filters.TicketFilter{}.Apply(r.URL.Query(), h.db.Model(&models.Ticket{}).Scopes(scopes...))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apierr.Query(err)
	}
	var tickets []models.Ticket
	if err := q.Limit(perPage).Offset((page - 1) * perPage).Find(&tickets).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.Page(w, tickets, httpx.Meta{Page: page, PerPage: perPage, Total: total})
	return nil
}

func (h *TicketHandler) Index(w http.ResponseWriter, r *http.Request) error {
	return h.list(w, r)
}

func (h *TicketHandler) Store(w http.ResponseWriter, r *http.Request) error {
	if err := h.isAble(r, gate.ActionStore, policy.ResourceTickets, nil); err != nil {
		return err
	}
	var in ticketInput
	if err := readJSON(r, &in); err != nil {
		return err
	}
	if v := in.validate(false, true); !v.Empty() {
		return apierr.Validation(v)
	}
	ticket := models.Ticket{
		Title:       *in.Title,
		Description: *in.Description,
		Status:      *in.Status,
		UserID:      *in.Author,
	}
	if err := h.db.Create(&ticket).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.Data(w, http.StatusCreated, ticket)
	return nil
}

func (h *TicketHandler) Show(w http.ResponseWriter, r *http.Request) error {
	ticket, err := h.findTicket(r)
	if err != nil {
		return err
	}
	if err := h.isAble(r, gate.ActionShow, policy.ResourceTickets, ticket); err != nil {
		return err
	}
	httpx.Data(w, http.StatusOK, ticket)
	return nil
}

func (h *TicketHandler) save(w http.ResponseWriter, r *http.Request, action gate.Action, partial bool, scopes ...func(*gorm.DB) *gorm.DB) error {
	ticket, err := h.findTicket(r, scopes...)
	if err != nil {
		return err
	}
	if err := h.isAble(r, action, policy.ResourceTickets, ticket); err != nil {
		return err
	}
	var in ticketInput
	if err := readJSON(r, &in); err != nil {
		return err
	}
	if v := in.validate(partial, false); !v.Empty() {
		return apierr.Validation(v)
	}
	if err := h.db.Model(ticket).Updates(in.attributes()).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.Data(w, http.StatusOK, ticket)
	return nil
}

// Replace expects the full payload (PUT).
func (h *TicketHandler) Replace(w http.ResponseWriter, r *http.Request) error {
	return h.save(w, r, gate.ActionReplace, false)
}

// Update applies a partial payload (PATCH).
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) error {
	return h.save(w, r, gate.ActionUpdate, true)
}

func (h *TicketHandler) Destroy(w http.ResponseWriter, r *http.Request) error {
	return h.destroy(w, r)
}

func (h *TicketHandler) destroy(w http.ResponseWriter, r *http.Request, scopes ...func(*gorm.DB) *gorm.DB) error {
	ticket, err := h.findTicket(r, scopes...)
	if err != nil {
		return err
	}
	if err := h.isAble(r, gate.ActionDelete, policy.ResourceTickets, ticket); err != nil {
		return err
	}
	if err := h.db.Delete(ticket).Error; err != nil {
		return apierr.Query(err)
	}
	httpx.OK(w, "Ticket successfully deleted")
	return nil
}
