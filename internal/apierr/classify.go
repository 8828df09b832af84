package apierr

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/diewo77/go-tickets/internal/httpx"
	"github.com/diewo77/go-tickets/internal/validation"
	"gorm.io/gorm"
)

// Entry is one element of the errors list in an error envelope. The
// status inside the entry always matches the transport status, except
// for uncategorized faults whose envelope status is 0 (not a
// transmissible HTTP status; such entries flag a server-side bug).
type Entry struct {
	Type             string                  `json:"type"`
	Status           int                     `json:"status"`
	Message          string                  `json:"message"`
	Timestamp        string                  `json:"timestamp,omitempty"`
	ValidationErrors []validation.FieldError `json:"validation_errors,omitempty"`
	Source           string                  `json:"source,omitempty"`
	AllowedMethods   string                  `json:"allowed_methods,omitempty"`
}

// Classifier translates any error reaching the request boundary into
// an error envelope. It is total: every error yields a well-formed
// envelope, nothing is re-raised. Diagnostic context is logged through
// the injected structured logger before the response is written.
type Classifier struct {
	log *slog.Logger
}

func NewClassifier(log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{log: log}
}

// Respond classifies err and writes the resulting error envelope.
func (c *Classifier) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, entries := c.Classify(err, r)
	httpx.Errors(w, status, entries)
}

// Classify maps err to a transport status and envelope entries.
func (c *Classifier) Classify(err error, r *http.Request) (int, []Entry) {
	var f *Fault
	if !errors.As(err, &f) {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			f = &Fault{Kind: KindNotFound, Model: "Record", Err: err}
		case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
			f = &Fault{Kind: KindQuery, Err: err}
		default:
			return http.StatusInternalServerError, []Entry{c.uncategorized(err)}
		}
	}

	switch f.Kind {
	case KindAuthentication:
		c.warn(r, f, "Authentication failed")
		return http.StatusUnauthorized, []Entry{{
			Type:      f.Kind.String(),
			Status:    http.StatusUnauthorized,
			Message:   "Authentication required. Please provide valid credentials.",
			Timestamp: timestamp(),
		}}

	case KindAuthorization:
		c.warn(r, f, "Authorization failed")
		return http.StatusForbidden, []Entry{{
			Type:      f.Kind.String(),
			Status:    http.StatusForbidden,
			Message:   "You do not have permission to perform this action.",
			Timestamp: timestamp(),
		}}

	case KindValidation:
		var flattened []validation.FieldError
		if f.Violations != nil {
			flattened = f.Violations.Flatten()
		}
		c.warn(r, f, "Validation failed", slog.Any("errors", flattened))
		return http.StatusUnprocessableEntity, []Entry{{
			Type:             f.Kind.String(),
			Status:           http.StatusUnprocessableEntity,
			Message:          "The provided data is invalid.",
			Timestamp:        timestamp(),
			ValidationErrors: flattened,
		}}

	case KindNotFound:
		// Instance lookups are not logged: they are routine.
		return http.StatusNotFound, []Entry{{
			Type:      f.Kind.String(),
			Status:    http.StatusNotFound,
			Message:   "The requested resource was not found.",
			Timestamp: timestamp(),
			Source:    f.Model,
		}}

	case KindRouteNotFound:
		return http.StatusNotFound, []Entry{{
			Type:      f.Kind.String(),
			Status:    http.StatusNotFound,
			Message:   fmt.Sprintf("The requested endpoint '%s' was not found.", f.Path),
			Timestamp: timestamp(),
			Source:    "Not Found",
		}}

	case KindMethodNotAllowed:
		c.warn(r, f, "Method not allowed")
		allowed := f.Allowed
		if allowed == "" {
			allowed = "Unknown"
		}
		return http.StatusMethodNotAllowed, []Entry{{
			Type:           f.Kind.String(),
			Status:         http.StatusMethodNotAllowed,
			Message:        fmt.Sprintf("The %s method is not allowed for this endpoint.", f.Method),
			Timestamp:      timestamp(),
			AllowedMethods: allowed,
		}}

	case KindHTTP:
		c.warn(r, f, "HTTP fault occurred")
		message := f.Message
		if message == "" {
			message = "An HTTP error occurred."
		}
		return f.Status, []Entry{{
			Type:      f.Kind.String(),
			Status:    f.Status,
			Message:   message,
			Timestamp: timestamp(),
		}}

	case KindQuery:
		return c.query(r, f)

	default:
		return http.StatusInternalServerError, []Entry{c.uncategorized(f)}
	}
}

// query maps persistence faults by their translated cause.
func (c *Classifier) query(r *http.Request, f *Fault) (int, []Entry) {
	c.warn(r, f, "Database query failed", slog.String("sql", causeText(f)))

	switch {
	case errors.Is(f.Err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, []Entry{{
			Type:      f.Kind.String(),
			Status:    http.StatusConflict,
			Message:   "A record with this information already exists.",
			Timestamp: timestamp(),
		}}
	case errors.Is(f.Err, gorm.ErrForeignKeyViolated):
		return http.StatusConflict, []Entry{{
			Type:      f.Kind.String(),
			Status:    http.StatusConflict,
			Message:   "Cannot delete this resource because it is referenced by other records.",
			Timestamp: timestamp(),
		}}
	default:
		return http.StatusInternalServerError, []Entry{{
			Type:      f.Kind.String(),
			Status:    http.StatusInternalServerError,
			Message:   "A database error occurred. Please try again later.",
			Timestamp: timestamp(),
		}}
	}
}

// uncategorized produces the fallback entry for faults outside the
// taxonomy. Status 0 marks them as not expressible as a stable HTTP
// status; the transport uses 500.
func (c *Classifier) uncategorized(err error) Entry {
	entry := Entry{
		Type:    typeName(err),
		Status:  0,
		Message: err.Error(),
	}
	var f *Fault
	if errors.As(err, &f) {
		entry.Source = fmt.Sprintf("Line: %d: %s", f.Line, f.File)
	}
	return entry
}

func (c *Classifier) warn(r *http.Request, f *Fault, msg string, extra ...any) {
	args := []any{
		slog.String("fault", f.Kind.String()),
		slog.String("message", f.Error()),
		slog.String("file", f.File),
		slog.Int("line", f.Line),
	}
	if r != nil {
		args = append(args,
			slog.String("url", r.URL.String()),
			slog.String("method", r.Method),
			slog.String("ip", remoteIP(r)),
		)
	}
	args = append(args, extra...)
	c.log.Warn(msg, args...)
}

func causeText(f *Fault) string {
	if f.Err != nil {
		return f.Err.Error()
	}
	return ""
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
