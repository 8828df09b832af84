// Package apierr defines the fault taxonomy raised by the request
// pipeline and the Classifier that translates every fault into an
// error envelope. The Classifier is the single terminal handler:
// dispatchers raise faults, they never build error responses.
package apierr

import (
	"fmt"
	"runtime"

	"github.com/diewo77/go-tickets/internal/validation"
)

// Kind tags a Fault with its position in the error taxonomy. The set
// is closed: the Classifier switches over it exhaustively and anything
// that is not a Fault falls through to the uncategorized branch.
type Kind int

const (
	KindUncategorized Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindNotFound
	KindRouteNotFound
	KindMethodNotAllowed
	KindHTTP
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "Authentication"
	case KindAuthorization:
		return "Authorization"
	case KindValidation:
		return "Validation"
	case KindNotFound, KindRouteNotFound:
		return "NotFound"
	case KindMethodNotAllowed:
		return "MethodNotAllowed"
	case KindHTTP:
		return "Http"
	case KindQuery:
		return "Query"
	default:
		return "Uncategorized"
	}
}

// Fault is a tagged error flowing through the pipeline. It carries an
// optional underlying cause and the origin file:line captured at
// construction, so the Classifier can log where the fault was raised.
type Fault struct {
	Kind       Kind
	Message    string
	Err        error
	Model      string // not-found: name of the model looked up
	Path       string // route-not-found: the requested path
	Status     int    // http: status code to mirror into the envelope
	Method     string // method-not-allowed: the rejected method
	Allowed    string // method-not-allowed: contents of the Allow header
	Violations *validation.Violations
	File       string
	Line       int
}

func (f *Fault) Error() string {
	if f.Message != "" {
		return f.Message
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Kind.String()
}

func (f *Fault) Unwrap() error { return f.Err }

func newFault(kind Kind) *Fault {
	f := &Fault{Kind: kind}
	// Skip newFault and the exported constructor.
	if _, file, line, ok := runtime.Caller(2); ok {
		f.File = file
		f.Line = line
	}
	return f
}

// Authentication reports a request with no valid principal.
func Authentication() *Fault {
	return newFault(KindAuthentication)
}

// Authorization reports a principal denied by the resource's policy.
func Authorization() *Fault {
	return newFault(KindAuthorization)
}

// Validation reports rejected input fields.
func Validation(v *validation.Violations) *Fault {
	f := newFault(KindValidation)
	f.Violations = v
	return f
}

// NotFound reports a failed instance lookup for the named model.
func NotFound(model string, cause error) *Fault {
	f := newFault(KindNotFound)
	f.Model = model
	f.Err = cause
	return f
}

// RouteNotFound reports a request for a path no route matches.
func RouteNotFound(path string) *Fault {
	f := newFault(KindRouteNotFound)
	f.Path = path
	return f
}

// MethodNotAllowed reports a matched path hit with the wrong verb.
// allowed is the Allow header from the router, possibly empty.
func MethodNotAllowed(method, allowed string) *Fault {
	f := newFault(KindMethodNotAllowed)
	f.Method = method
	f.Allowed = allowed
	return f
}

// HTTP reports a generic transport-level fault with its own status.
func HTTP(status int, message string) *Fault {
	f := newFault(KindHTTP)
	f.Status = status
	f.Message = message
	return f
}

// Query wraps a persistence failure. The Classifier inspects the cause
// to distinguish duplicate-key and foreign-key violations.
func Query(cause error) *Fault {
	f := newFault(KindQuery)
	f.Err = cause
	return f
}

// typeName reports the bare Go type name of an error, mirroring the
// class-basename the envelope's type field has always carried.
func typeName(err error) string {
	t := fmt.Sprintf("%T", err)
	for i := len(t) - 1; i >= 0; i-- {
		if t[i] == '.' || t[i] == '*' {
			return t[i+1:]
		}
	}
	return t
}
