package schema

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

// ErrMalformedDocument is returned when a JSON payload or schema text cannot be decoded.
var ErrMalformedDocument = errors.New("malformed document")

// ValidationError represents a single constraint violation.
type ValidationError struct {
	Path    string `json:"path"`    // Field path of the offending value (e.g., "user.tags[2]")
	Message string `json:"message"` // Human-readable description of the violated rule
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "The value " + e.Message
	}
	return "The field " + e.Path + " " + e.Message
}

// ValidationErrors is an ordered collection of violations.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range e {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Strings returns the formatted message of every violation, in order.
func (e ValidationErrors) Strings() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Error()
	}
	return out
}

func (e *ValidationErrors) add(path, message string) {
	*e = append(*e, &ValidationError{Path: path, Message: message})
}

// Result is the outcome of one validation call.
type Result struct {
	Valid      bool
	Violations ValidationErrors
}

func newResult(errs ValidationErrors) *Result {
	return &Result{Valid: len(errs) == 0, Violations: errs}
}

// Err returns nil when the result is valid and the violations otherwise.
func (r *Result) Err() error {
	if r == nil || len(r.Violations) == 0 {
		return nil
	}
	return r.Violations
}

// Errors returns the formatted violation messages.
func (r *Result) Errors() []string {
	if r == nil {
		return nil
	}
	return r.Violations.Strings()
}

type resultJSON struct {
	Valid      bool              `json:"valid"`
	Errors     []string          `json:"errors"`
	Violations []ValidationError `json:"violations,omitempty"`
}

// MarshalJSON renders the result as {"valid", "errors", "violations"}.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Valid: r.Valid, Errors: r.Errors()}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	for _, v := range r.Violations {
		out.Violations = append(out.Violations, *v)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a result produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Valid = in.Valid
	r.Violations = nil
	for i := range in.Violations {
		v := in.Violations[i]
		r.Violations = append(r.Violations, &v)
	}
	return nil
}
