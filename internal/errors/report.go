package errors

import (
	"encoding/json"
	"errors"

	"github.com/go-modelica/moc/internal/ast"
)

// Report is the canonical structured diagnostic type for moc. Every
// stage of the pipeline (lexer, parser, resolver, flattener, DAE
// builder) returns *Report values rather than bare error strings, so a
// caller never special-cases which phase produced a diagnostic.
type Report struct {
	Schema  string         `json:"schema"`         // Always "moc.diagnostic/v1"
	Code    string         `json:"code"`            // e.g. "FLT003"
	Phase   string         `json:"phase"`           // "lexer", "parser", "resolve", "flatten", "classify", "unsupported", "balance"
	Message string         `json:"message"`         // Human-readable message
	Span    *ast.Span      `json:"span,omitempty"`  // Source location, when available
	Data    map[string]any `json:"data,omitempty"`  // Structured context (e.g. the offending identifier)
	Hint    string         `json:"hint,omitempty"`  // Optional suggestion
}

// ReportError wraps a Report as an error so it survives errors.As()
// unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error. Call sites should return
// errors.Wrap(report) to preserve the structured diagnostic.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for the given code, looking up its phase from the
// registry.
func New(code string, span *ast.Span, message string) *Report {
	info, _ := GetErrorInfo(code)
	return &Report{
		Schema:  "moc.diagnostic/v1",
		Code:    code,
		Phase:   info.Phase,
		Message: message,
		Span:    span,
		Data:    map[string]any{},
	}
}

// WithData attaches a structured context field and returns the Report
// for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// WithHint attaches a suggestion and returns the Report for chaining.
func (r *Report) WithHint(hint string) *Report {
	r.Hint = hint
	return r
}

// IsWarning reports whether this diagnostic is non-fatal (BalanceWarning).
func (r *Report) IsWarning() bool {
	return r != nil && IsWarning(r.Code)
}

// ToJSON renders the Report as JSON; compact=false indents.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
