package errors

import (
	"encoding/json"
	"sort"
)

// Sink collects Reports produced during one phase. Resolver and
// flattener errors are collected (the spec says they "collect all
// independent errors before returning"); the lexer/parser use it the
// same way so a host can print every recoverable diagnostic at once.
type Sink struct {
	reports []*Report
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink { return &Sink{} }

// Add appends a report to the sink. Nil reports are ignored.
func (s *Sink) Add(r *Report) {
	if r == nil {
		return
	}
	s.reports = append(s.reports, r)
}

// Reports returns all collected reports in insertion order.
func (s *Sink) Reports() []*Report { return s.reports }

// Errors returns only the fatal (non-warning) reports.
func (s *Sink) Errors() []*Report {
	var out []*Report
	for _, r := range s.reports {
		if !r.IsWarning() {
			out = append(out, r)
		}
	}
	return out
}

// Warnings returns only the non-fatal (BalanceWarning) reports.
func (s *Sink) Warnings() []*Report {
	var out []*Report
	for _, r := range s.reports {
		if r.IsWarning() {
			out = append(out, r)
		}
	}
	return out
}

// HasErrors reports whether any fatal diagnostic was collected.
func (s *Sink) HasErrors() bool { return len(s.Errors()) > 0 }

// ToJSON renders every collected report as a deterministic JSON array:
// sorted first by phase, then by code, then by line, so two runs over
// the same class table always produce byte-identical diagnostic output
// (spec §8.1 "Flatten determinism" extends to diagnostics too).
func (s *Sink) ToJSON(indent bool) ([]byte, error) {
	sorted := make([]*Report, len(s.reports))
	copy(sorted, s.reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Phase != b.Phase {
			return a.Phase < b.Phase
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		al, bl := 0, 0
		if a.Span != nil {
			al = a.Span.Start.Line
		}
		if b.Span != nil {
			bl = b.Span.Start.Line
		}
		return al < bl
	})
	if indent {
		return json.MarshalIndent(sorted, "", "  ")
	}
	return json.Marshal(sorted)
}
