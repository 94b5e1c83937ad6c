package diagnostic

import (
	"fmt"
	"sort"

	"github.com/viant/cdm/syntax"
)

// Severity represents diagnostic severity
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

// Diagnostic represents a single problem attributed to a file location
type Diagnostic struct {
	Code     Code        `json:"code,omitempty" yaml:"code,omitempty"`
	Message  string      `json:"message" yaml:"message"`
	Severity Severity    `json:"severity" yaml:"severity"`
	File     string      `json:"file,omitempty" yaml:"file,omitempty"`
	Span     syntax.Span `json:"span" yaml:"span"`
}

// String formats diagnostic as file:line:col: severity[code]: message
func (d *Diagnostic) String() string {
	code := ""
	if d.Code != "" {
		code = "[" + string(d.Code) + "]"
	}
	location := d.Span.String()
	if d.File != "" {
		location = d.File + ":" + location
	}
	return fmt.Sprintf("%s: %s%s: %s", location, d.Severity, code, d.Message)
}

// New creates an error diagnostic
func New(code Code, file string, span syntax.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Severity: code.Severity(), File: file, Span: span}
}

// List is an ordered diagnostic collection
type List []*Diagnostic

// Add appends a diagnostic
func (l *List) Add(code Code, file string, span syntax.Span, format string, args ...interface{}) {
	*l = append(*l, New(code, file, span, format, args...))
}

// Append appends other diagnostics
func (l *List) Append(other ...*Diagnostic) {
	*l = append(*l, other...)
}

// HasErrors returns true if any diagnostic is an error
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns error diagnostics
func (l List) Errors() List { return l.filter(Error) }

// Warnings returns warning diagnostics
func (l List) Warnings() List { return l.filter(Warning) }

// WithCode returns diagnostics with the given code
func (l List) WithCode(code Code) List {
	var result List
	for _, d := range l {
		if d.Code == code {
			result = append(result, d)
		}
	}
	return result
}

func (l List) filter(severity Severity) List {
	var result List
	for _, d := range l {
		if d.Severity == severity {
			result = append(result, d)
		}
	}
	return result
}

// Sort orders diagnostics by file, position and code
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i], l[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}
		return a.Code < b.Code
	})
}
