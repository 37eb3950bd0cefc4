package railml

import (
	"fmt"
	"strings"

	"railio/internal/application"
)

// DiagnosticCode classifies a non-fatal parser finding
type DiagnosticCode string

const (
	// DiagSkipped marks an element that was dropped
	DiagSkipped DiagnosticCode = "skipped"
	// DiagUnmodeled marks an element kept verbatim as a RawElement
	DiagUnmodeled DiagnosticCode = "unmodeled"
	// DiagInvalidValue marks an optional attribute whose value was ignored
	DiagInvalidValue DiagnosticCode = "invalid-value"
)

// Diagnostic is a non-fatal finding attached to a parsed document
type Diagnostic struct {
	Code    DiagnosticCode
	Path    string
	Element string
	ID      string
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Code, d.Path)
	if d.ID != "" {
		fmt.Fprintf(&b, " (id %s)", d.ID)
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, " at line %d:%d", d.Line, d.Column)
	}
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// ParseError reports markup the parser cannot turn into a document
type ParseError struct {
	Element  string
	Path     string
	Line     int
	Column   int
	Expected string
	Err      error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	} else if e.Element != "" {
		fmt.Fprintf(&b, " in <%s>", e.Element)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d:%d", e.Line, e.Column)
	}
	if e.Expected != "" {
		fmt.Fprintf(&b, ": expected %s", e.Expected)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == application.ErrParse
}

// ExportInconsistencyError reports a construct the writer cannot represent
type ExportInconsistencyError struct {
	Construct string
	ID        string
	Reason    string
}

func (e *ExportInconsistencyError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("cannot export %s: %s", e.Construct, e.Reason)
	}
	return fmt.Sprintf("cannot export %s %s: %s", e.Construct, e.ID, e.Reason)
}

func (e *ExportInconsistencyError) Is(target error) bool {
	return target == application.ErrExport
}
