package diagnostics

import (
	"github.com/sgammon/closure-templates-sub000/internal/source"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Label represents a labeled section of code in a diagnostic
type Label struct {
	Location *source.Location
	Message  string
	Style    LabelStyle
}

type LabelStyle int

const (
	Primary   LabelStyle = iota // The main error location (uses ^^^)
	Secondary                   // Additional context (uses ---)
)

// Note represents additional information attached to a diagnostic
type Note struct {
	Message string
}

// Diagnostic represents a single problem reported by the type-resolution pass.
type Diagnostic struct {
	Severity Severity
	Message  string
	Code     string // Stable code like "T0001"
	FilePath string // Source file for this diagnostic
	Labels   []Label
	Notes    []Note
	Help     string // Suggestion for fixing the error
}

// NewError creates a new error diagnostic
func NewError(message string) *Diagnostic {
	return &Diagnostic{
		Severity: Error,
		Message:  message,
		Labels:   make([]Label, 0),
		Notes:    make([]Note, 0),
	}
}

// NewWarning creates a new warning diagnostic
func NewWarning(message string) *Diagnostic {
	return &Diagnostic{
		Severity: Warning,
		Message:  message,
		Labels:   make([]Label, 0),
		Notes:    make([]Note, 0),
	}
}

// WithCode sets the diagnostic code
func (d *Diagnostic) WithCode(code string) *Diagnostic {
	d.Code = code
	return d
}

// WithLabel adds a labeled location to the diagnostic
func (d *Diagnostic) WithLabel(loc *source.Location, message string, style LabelStyle) *Diagnostic {
	if d.FilePath == "" {
		d.FilePath = loc.File()
	}
	d.Labels = append(d.Labels, Label{
		Location: loc,
		Message:  message,
		Style:    style,
	})
	return d
}

// WithPrimaryLabel adds the primary labeled location.
// Must be called before any WithSecondaryLabel calls.
func (d *Diagnostic) WithPrimaryLabel(loc *source.Location, message string) *Diagnostic {
	for _, label := range d.Labels {
		if label.Style == Primary {
			// Already have a primary, don't add another
			return d
		}
	}
	return d.WithLabel(loc, message, Primary)
}

// WithSecondaryLabel adds a secondary labeled location.
// Can be called multiple times to add multiple context labels.
func (d *Diagnostic) WithSecondaryLabel(loc *source.Location, message string) *Diagnostic {
	hasPrimary := false
	for _, label := range d.Labels {
		if label.Style == Primary {
			hasPrimary = true
			break
		}
	}
	if !hasPrimary {
		panic("cannot add secondary label without primary label; call WithPrimaryLabel first")
	}
	return d.WithLabel(loc, message, Secondary)
}

// WithNote adds a note to the diagnostic
func (d *Diagnostic) WithNote(message string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Message: message})
	return d
}

// WithHelp sets a helpful suggestion for fixing the error
func (d *Diagnostic) WithHelp(help string) *Diagnostic {
	d.Help = help
	return d
}
