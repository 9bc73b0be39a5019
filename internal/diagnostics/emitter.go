package diagnostics

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// SourceCache holds file contents keyed by path so emitters can render
// source snippets without touching the filesystem.
type SourceCache struct {
	mu    sync.RWMutex
	lines map[string][]string
}

// NewSourceCache creates an empty source cache.
func NewSourceCache() *SourceCache {
	return &SourceCache{lines: make(map[string][]string)}
}

// AddSource registers the content of a file.
func (c *SourceCache) AddSource(filepath, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[filepath] = strings.Split(content, "\n")
}

// Line returns the 1-indexed line of a cached file, if available.
func (c *SourceCache) Line(filepath string, line int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lines, ok := c.lines[filepath]
	if !ok || line < 1 || line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// Emitter renders diagnostics to a writer with ANSI coloring.
type Emitter struct {
	writer io.Writer
	cache  *SourceCache

	errColor  *color.Color
	warnColor *color.Color
	infoColor *color.Color
	dimColor  *color.Color
}

// NewEmitter creates an emitter writing to w, reading snippets from cache.
// A nil cache disables snippet rendering.
func NewEmitter(w io.Writer, cache *SourceCache) *Emitter {
	return &Emitter{
		writer:    w,
		cache:     cache,
		errColor:  color.New(color.FgRed, color.Bold),
		warnColor: color.New(color.FgYellow, color.Bold),
		infoColor: color.New(color.FgCyan),
		dimColor:  color.New(color.Faint),
	}
}

// Emit renders a single diagnostic.
func (e *Emitter) Emit(d *Diagnostic) {
	sev := e.severityColor(d.Severity)
	if d.Code != "" {
		sev.Fprintf(e.writer, "%s[%s]", d.Severity, d.Code)
	} else {
		sev.Fprintf(e.writer, "%s", d.Severity)
	}
	fmt.Fprintf(e.writer, ": %s\n", d.Message)

	for _, label := range d.Labels {
		e.emitLabel(d, label)
	}
	for _, note := range d.Notes {
		e.dimColor.Fprintf(e.writer, "  note: %s\n", note.Message)
	}
	if d.Help != "" {
		e.infoColor.Fprintf(e.writer, "  help: %s\n", d.Help)
	}
	fmt.Fprintln(e.writer)
}

func (e *Emitter) emitLabel(d *Diagnostic, label Label) {
	loc := label.Location
	if loc == nil || loc.Start == nil {
		return
	}
	file := loc.File()
	if file == "" {
		file = d.FilePath
	}
	e.dimColor.Fprintf(e.writer, "  --> %s:%d:%d\n", file, loc.Start.Line, loc.Start.Column)

	if e.cache == nil {
		if label.Message != "" {
			fmt.Fprintf(e.writer, "      %s\n", label.Message)
		}
		return
	}
	line, ok := e.cache.Line(file, loc.Start.Line)
	if !ok {
		if label.Message != "" {
			fmt.Fprintf(e.writer, "      %s\n", label.Message)
		}
		return
	}

	fmt.Fprintf(e.writer, "%5d | %s\n", loc.Start.Line, line)

	// Caret range: ^^^ for primary, --- for secondary.
	start := loc.Start.Column
	end := start + 1
	if loc.End != nil && loc.End.Line == loc.Start.Line && loc.End.Column > start {
		end = loc.End.Column
	}
	marker := "^"
	markerColor := e.severityColor(d.Severity)
	if label.Style == Secondary {
		marker = "-"
		markerColor = e.dimColor
	}
	fmt.Fprintf(e.writer, "      | %s", strings.Repeat(" ", start-1))
	markerColor.Fprint(e.writer, strings.Repeat(marker, end-start))
	if label.Message != "" {
		markerColor.Fprintf(e.writer, " %s", label.Message)
	}
	fmt.Fprintln(e.writer)
}

func (e *Emitter) severityColor(s Severity) *color.Color {
	switch s {
	case Error:
		return e.errColor
	case Warning:
		return e.warnColor
	default:
		return e.infoColor
	}
}
