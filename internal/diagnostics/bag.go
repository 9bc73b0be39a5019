package diagnostics

import (
	"bytes"
	"sync"
)

// Bag collects diagnostics during a type-resolution pass.
//
// Checkpoint/ErrorsSince let a caller detect whether a sub-computation
// produced new errors without inspecting message contents: take a checkpoint,
// run the sub-computation, then ask whether errors arrived after it.
type Bag struct {
	diagnostics []*Diagnostic
	mu          sync.Mutex
	errorCount  int
	warnCount   int
	sourceCache *SourceCache
}

// Checkpoint is an opaque marker into a Bag's error history.
type Checkpoint int

// NewBag creates a new diagnostic bag.
func NewBag() *Bag {
	return &Bag{
		diagnostics: make([]*Diagnostic, 0),
		sourceCache: NewSourceCache(),
	}
}

// AddSourceContent adds source content for a file path (for caret rendering)
func (b *Bag) AddSourceContent(filepath, content string) {
	b.sourceCache.AddSource(filepath, content)
}

// Add adds a diagnostic to the bag
func (b *Bag) Add(diag *Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.diagnostics = append(b.diagnostics, diag)

	switch diag.Severity {
	case Error:
		b.errorCount++
	case Warning:
		b.warnCount++
	}
}

// Warn adds a warning diagnostic to the bag.
func (b *Bag) Warn(diag *Diagnostic) {
	diag.Severity = Warning
	b.Add(diag)
}

// HasErrors returns true if there are any errors
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount > 0
}

// ErrorCount returns the number of errors
func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

// WarningCount returns the number of warnings
func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnCount
}

// Mark returns a checkpoint capturing the current error count.
func (b *Bag) Mark() Checkpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Checkpoint(b.errorCount)
}

// ErrorsSince reports whether any error was added after the checkpoint was taken.
func (b *Bag) ErrorsSince(cp Checkpoint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount > int(cp)
}

// Diagnostics returns a copy of all diagnostics (thread-safe)
func (b *Bag) Diagnostics() []*Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]*Diagnostic, len(b.diagnostics))
	copy(result, b.diagnostics)
	return result
}

// EmitAllToString emits all diagnostics to a string with ANSI codes.
func (b *Bag) EmitAllToString() string {
	var buf bytes.Buffer
	emitter := NewEmitter(&buf, b.sourceCache)
	for _, diag := range b.Diagnostics() {
		emitter.Emit(diag)
	}
	return buf.String()
}

// SourceCache returns the bag's source cache for emitters.
func (b *Bag) SourceCache() *SourceCache {
	return b.sourceCache
}

// Clear removes all diagnostics
func (b *Bag) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diagnostics = make([]*Diagnostic, 0)
	b.errorCount = 0
	b.warnCount = 0
}
