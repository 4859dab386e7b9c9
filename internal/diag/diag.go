// Package diag collects non-fatal build diagnostics.
//
// Warnings never abort a build; they accumulate in a List supplied by the
// caller and are mirrored to the logger.
package diag

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbuild/internal/logger"
)

// Severity classifies a diagnostic.
type Severity int8

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

// Code is a stable identifier for a class of diagnostic.
type Code uint16

const (
	CodeDegenerateTangentBasis Code = 1001 + iota
	CodeDegenerateTriangles
	CodeIndexOverflow
	CodeCacheOptimizationSkipped
	CodeMissingInfluence
	CodeInfluenceOutOfRange
	CodeChunkSplit
	CodeTooManyInfluences
)

var codeNames = map[Code]string{
	CodeDegenerateTangentBasis:   "degenerate-tangent-basis",
	CodeDegenerateTriangles:      "degenerate-triangles",
	CodeIndexOverflow:            "index-overflow",
	CodeCacheOptimizationSkipped: "cache-optimization-skipped",
	CodeMissingInfluence:         "missing-influence",
	CodeInfluenceOutOfRange:      "influence-out-of-range",
	CodeChunkSplit:               "chunk-split",
	CodeTooManyInfluences:        "too-many-influences",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code-%d", uint16(c))
}

// Diagnostic is one recorded message.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [MB%d %s] %s", d.Severity, uint16(d.Code), d.Code, d.Message)
}

// List accumulates diagnostics. It is safe for concurrent use and a nil
// *List discards everything except the log line.
type List struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Warn records a warning.
func (l *List) Warn(code Code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn(msg, zap.Stringer("code", code))
	l.add(Diagnostic{Severity: SeverityWarning, Code: code, Message: msg})
}

// Info records an informational diagnostic.
func (l *List) Info(code Code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Debug(msg, zap.Stringer("code", code))
	l.add(Diagnostic{Severity: SeverityInfo, Code: code, Message: msg})
}

func (l *List) add(d Diagnostic) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.items = append(l.items, d)
	l.mu.Unlock()
}

// Items returns a copy of the recorded diagnostics.
func (l *List) Items() []Diagnostic {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

// Count returns how many diagnostics carry the given code.
func (l *List) Count(code Code) int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, d := range l.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning-level diagnostics.
func (l *List) Warnings() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, d := range l.items {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
