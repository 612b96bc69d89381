package diag

import (
	"fmt"

	"github.com/armakit/armakit/pkg/source"
)

// Collector accumulates diagnostics for one preprocessing run. It is
// append-only and never aborts the run. A Collector belongs to a single run
// and is not safe for concurrent use; parallel runs each own their own.
type Collector struct {
	diags []*Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a diagnostic.
func (c *Collector) Add(d *Diagnostic) {
	c.diags = append(c.diags, d)
}

// Errorf appends an error-severity diagnostic with a formatted message.
func (c *Collector) Errorf(code Code, loc source.Location, chain *source.Expansion, format string, args ...any) *Diagnostic {
	return c.append(code, SeverityError, loc, chain, format, args...)
}

// Warnf appends a warning-severity diagnostic with a formatted message.
func (c *Collector) Warnf(code Code, loc source.Location, chain *source.Expansion, format string, args ...any) *Diagnostic {
	return c.append(code, SeverityWarning, loc, chain, format, args...)
}

func (c *Collector) append(code Code, sev Severity, loc source.Location, chain *source.Expansion, format string, args ...any) *Diagnostic {
	d := &Diagnostic{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Loc:      loc,
		Chain:    chain,
	}
	c.diags = append(c.diags, d)
	return d
}

// All returns the collected diagnostics in insertion order.
// The returned slice is owned by the collector; callers must not mutate it.
func (c *Collector) All() []*Diagnostic {
	return c.diags
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	return len(c.diags)
}

// HasErrors reports whether any error-severity diagnostic was collected.
func (c *Collector) HasErrors() bool {
	for i := range c.diags {
		if c.diags[i].Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity returns diagnostic counts keyed by severity.
func (c *Collector) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, 3)
	for i := range c.diags {
		counts[c.diags[i].Severity]++
	}
	return counts
}

// Relate attaches a secondary location to a previously appended diagnostic.
func (d *Diagnostic) Relate(message string, loc source.Location) *Diagnostic {
	d.Related = append(d.Related, Related{Message: message, Loc: loc})
	return d
}
