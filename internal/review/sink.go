/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package review

// Location scopes a message to a file and line
type Location struct {
	File string
	Line int
}

// Sink records feedback for the review author
type Sink interface {
	// Fail records a failure. A nil loc means a general, unscoped entry.
	Fail(message string, loc *Location)
}

// Violation is one recorded failure
type Violation struct {
	Message string `json:"message" yaml:"message"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Inline reports whether the violation is scoped to a file line.
func (v Violation) Inline() bool {
	return v.File != ""
}

// StatusReport is an in-memory Sink collecting failures in report order
type StatusReport struct {
	Failures []Violation `json:"failures" yaml:"failures"`
}

// Fail implements Sink
func (r *StatusReport) Fail(message string, loc *Location) {
	v := Violation{Message: message}
	if loc != nil {
		v.File = loc.File
		v.Line = loc.Line
	}
	r.Failures = append(r.Failures, v)
}

// Messages returns the failure messages in report order.
func (r *StatusReport) Messages() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Message)
	}
	return out
}

// General returns the unscoped failures.
func (r *StatusReport) General() []Violation {
	var out []Violation
	for _, f := range r.Failures {
		if !f.Inline() {
			out = append(out, f)
		}
	}
	return out
}

// InlineFailures returns the failures scoped to a file line.
func (r *StatusReport) InlineFailures() []Violation {
	var out []Violation
	for _, f := range r.Failures {
		if f.Inline() {
			out = append(out, f)
		}
	}
	return out
}

// Empty reports whether nothing was recorded.
func (r *StatusReport) Empty() bool {
	return len(r.Failures) == 0
}
