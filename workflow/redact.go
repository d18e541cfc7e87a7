package workflow

import "strings"

const redactedMark = "[redacted]"

// Redactor scrubs secret literals out of text before it reaches logs,
// error records, or uploaded diagnostics.
type Redactor struct {
	replacer *strings.Replacer
}

// NewRedactor builds a redactor for the given secret values. Empty values
// are ignored.
func NewRedactor(values ...string) *Redactor {
	var pairs []string
	for _, v := range values {
		if v != "" {
			pairs = append(pairs, v, redactedMark)
		}
	}
	return &Redactor{replacer: strings.NewReplacer(pairs...)}
}

// Redact replaces every occurrence of a secret value with a fixed marker.
func (r *Redactor) Redact(s string) string {
	return r.replacer.Replace(s)
}

// RedactBytes redacts a byte buffer, returning a scrubbed copy.
func (r *Redactor) RedactBytes(b []byte) []byte {
	return []byte(r.Redact(string(b)))
}
