package cursor

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every structural failure returned by this package or by the
// schemas built on it wraps exactly one of these.
var (
	ErrSignature           = errors.New("signature mismatch")
	ErrAssertion           = errors.New("unexpected value")
	ErrLength              = errors.New("length mismatch")
	ErrUnknownDiscriminant = errors.New("unknown discriminant")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrTruncated           = errors.New("truncated input")
)

// ParseError reports malformed input at a specific offset.
type ParseError struct {
	Kind     error
	Offset   int64 // absolute offset of the offending field
	Field    string
	Expected string
	Actual   string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Field != "" {
		b.WriteString(" in ")
		b.WriteString(e.Field)
	}
	fmt.Fprintf(&b, " at 0x%X", e.Offset)
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Kind }

// Annotate sets the field name on a *ParseError that does not carry one yet.
// Other errors are returned unchanged.
func Annotate(err error, field string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Field == "" {
		pe.Field = field
	}
	return err
}

func formatSet[T any](options []T) string {
	parts := make([]string, len(options))
	for i, o := range options {
		parts[i] = formatValue(o)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatValue(v any) string {
	switch t := v.(type) {
	case float32, float64:
		return fmt.Sprintf("%g", t)
	case string:
		return fmt.Sprintf("%q", t)
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64, int:
		return fmt.Sprintf("%d (0x%X)", t, t)
	default:
		return fmt.Sprint(t)
	}
}
