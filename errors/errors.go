package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // schema to codec tree
	PhaseEncode  Phase = "encode"  // value to bits
	PhaseDecode  Phase = "decode"  // bits to value
	PhaseEval    Phase = "eval"    // expression evaluation
	PhaseParse   Phase = "parse"   // expression parsing
)

// Kind categorizes the error
type Kind string

const (
	KindBufferUnderflow       Kind = "buffer_underflow"
	KindOutOfRange            Kind = "out_of_range"
	KindUnresolvedReference   Kind = "unresolved_reference"
	KindValidation            Kind = "validation"
	KindUnknownVariant        Kind = "unknown_variant"
	KindUnregisteredType      Kind = "unregistered_type"
	KindInstantiation         Kind = "instantiation"
	KindLengthMismatch        Kind = "length_mismatch"
	KindDuplicateDiscriminant Kind = "duplicate_discriminant"
	KindSyntax                Kind = "syntax"
	KindTypeMismatch          Kind = "type_mismatch"
	KindUnsupported           Kind = "unsupported"
	KindInvalidData           Kind = "invalid_data"
	KindNilPointer            Kind = "nil_pointer"
	KindOverflow              Kind = "overflow"
	KindDivisionByZero        Kind = "division_by_zero"
	KindSizeMismatch          Kind = "size_mismatch"
)

// NoPos marks an error that is not tied to a stream position.
const NoPos int64 = -1

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Schema string
	Detail string
	Path   []string
	BitPos int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.BitPos >= 0 {
		b.WriteString(" (bit ")
		b.WriteString(strconv.FormatInt(e.BitPos, 10))
		b.WriteString(", byte ")
		b.WriteString(strconv.FormatInt(e.BitPos/8, 10))
		b.WriteByte(')')
	}

	if e.GoType != "" || e.Schema != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Schema != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", schema ")
			b.WriteString(e.Schema)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("schema ")
			b.WriteString(e.Schema)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Schema != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any error in err's chain is an *Error of the given
// kind, regardless of phase.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// WithPath returns err with segment prepended to its field path. Errors that
// are not *Error are wrapped as invalid data so the path is not lost.
func WithPath(err error, segment string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return &Error{
			Phase:  PhaseDecode,
			Kind:   KindInvalidData,
			Path:   []string{segment},
			BitPos: NoPos,
			Cause:  err,
		}
	}
	cp := *e
	cp.Path = make([]string, 0, len(e.Path)+1)
	cp.Path = append(cp.Path, segment)
	cp.Path = append(cp.Path, e.Path...)
	return &cp
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			BitPos: NoPos,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// At records the bit position of the failure
func (b *Builder) At(bitPos int64) *Builder {
	b.err.BitPos = bitPos
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Schema sets the schema node description
func (b *Builder) Schema(s string) *Builder {
	b.err.Schema = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// BufferUnderflow creates an error for a read past the end of the bit region
func BufferUnderflow(bitPos int64, want, remaining int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindBufferUnderflow,
		BitPos: bitPos,
		Detail: fmt.Sprintf("need %d bits, %d remaining", want, remaining),
		Value:  want,
	}
}

// OutOfRange creates an error for a position outside the bit region
func OutOfRange(phase Phase, bitPos, limit int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		BitPos: NoPos,
		Detail: fmt.Sprintf("position %d outside region of %d bits", bitPos, limit),
		Value:  bitPos,
	}
}

// UnresolvedReference creates an error for a variable missing from the resolver chain
func UnresolvedReference(name string) *Error {
	return &Error{
		Phase:  PhaseEval,
		Kind:   KindUnresolvedReference,
		BitPos: NoPos,
		Detail: fmt.Sprintf("reference %q not found", name),
		Value:  name,
	}
}

// Validation creates an error for content that failed an exact-match check
func Validation(bitPos int64, expected, got string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindValidation,
		BitPos: bitPos,
		Detail: fmt.Sprintf("expected %q, got %q", expected, got),
		Value:  got,
	}
}

// UnknownVariant creates an error for a discriminant with no registered variant
func UnknownVariant(bitPos int64, disc uint64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownVariant,
		BitPos: bitPos,
		Detail: fmt.Sprintf("no variant registered for discriminant %d (0x%X)", disc, disc),
		Value:  disc,
	}
}

// UnregisteredType creates an error for a runtime type with no discriminant
func UnregisteredType(goType string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnregisteredType,
		BitPos: NoPos,
		GoType: goType,
		Detail: "type has no registered discriminant",
	}
}

// Instantiation creates an error for a builder that could not produce an instance
func Instantiation(schema string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInstantiation,
		BitPos: NoPos,
		Schema: schema,
		Detail: "create instance",
		Cause:  cause,
	}
}

// LengthMismatch creates an error for an encoded length that differs from the declared size
func LengthMismatch(want, got int64) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindLengthMismatch,
		BitPos: NoPos,
		Detail: fmt.Sprintf("encoded length %d does not match declared size %d", got, want),
		Value:  got,
	}
}

// DuplicateDiscriminant creates an error for two variants claiming one discriminant
func DuplicateDiscriminant(disc uint64, first, second string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindDuplicateDiscriminant,
		BitPos: NoPos,
		Detail: fmt.Sprintf("discriminant %d claimed by both %s and %s", disc, first, second),
		Value:  disc,
	}
}

// Syntax creates an expression syntax error
func Syntax(src string, col int, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		BitPos: NoPos,
		Detail: fmt.Sprintf("%s at column %d in %q", detail, col, src),
		Value:  src,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, schema string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		BitPos: NoPos,
		GoType: goType,
		Schema: schema,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		BitPos: NoPos,
		Detail: what,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		BitPos: NoPos,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		BitPos: NoPos,
		Schema: target,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		BitPos: NoPos,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		BitPos: NoPos,
		Detail: detail,
		Cause:  cause,
	}
}
