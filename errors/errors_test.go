package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
		excludes []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindTypeMismatch,
				Path:   []string{"header", "entries", "[2]"},
				GoType: "string",
				Schema: "uint16",
				Detail: "cannot convert",
				BitPos: NoPos,
			},
			contains: []string{"[encode]", "type_mismatch", "header.entries.[2]", "Go type string", "schema uint16", "cannot convert"},
			excludes: []string{"(bit"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindOutOfRange,
				BitPos: NoPos,
			},
			contains: []string{"[decode]", "out_of_range"},
		},
		{
			name: "with bit position",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindBufferUnderflow,
				BitPos: 19,
				Detail: "need 8 bits, 5 remaining",
			},
			contains: []string{"(bit 19, byte 2)", "need 8 bits"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindInstantiation,
				Detail: "create instance",
				Cause:  errors.New("underlying error"),
				BitPos: NoPos,
			},
			contains: []string{"[decode]", "instantiation", "create instance", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(msg, s) {
					t.Errorf("error message %q should not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindUnknownVariant,
		Path:  []string{"tag"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindUnknownVariant}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindUnknownVariant}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindValidation}) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("decoding: %w", err)
	if !errors.Is(wrapped, &Error{Phase: PhaseDecode, Kind: KindUnknownVariant}) {
		t.Error("errors.Is should match through fmt wrapping")
	}
}

func TestIsKind(t *testing.T) {
	inner := UnresolvedReference("count")
	outer := Wrap(PhaseDecode, KindInvalidData, inner, "size of entries")

	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{"direct", inner, KindUnresolvedReference, true},
		{"through cause", outer, KindUnresolvedReference, true},
		{"outer kind", outer, KindInvalidData, true},
		{"absent", outer, KindOverflow, false},
		{"fmt wrapped", fmt.Errorf("x: %w", outer), KindUnresolvedReference, true},
		{"plain error", errors.New("boom"), KindInvalidData, false},
		{"nil", nil, KindInvalidData, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("IsKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithPath(t *testing.T) {
	base := BufferUnderflow(40, 8, 0)
	err := WithPath(WithPath(base, "name"), "header")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("WithPath returned %T", err)
	}
	if got := strings.Join(e.Path, "."); got != "header.name" {
		t.Errorf("Path = %q, want header.name", got)
	}
	if len(base.Path) != 0 {
		t.Errorf("WithPath mutated the original: %v", base.Path)
	}
	if e.BitPos != 40 {
		t.Errorf("BitPos = %d, want 40", e.BitPos)
	}

	if WithPath(nil, "x") != nil {
		t.Error("WithPath(nil) should be nil")
	}

	plain := WithPath(errors.New("io"), "field")
	if !IsKind(plain, KindInvalidData) {
		t.Errorf("plain error should be wrapped as invalid_data: %v", plain)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindTypeMismatch).
		Path("record", "name").
		At(24).
		GoType("string").
		Schema("uint32").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "record" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [record name]", err.Path)
	}
	if err.BitPos != 24 {
		t.Errorf("BitPos = %d, want 24", err.BitPos)
	}
	if err.GoType != "string" || err.Schema != "uint32" {
		t.Errorf("GoType=%v Schema=%v", err.GoType, err.Schema)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}

	if New(PhaseDecode, KindSyntax).Build().BitPos != NoPos {
		t.Error("builder default BitPos should be NoPos")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
		text  string
	}{
		{"BufferUnderflow", BufferUnderflow(8, 16, 8), PhaseDecode, KindBufferUnderflow, "need 16 bits, 8 remaining"},
		{"OutOfRange", OutOfRange(PhaseDecode, 100, 64), PhaseDecode, KindOutOfRange, "position 100 outside region of 64 bits"},
		{"UnresolvedReference", UnresolvedReference("outer.count"), PhaseEval, KindUnresolvedReference, `"outer.count"`},
		{"Validation", Validation(0, "What", "Whom"), PhaseDecode, KindValidation, `expected "What", got "Whom"`},
		{"UnknownVariant", UnknownVariant(0, 0x63), PhaseDecode, KindUnknownVariant, "discriminant 99 (0x63)"},
		{"UnregisteredType", UnregisteredType("*main.Shape"), PhaseEncode, KindUnregisteredType, "*main.Shape"},
		{"Instantiation", Instantiation("Header", errors.New("no")), PhaseDecode, KindInstantiation, "Header"},
		{"LengthMismatch", LengthMismatch(32, 24), PhaseEncode, KindLengthMismatch, "24 does not match declared size 32"},
		{"DuplicateDiscriminant", DuplicateDiscriminant(7, "A", "B"), PhaseCompile, KindDuplicateDiscriminant, "A and B"},
		{"Syntax", Syntax("a +", 4, "unexpected end"), PhaseParse, KindSyntax, "column 4"},
		{"TypeMismatch", TypeMismatch(PhaseEncode, []string{"f"}, "int", "string"), PhaseEncode, KindTypeMismatch, "Go type int"},
		{"Unsupported", Unsupported(PhaseCompile, "recursive schema"), PhaseCompile, KindUnsupported, "recursive schema"},
		{"NilPointer", NilPointer(PhaseEncode, []string{"ptr"}, "*int"), PhaseEncode, KindNilPointer, "nil pointer"},
		{"Overflow", Overflow(PhaseEncode, []string{"n"}, 300, "uint8"), PhaseEncode, KindOverflow, "value 300 overflows uint8"},
		{"InvalidData", InvalidData(PhaseDecode, []string{"x"}, "bad enum"), PhaseDecode, KindInvalidData, "bad enum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if msg := tt.err.Error(); !strings.Contains(msg, tt.text) {
				t.Errorf("message %q does not contain %q", msg, tt.text)
			}
		})
	}

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("original")
		err := Wrap(PhaseDecode, KindInvalidData, cause, "context")
		if !errors.Is(err, cause) {
			t.Error("Wrap should preserve cause")
		}
		if err.Detail != "context" {
			t.Errorf("Detail = %v, want 'context'", err.Detail)
		}
	})
}
