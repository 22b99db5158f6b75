package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/term"

	"github.com/wippyai/bitcodec/codec"
)

// maxInlineBytes is the longest byte slice printed as hex on one line.
const maxInlineBytes = 32

type styles struct {
	name  lipgloss.Style
	value lipgloss.Style
	label lipgloss.Style
	enum  lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{name: plain, value: plain, label: plain, enum: plain}
	}
	return styles{
		name:  lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		value: lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		enum:  lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// useColor resolves the color mode against the output stream.
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// valueTree renders a decoded value, records and Go structs alike.
func valueTree(name string, v any, st styles) *tree.Tree {
	t := tree.Root(st.name.Render(name)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.enum)
	addChildren(t, v, st)
	return t
}

func addChildren(t *tree.Tree, v any, st styles) {
	if rec, ok := v.(*codec.Record); ok {
		for _, f := range rec.Fields() {
			fv, _ := rec.Get(f)
			t.Child(child(f, fv, st))
		}
		return
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			if !rt.Field(i).IsExported() {
				continue
			}
			t.Child(child(rt.Field(i).Name, rv.Field(i).Interface(), st))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			t.Child(child("["+strconv.Itoa(i)+"]", rv.Index(i).Interface(), st))
		}
	}
}

// child returns a leaf line or a subtree for composite values.
func child(name string, v any, st styles) any {
	if leaf, ok := leafString(v); ok {
		return st.name.Render(name) + ": " + st.value.Render(leaf)
	}
	label := st.name.Render(name)
	if kind := compositeLabel(v); kind != "" {
		label += " " + st.label.Render(kind)
	}
	sub := tree.Root(label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.enum)
	addChildren(sub, v, st)
	return sub
}

func compositeLabel(v any) string {
	if rec, ok := v.(*codec.Record); ok {
		return rec.Name
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return rv.Type().Name()
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("(%d)", rv.Len())
	}
	return ""
}

func leafString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "<unset>", true
	case string:
		return strconv.Quote(x), true
	case []byte:
		if len(x) <= maxInlineBytes {
			return hex.EncodeToString(x), true
		}
		return fmt.Sprintf("%s… (%d bytes)", hex.EncodeToString(x[:maxInlineBytes]), len(x)), true
	case *codec.Record:
		return "", false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "<nil>", true
		}
		return leafString(rv.Elem().Interface())
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
		return "", false
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d (0x%X)", rv.Uint(), rv.Uint()), true
	}
	return fmt.Sprint(v), true
}

// layoutTree renders a compiled codec's layout.
func layoutTree(n codec.Node, st styles) *tree.Tree {
	name := n.Name
	if name == "" {
		name = "layout"
	}
	root := st.name.Render(name) + " " + st.label.Render(n.Label)
	if n.Size != "" {
		root += " " + st.enum.Render("["+n.Size+" bits]")
	}
	t := tree.Root(root).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.enum)
	for _, c := range n.Children {
		t.Child(layoutTree(c, st))
	}
	return t
}

// writeCBOR encodes v with records flattened into maps.
func writeCBOR(w io.Writer, v any) error {
	if rec, ok := v.(*codec.Record); ok {
		v = rec.Map()
	}
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return err
	}
	data, err := em.Marshal(v)
	if err != nil {
		return fmt.Errorf("cbor: %w", err)
	}
	_, err = w.Write(data)
	return err
}
