package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/wippyai/bitcodec/codec"
)

var preamble = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func zstdFrame(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func lz4Frame(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	payload := bytes.Repeat([]byte("bitview "), 64)

	tests := []struct {
		name        string
		data        []byte
		compression string
		detected    string
	}{
		{"plain auto", payload, "auto", "none"},
		{"zstd auto", zstdFrame(t, payload), "auto", "zstd"},
		{"lz4 auto", lz4Frame(t, payload), "auto", "lz4"},
		{"zstd explicit", zstdFrame(t, payload), "zstd", "zstd"},
		{"lz4 explicit", lz4Frame(t, payload), "lz4", "lz4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectCompression(tt.data); got != tt.detected {
				t.Errorf("detectCompression = %q, want %q", got, tt.detected)
			}
			out, err := decompress(tt.data, tt.compression)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(out, payload) {
				t.Errorf("decompressed %d bytes, want %d", len(out), len(payload))
			}
		})
	}

	if _, err := decompress(payload, "zstd"); err == nil {
		t.Error("expected error decoding plain bytes as zstd")
	}
}

func TestConfig_FlagsOverrideFile(t *testing.T) {
	path := writeTemp(t, "bitview.yaml", []byte("format: wasm-preamble\noutput: cbor\ncolor: never\n"))

	var out bytes.Buffer
	err := run([]string{"--config", path, "--output", "text", writeTemp(t, "in.wasm", preamble)}, &out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"magic", `"\x00asm"`, "version: 1 (0x1)", "layer: 0 (0x0)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "png" }},
		{"output", func(c *Config) { c.Output = "json" }},
		{"compression", func(c *Config) { c.Compression = "gzip" }},
		{"color", func(c *Config) { c.Color = "sometimes" }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRun_CBOROutput(t *testing.T) {
	in := writeTemp(t, "in.wasm.zst", zstdFrame(t, preamble))

	var out bytes.Buffer
	if err := run([]string{"--format", "wasm-preamble", "--output", "cbor", "--roundtrip", in}, &out); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := cbor.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"magic": "\x00asm", "version": uint64(1), "layer": uint64(0)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cbor mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"--format", "wasm-preamble"}, "expected one input file"},
		{"bad magic", []string{"--format", "wasm-preamble", writeTemp(t, "bad", []byte("\x00elf\x01\x00\x00\x00"))}, "validation"},
		{"unknown format", []string{"--format", "png", "x"}, "unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestRun_Describe(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"--format", "wasm-preamble", "--describe", "--color", "never"}, &out); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"magic", "version", "[64 bits]"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("layout missing %q:\n%s", want, out.String())
		}
	}
}

func TestValueTree_Record(t *testing.T) {
	rec := codec.NewRecord("pkt").
		With("id", uint8(7)).
		With("body", []byte{0xDE, 0xAD}).
		With("items", []any{codec.NewRecord("item").With("n", "x")})

	got := valueTree("pkt", rec, newStyles(false)).String()
	for _, want := range []string{"id: 7 (0x7)", "body: dead", "items (1)", "[0] item", `n: "x"`} {
		if !strings.Contains(got, want) {
			t.Errorf("tree missing %q:\n%s", want, got)
		}
	}
}

func TestRun_WasmSection(t *testing.T) {
	module := append(append([]byte{}, preamble...), 0x05, 0x03, 0x01, 0x00, 0x01)
	in := writeTemp(t, "mem.wasm", module)

	var out bytes.Buffer
	if err := run([]string{"--format", "wasm-section", "--roundtrip", in}, &out); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"id: 5 (0x5)", "size: 3 (0x3)", "payload (3)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
