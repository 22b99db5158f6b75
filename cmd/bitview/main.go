// Command bitview decodes a binary file with one of the built-in layouts and
// prints the result as a tree or as CBOR.
//
//	bitview [flags] <file|->
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/codec"
)

type options struct {
	config      string
	format      string
	output      string
	compression string
	color       string
	roundtrip   bool
	describe    bool
	interactive bool
	verbose     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("bitview", pflag.ContinueOnError)
	var o options
	fs.StringVar(&o.config, "config", "", "YAML file with default settings")
	fs.StringVar(&o.format, "format", "", "Layout to decode with ("+formatNames()+")")
	fs.StringVar(&o.output, "output", "", "Output: text or cbor")
	fs.StringVar(&o.compression, "compression", "", "Input compression: auto, none, zstd or lz4")
	fs.StringVar(&o.color, "color", "", "Color: auto, always or never")
	fs.BoolVar(&o.roundtrip, "roundtrip", false, "Re-encode the decoded value and compare with the input")
	fs.BoolVar(&o.describe, "describe", false, "Print the compiled layout instead of decoding")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "Browse the result in a scrollable view")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log compile and decode events")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: bitview [flags] <file|->")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := resolveConfig(fs, o)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if o.verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer log.Sync()
	}
	codec.SetLogger(log)

	comp := codec.NewDefaultCompiler()
	c, err := comp.Compile(formats[cfg.Format]())
	if err != nil {
		return fmt.Errorf("compile %s: %w", cfg.Format, err)
	}
	st := newStyles(useColor(cfg.Color, stdout))

	if o.describe {
		return show(stdout, cfg.Format+" layout", layoutTree(codec.Describe(c), st).String(), o.interactive)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one input file, got %d", fs.NArg())
	}
	data, err := readInput(fs.Arg(0), cfg.Compression)
	if err != nil {
		return err
	}

	buf := bitbuf.NewBuffer(data)
	v, err := comp.DecodeFrom(c, buf)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	used := int((buf.Position() + 7) / 8)
	log.Debug("decoded",
		zap.String("format", cfg.Format),
		zap.Int("bytes", used),
		zap.Int("trailing", len(data)-used))

	if o.roundtrip {
		if err := checkRoundTrip(comp, c, v, data[:used]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "roundtrip: %d bytes identical\n", used)
	}

	if cfg.Output == "cbor" {
		return writeCBOR(stdout, v)
	}
	return show(stdout, fs.Arg(0), valueTree(cfg.Format, v, st).String(), o.interactive)
}

// resolveConfig layers flags that were set over the config file.
func resolveConfig(fs *pflag.FlagSet, o options) (*Config, error) {
	cfg := DefaultConfig()
	if o.config != "" {
		var err error
		if cfg, err = LoadConfig(o.config); err != nil {
			return nil, err
		}
	}
	if fs.Changed("format") {
		cfg.Format = o.format
	}
	if fs.Changed("output") {
		cfg.Output = o.output
	}
	if fs.Changed("compression") {
		cfg.Compression = o.compression
	}
	if fs.Changed("color") {
		cfg.Color = o.color
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkRoundTrip(comp *codec.Compiler, c codec.Codec, v any, want []byte) error {
	got, err := comp.Encode(c, v)
	if err != nil {
		return fmt.Errorf("roundtrip encode: %w", err)
	}
	if bytes.Equal(got, want) {
		return nil
	}
	n := min(len(got), len(want))
	for i := 0; i < n; i++ {
		if got[i] != want[i] {
			return fmt.Errorf("roundtrip differs at byte %d: got %#02x, want %#02x", i, got[i], want[i])
		}
	}
	return fmt.Errorf("roundtrip length differs: got %d bytes, want %d", len(got), len(want))
}

func show(w io.Writer, title, content string, interactive bool) error {
	if interactive {
		return runInteractive(title, content)
	}
	_, err := fmt.Fprintln(w, content)
	return err
}
