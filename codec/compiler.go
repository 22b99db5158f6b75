package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/bitcodec/bitbuf"
	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/schema"
)

// Options configures a Compiler.
type Options struct {
	// Logger receives compile events. Nil uses the package logger.
	Logger *zap.Logger
	// Builder creates struct instances on decode.
	Builder Builder
	// Factories are asked in order for every schema node.
	Factories []Factory
	// Decorators wrap every codec the factories produce.
	Decorators []Decorator
	// DisableCache compiles every node afresh.
	DisableCache bool
}

// DefaultOptions returns the built-in factories, byte alignment and the
// default builder, with caching on.
func DefaultOptions() Options {
	return Options{
		Builder:    DefaultBuilder{},
		Factories:  DefaultFactories(),
		Decorators: []Decorator{AlignDecorator{}},
	}
}

// Compiler turns schemas into codecs. Safe for concurrent use.
type Compiler struct {
	root    Factory
	cache   *CachingFactory
	builder Builder
	log     *zap.Logger
}

// NewCompiler creates a compiler with the given options.
func NewCompiler(opts Options) *Compiler {
	c := &Compiler{builder: opts.Builder, log: opts.Logger}
	if c.builder == nil {
		c.builder = DefaultBuilder{}
	}
	if c.log == nil {
		c.log = Logger()
	}
	factories := opts.Factories
	if len(factories) == 0 {
		factories = DefaultFactories()
	}
	var root Factory = NewRegistry(factories, opts.Decorators...)
	if !opts.DisableCache {
		c.cache = NewCachingFactory(root)
		root = c.cache
	}
	c.root = root
	return c
}

// NewDefaultCompiler creates a compiler with default options.
func NewDefaultCompiler() *Compiler {
	return NewCompiler(DefaultOptions())
}

// Compile validates s and builds its codec.
func (c *Compiler) Compile(s *schema.Struct) (Codec, error) {
	if s == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("struct cannot be nil").
			Build()
	}
	return c.CompileType(schema.Nested(s))
}

// CompileType validates t and builds its codec.
func (c *Compiler) CompileType(t *schema.Type) (Codec, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("schema type cannot be nil").
			Build()
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	codec, err := c.root.Create(&Request{Type: t, Root: c.root})
	if err != nil {
		c.log.Debug("compile failed", zap.Stringer("schema", t), zap.Error(err))
		return nil, err
	}
	c.log.Debug("compiled", zap.Stringer("schema", t), zap.String("codec", codec.Label()))
	return codec, nil
}

// Decode reads one value from the start of data.
func (c *Compiler) Decode(codec Codec, data []byte) (any, error) {
	return c.DecodeFrom(codec, bitbuf.NewBuffer(data))
}

// DecodeFrom reads one value at the buffer's position. Trailing bits are
// left unread.
func (c *Compiler) DecodeFrom(codec Codec, buf *bitbuf.Buffer) (any, error) {
	return codec.Decode(buf, nil, c.builder)
}

// Encode writes v and returns the bytes. A final partial byte is padded
// with zero bits.
func (c *Compiler) Encode(codec Codec, v any) ([]byte, error) {
	w := bitbuf.GetWriter()
	defer bitbuf.PutWriter(w)
	if err := codec.Encode(v, w, nil); err != nil {
		return nil, err
	}
	out := make([]byte, len(w.Bytes()))
	copy(out, w.Bytes())
	return out, nil
}

// Stats reports cache activity. It is zero when caching is disabled.
func (c *Compiler) Stats() CacheStats {
	if c.cache == nil {
		return CacheStats{}
	}
	return c.cache.Stats()
}
