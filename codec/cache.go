package codec

import (
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/schema"
)

type cacheKey struct {
	goType reflect.Type
	fp     schema.Hash
}

func (k cacheKey) String() string {
	if k.goType == nil {
		return k.fp.String()
	}
	return k.fp.String() + "/" + k.goType.PkgPath() + "." + k.goType.String()
}

func keyOf(t *schema.Type) cacheKey {
	key := cacheKey{fp: schema.Fingerprint(t)}
	if t.Kind == schema.KindStruct && t.Struct != nil {
		key.goType = t.Struct.GoType
	}
	return key
}

// CacheStats counts cache activity since creation.
type CacheStats struct {
	Builds int64
	Hits   int64
}

// CachingFactory memoizes another factory by structural fingerprint.
// Concurrent first requests for one node build it once and all callers get
// the same codec.
type CachingFactory struct {
	inner  Factory
	group  singleflight.Group
	cache  sync.Map // cacheKey -> Codec
	builds atomic.Int64
	hits   atomic.Int64
}

func NewCachingFactory(inner Factory) *CachingFactory {
	return &CachingFactory{inner: inner}
}

func (f *CachingFactory) Create(req *Request) (Codec, error) {
	if req.Type == nil {
		return f.inner.Create(req)
	}
	key := keyOf(req.Type)
	if cached, ok := f.cache.Load(key); ok {
		f.hits.Add(1)
		Logger().Debug("codec cache hit",
			zap.Strings("path", req.Path),
			zap.String("fingerprint", key.fp.Short()),
		)
		return cached.(Codec), nil
	}

	// Waiting on our own in-flight build would never return.
	if req.isBuilding(key) {
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(req.Path...).
			Schema(req.Type.String()).
			Detail("recursive schema").
			Build()
	}

	v, err, shared := f.group.Do(key.String(), func() (any, error) {
		if cached, ok := f.cache.Load(key); ok {
			return cached, nil
		}
		c, err := f.inner.Create(req.withBuilding(key))
		if err != nil || c == nil {
			return c, err
		}
		f.cache.Store(key, c)
		f.builds.Add(1)
		Logger().Debug("codec built",
			zap.Strings("path", req.Path),
			zap.String("fingerprint", key.fp.Short()),
			zap.String("codec", c.Label()),
		)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.hits.Add(1)
	}
	c, _ := v.(Codec)
	return c, nil
}

// Stats returns build and hit counts.
func (f *CachingFactory) Stats() CacheStats {
	return CacheStats{Builds: f.builds.Load(), Hits: f.hits.Load()}
}

// Len returns the number of cached codecs.
func (f *CachingFactory) Len() int {
	n := 0
	f.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
