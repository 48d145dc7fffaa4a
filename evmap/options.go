package evmap

import (
	"github.com/sirupsen/logrus"

	"github.com/go-leftright/evmap/internal/diagnostics"
	"github.com/go-leftright/evmap/leftright"
	"github.com/go-leftright/evmap/values"
)

// Option configures a Map constructed via New.
type Option[K comparable, V comparable, M any] func(*options[K, V, M])

type options[K comparable, V comparable, M any] struct {
	meta      M
	hasher    func(K) uint64
	threshold int
	logger    *logrus.Logger
}

// WithMeta sets the map's initial meta value, a user-opaque value published
// alongside the map and readable by every ReadHandle via Meta.
func WithMeta[K comparable, V comparable, M any](meta M) Option[K, V, M] {
	return func(o *options[K, V, M]) { o.meta = meta }
}

// WithHasher attaches a custom key-hashing function. Kept for API parity
// with the original left-right map's with_hasher builder option; Go's map
// type has no hook for a pluggable hasher, so this is not currently
// consulted by anything in package evmap, and exists only so callers
// migrating from a hasher-parameterized map don't need to drop the option
// entirely.
func WithHasher[K comparable, V comparable, M any](hasher func(K) uint64) Option[K, V, M] {
	return func(o *options[K, V, M]) { o.hasher = hasher }
}

// WithThreshold sets the per-key bag size above which a key's values are
// promoted from the inline representation to the hashed one. See package
// values.
func WithThreshold[K comparable, V comparable, M any](threshold int) Option[K, V, M] {
	return func(o *options[K, V, M]) { o.threshold = threshold }
}

// WithLogger attaches a logger the engine uses to record, at debug level,
// the number of unpublished operations at the start of each Publish. Publish
// timing and reader-wait stalls are not logged.
func WithLogger[K comparable, V comparable, M any](logger *logrus.Logger) Option[K, V, M] {
	return func(o *options[K, V, M]) { o.logger = logger }
}

// New constructs a new multi-value Map and its first reader endpoint,
// applying opts in order.
func New[K comparable, V comparable, M any](opts ...Option[K, V, M]) (*WriteHandle[K, V, M], *ReadHandle[K, V, M]) {
	o := options[K, V, M]{threshold: values.DefaultThreshold, logger: diagnostics.Nop()}
	for _, fn := range opts {
		fn(&o)
	}

	initial := Inner[K, V, M]{
		data:      make(map[K]*values.Values[V]),
		meta:      o.meta,
		threshold: o.threshold,
		hasher:    o.hasher,
	}

	engine, firstReader := leftright.New[Inner[K, V, M], Operation[K, V, M], *Inner[K, V, M]](initial)
	engine.WithLogger(o.logger)

	w := &WriteHandle[K, V, M]{
		engine: engine,
		reader: &ReadHandle[K, V, M]{inner: engine.Reader()},
	}
	return w, &ReadHandle[K, V, M]{inner: firstReader}
}

// NewBasic constructs a Map with no meta value, for callers that don't need
// one.
func NewBasic[K comparable, V comparable]() (*WriteHandle[K, V, struct{}], *ReadHandle[K, V, struct{}]) {
	return New[K, V, struct{}]()
}
