package encode

import (
	"fmt"
	"io"

	"github.com/gron1987/entity-array-compressor/cache"
	"github.com/gron1987/entity-array-compressor/encio"
)

// Latest-first cached values.
//
// A cached stream starts with the cache size as an unsigned integer. Every value is then an unsigned reference id:
// null for a null value, 0 for a value not held by the cache, which follows in full using the inner codec,
// or p+1 for the value at position p. Both sides then move the value to the head of their cache, evicting the tail when full,
// so the writer and reader caches hold the same values in the same order after every value.
// Recently used values get the small ids, which the varint writes in a single byte.

// NewCachedWriter writes the size of c to w and returns a Serializer writing values through c and inner.
// c must be empty and must not be used by anything else while the writer is in use.
func NewCachedWriter[E comparable](w io.Writer, inner Serializer[*E], c cache.Cache[E]) (*CachedWriter[E], error) {
	if c == nil || inner == nil {
		return nil, encio.NewError(encio.ErrNilPointer, "cache and inner serializer must not be nil", 0)
	}
	e := &CachedWriter[E]{
		w:     w,
		inner: inner,
		cache: c,
	}
	if err := e.buff.EncodeUnsigned(w, uint64(c.MaxSize())); err != nil {
		return nil, err
	}
	return e, nil
}

// CachedWriter is a Serializer writing back-references to recently written values.
type CachedWriter[E comparable] struct {
	w     io.Writer
	inner Serializer[*E]
	cache cache.Cache[E]
	buff  encio.Varint
}

// Serialize implements Serializer.
func (e *CachedWriter[E]) Serialize(v *E) error {
	if v == nil {
		return e.buff.EncodeUnsignedNull(e.w)
	}

	if pos := e.cache.IndexOf(*v); pos >= 0 {
		if err := e.buff.EncodeUnsigned(e.w, uint64(pos)+1); err != nil {
			return err
		}
		e.cache.RemovePosition(pos)
		e.cache.AddHead(*v)
		return nil
	}

	if err := e.buff.EncodeUnsigned(e.w, 0); err != nil {
		return err
	}
	if err := e.inner.Serialize(v); err != nil {
		return err
	}
	e.cache.AddHead(*v)
	return nil
}

// Cache returns the cache of the writer.
func (e *CachedWriter[E]) Cache() cache.Cache[E] { return e.cache }

// NewCachedReader reads the cache size from r and returns a Deserializer reading values through inner
// and a new cache of the given kind.
func NewCachedReader[E comparable](r io.Reader, inner Deserializer[*E], kind cache.Kind) (*CachedReader[E], error) {
	if inner == nil {
		return nil, encio.NewError(encio.ErrNilPointer, "inner deserializer must not be nil", 0)
	}

	d := &CachedReader[E]{
		r:     r,
		inner: inner,
	}

	size, ok, err := d.buff.DecodeUnsigned(r)
	switch {
	case err != nil:
		return nil, err
	case !ok:
		return nil, encio.NewIOError(encio.ErrMalformed, r, "null cache size", 0)
	case size == 0 || size > cache.MaxCacheSize:
		return nil, encio.NewIOError(encio.ErrMalformed, r, fmt.Sprintf("cache size of %v is invalid", size), 0)
	}

	d.cache = cache.NewKind[E](kind, int(size))
	return d, nil
}

// CachedReader is a Deserializer resolving the back-references written by CachedWriter.
type CachedReader[E comparable] struct {
	r     io.Reader
	inner Deserializer[*E]
	cache cache.Cache[E]
	buff  encio.Varint
}

// Deserialize implements Deserializer.
func (d *CachedReader[E]) Deserialize() (*E, error) {
	id, ok, err := d.buff.DecodeUnsigned(d.r)
	if err != nil || !ok {
		return nil, err
	}

	var v E
	if id == 0 {
		p, err := d.inner.Deserialize()
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, encio.NewError(encio.ErrMalformed, "uncached value is null", 0)
		}
		v = *p
	} else {
		if id > uint64(d.cache.Size()) {
			return nil, encio.NewIOError(
				encio.ErrMalformed,
				d.r,
				fmt.Sprintf("reference %v is outside the %v cached values", id, d.cache.Size()),
				0,
			)
		}
		v, _ = d.cache.RemovePosition(int(id - 1))
	}

	d.cache.AddHead(v)
	return &v, nil
}

// Cache returns the cache of the reader.
func (d *CachedReader[E]) Cache() cache.Cache[E] { return d.cache }
