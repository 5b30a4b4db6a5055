package datapack

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"reflect"

	"github.com/gron1987/entity-array-compressor/encio"
	"github.com/gron1987/entity-array-compressor/encode"
)

// maxNesting bounds how deeply factory descriptors may nest in a stream.
const maxNesting = 100

// NewReader returns a new Reader reading from r.
// If config is nil, the defaults are used.
func NewReader(r io.Reader, config *Config) (*Reader, error) {
	config, err := config.copyAndFill()
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	return &Reader{
		r:      br,
		src:    r,
		config: config,
		str:    encode.NewStringReader(br),
	}, nil
}

// Reader reads a stream of objects written by a Writer.
// It buffers the underlying io.Reader, and may read past the end of the stream.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	r      *bufio.Reader
	src    io.Reader
	config *Config
	buff   encio.Varint
	str    *encode.StringReader

	slots   []encode.Deserializer[any]
	nesting int
	closed  bool
}

// Read reads from the buffered stream.
// It lets factories hand the Reader to the codecs in encode.
func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	return r.r.ReadByte()
}

// ReadObject reads the next object.
//
// hint is the type the object should be decoded as. If it is nil, or the object's factory is not applicable to it,
// the factory's default type is used instead.
// A null object is returned as nil. If the stream ends before the object io.EOF is returned.
func (r *Reader) ReadObject(hint reflect.Type) (any, error) {
	if r.closed {
		return nil, encio.NewError(encio.ErrClosed, "cannot read from closed Reader", 0)
	}

	id, ok, err := r.buff.DecodeUnsigned(r.r)
	if err != nil || !ok {
		return nil, err
	}

	d, err := r.resolve(id, hint)
	if err != nil {
		return nil, unexpectedEOF(err, r.r)
	}

	v, err := d.Deserialize()
	if err != nil {
		return nil, unexpectedEOF(err, r.r)
	}
	return v, nil
}

// DeserializerFor reads a reference id and returns the Deserializer it names, reading and registering its descriptor first if the id is 0.
// A null id is followed by a descriptor that is not registered.
// Factories use it to read the types their values are made of.
func (r *Reader) DeserializerFor(hint reflect.Type) (encode.Deserializer[any], error) {
	id, ok, err := r.buff.DecodeUnsigned(r.r)
	if err != nil {
		return nil, unexpectedEOF(err, r.r)
	}
	if !ok {
		return r.readDescriptor(hint)
	}
	return r.resolve(id, hint)
}

func (r *Reader) resolve(id uint64, hint reflect.Type) (encode.Deserializer[any], error) {
	if id == 0 {
		i := len(r.slots)
		r.slots = append(r.slots, nil)

		d, err := r.readDescriptor(hint)
		if err != nil {
			return nil, err
		}
		r.slots[i] = d
		return d, nil
	}

	if id > uint64(len(r.slots)) {
		return nil, encio.NewIOError(encio.ErrMalformed, r.r, fmt.Sprintf("type id %v but only %v types are registered", id, len(r.slots)), 0)
	}
	d := r.slots[id-1]
	if d == nil {
		return nil, encio.NewIOError(encio.ErrMalformed, r.r, fmt.Sprintf("type id %v referenced inside its own descriptor", id), 0)
	}
	return d, nil
}

func (r *Reader) readDescriptor(hint reflect.Type) (encode.Deserializer[any], error) {
	r.nesting++
	defer func() { r.nesting-- }()
	if r.nesting > maxNesting {
		return nil, encio.NewIOError(encio.ErrMalformed, r.r, fmt.Sprintf("descriptors nested more than %v deep", maxNesting), 0)
	}

	name, ok, err := r.ReadString()
	if err != nil {
		return nil, unexpectedEOF(err, r.r)
	}
	if !ok {
		return nil, encio.NewIOError(encio.ErrMalformed, r.r, "null factory name", 0)
	}

	f, err := r.factoryByName(name)
	if err != nil {
		return nil, err
	}

	t := hint
	if t == nil || !f.Applicable(t) {
		t = f.DefaultType()
	}
	return f.NewDeserializer(r, t)
}

func (r *Reader) factoryByName(name string) (Factory, error) {
	if f := r.config.Factories.ByName(name); f != nil {
		return f, nil
	}
	if r.config.Fallback != nil && r.config.Fallback.Name() == name {
		return r.config.Fallback, nil
	}
	return nil, encio.NewError(encio.ErrUnknownType, fmt.Sprintf("no factory named %q", name), 1)
}

// HasNext reports whether any bytes remain in the stream, without consuming them.
// The null id ending a closed stream counts; ReadObject returns nil for it.
func (r *Reader) HasNext() (bool, error) {
	if r.closed {
		return false, encio.NewError(encio.ErrClosed, "cannot read from closed Reader", 0)
	}

	_, err := r.r.Peek(1)
	switch {
	case err == nil:
		return true, nil
	case err == io.EOF:
		return false, nil
	default:
		return false, encio.NewIOError(err, r.src, "", 0)
	}
}

// All returns an iterator over the remaining objects, each decoded using hint as ReadObject does.
// It stops at a null id, at the end of the stream, or after yielding an error.
func (r *Reader) All(hint reflect.Type) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for {
			v, err := r.ReadObject(hint)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if v == nil {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// ReadSigned reads a signed integer. ok is false if it was null.
func (r *Reader) ReadSigned() (v int64, ok bool, err error) {
	return r.buff.DecodeSigned(r.r)
}

// ReadUnsigned reads an unsigned integer. ok is false if it was null.
func (r *Reader) ReadUnsigned() (v uint64, ok bool, err error) {
	return r.buff.DecodeUnsigned(r.r)
}

// ReadString reads a string. ok is false if it was null.
func (r *Reader) ReadString() (s string, ok bool, err error) {
	p, err := r.str.Deserialize()
	if err != nil || p == nil {
		return "", false, err
	}
	return *p, true, nil
}

// Close closes the underlying io.Reader if it is an io.Closer.
// Later reads fail with ErrClosed.
func (r *Reader) Close() error {
	r.closed = true
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Read reads the next object from r as a T.
// A null object is returned as the zero T.
func Read[T any](r *Reader) (T, error) {
	var zero T
	v, err := r.ReadObject(reflect.TypeFor[T]())
	if err != nil || v == nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, encio.NewError(encio.ErrBadType, fmt.Sprintf("read %T, want %v", v, reflect.TypeFor[T]()), 0)
	}
	return t, nil
}

// unexpectedEOF reports a clean end of stream as a truncation, for reads that are inside an object.
func unexpectedEOF(err error, r io.Reader) error {
	if err == io.EOF {
		return encio.NewIOError(io.ErrUnexpectedEOF, r, "stream ended inside an object", 1)
	}
	return err
}
