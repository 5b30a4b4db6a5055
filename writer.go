package datapack

import (
	"fmt"
	"io"
	"reflect"

	"github.com/gron1987/entity-array-compressor/encio"
	"github.com/gron1987/entity-array-compressor/encode"
)

// NewWriter returns a new Writer writing to w.
// If config is nil, the defaults are used.
func NewWriter(w io.Writer, config *Config) (*Writer, error) {
	config, err := config.copyAndFill()
	if err != nil {
		return nil, err
	}

	return &Writer{
		w:        w,
		config:   config,
		str:      encode.NewStringWriter(w),
		types:    make(map[reflect.Type]int),
		building: make(map[reflect.Type]bool),
	}, nil
}

// Writer writes a stream of objects.
//
// Every object is preceded by the reference id of its type. The first time a type is written its id is 0,
// followed by the name of the factory that serializes it and the factory's parameters;
// the type is then registered and later objects of the type reference it by its registration number, counting from 1.
// A nil object is written as a null id.
//
// A Writer is not safe for concurrent use. After an error the stream is in an unknown state, and the Writer should be discarded.
type Writer struct {
	w      io.Writer
	config *Config
	buff   encio.Varint
	str    *encode.StringWriter

	types    map[reflect.Type]int
	slots    []encode.Serializer[any]
	building map[reflect.Type]bool
	closed   bool
}

// Write writes p to the underlying stream unchanged.
// It lets factories hand the Writer to the codecs in encode.
func (w *Writer) Write(p []byte) (int, error) {
	if err := encio.Write(p, w.w); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteObject writes v, registering its type first if it is new to the stream.
func (w *Writer) WriteObject(v any) error {
	if w.closed {
		return encio.NewError(encio.ErrClosed, "cannot write to closed Writer", 0)
	}
	if v == nil {
		return w.buff.EncodeUnsignedNull(w.w)
	}

	s, err := w.SerializerFor(reflect.TypeOf(v))
	if err != nil {
		return err
	}
	return s.Serialize(v)
}

// SerializerFor writes the reference id of t, registering it first if it is new to the stream, and returns its Serializer.
// Factories use it to register the types their values are made of.
func (w *Writer) SerializerFor(t reflect.Type) (encode.Serializer[any], error) {
	if t == nil {
		return nil, encio.NewError(encio.ErrNilPointer, "cannot serialize nil type", 0)
	}

	if i, ok := w.types[t]; ok {
		if err := w.buff.EncodeUnsigned(w.w, uint64(i)+1); err != nil {
			return nil, err
		}
		return w.slots[i], nil
	}

	if w.building[t] {
		return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is recursive", t), 0)
	}

	f, err := w.factoryFor(t)
	if err != nil {
		return nil, err
	}

	if err := w.buff.EncodeUnsigned(w.w, 0); err != nil {
		return nil, err
	}

	i := len(w.slots)
	w.slots = append(w.slots, nil)

	if err := w.WriteString(f.Name()); err != nil {
		return nil, err
	}

	w.building[t] = true
	s, err := f.NewSerializer(w, t)
	delete(w.building, t)
	if err != nil {
		return nil, err
	}

	w.slots[i] = s
	w.types[t] = i
	return s, nil
}

func (w *Writer) factoryFor(t reflect.Type) (Factory, error) {
	if f := w.config.Factories.Lookup(t); f != nil {
		return f, nil
	}
	if w.config.Fallback != nil {
		encio.Warnf("no factory for %v, using fallback factory %v", t, w.config.Fallback.Name())
		return w.config.Fallback, nil
	}
	return nil, encio.NewError(encio.ErrUnknownType, fmt.Sprintf("no factory for %v", t), 1)
}

// WriteSigned writes a signed integer.
func (w *Writer) WriteSigned(v int64) error {
	return w.buff.EncodeSigned(w.w, v)
}

// WriteSignedNull writes a null signed integer.
func (w *Writer) WriteSignedNull() error {
	return w.buff.EncodeSignedNull(w.w)
}

// WriteUnsigned writes an unsigned integer.
func (w *Writer) WriteUnsigned(v uint64) error {
	return w.buff.EncodeUnsigned(w.w, v)
}

// WriteUnsignedNull writes a null unsigned integer.
func (w *Writer) WriteUnsignedNull() error {
	return w.buff.EncodeUnsignedNull(w.w)
}

// WriteString writes a string.
func (w *Writer) WriteString(s string) error {
	return w.str.Serialize(&s)
}

// WriteNullString writes a null string.
func (w *Writer) WriteNullString() error {
	return w.str.Serialize(nil)
}

// Close ends the stream with a null id, then closes the underlying io.Writer if it is an io.Closer.
// Closing a closed Writer does nothing.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.buff.EncodeUnsignedNull(w.w)
	if c, ok := w.w.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
