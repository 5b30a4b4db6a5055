package datapack

import (
	"fmt"
	"reflect"

	"github.com/gron1987/entity-array-compressor/cache"
	"github.com/gron1987/entity-array-compressor/encio"
	"github.com/gron1987/entity-array-compressor/encode"
)

// Builtin factories. All of them are in DefaultRegistry.
var (
	// SignedFactory writes signed integer kinds as signed varints.
	SignedFactory Factory = signedFactory{}

	// NumberDiffFactory writes signed integer kinds as the signed varint of the difference from the previous value,
	// which is small for slowly changing series such as timestamps and counters.
	// Lookup never picks it over SignedFactory; use it by registering it in a Registry after SignedFactory.
	NumberDiffFactory Factory = numberDiffFactory{}

	// UnsignedFactory writes unsigned integer kinds as unsigned varints.
	UnsignedFactory Factory = unsignedFactory{}

	// FloatFactory writes float kinds as the unsigned varint of their byte-reversed IEEE 754 bits.
	FloatFactory Factory = floatFactory{}

	// BoolFactory writes bools as the unsigned varints 0 and 1.
	BoolFactory Factory = boolFactory{}

	// CachedStringFactory writes string kinds through a latest-first cache of Config.CacheSize strings,
	// so repeated strings cost a back-reference.
	CachedStringFactory Factory = cachedStringFactory{}

	// SliceFactory writes slices as their length, null for a nil slice, followed by the elements.
	// The element type is registered when the slice type is.
	SliceFactory Factory = sliceFactory{}

	// ObjectFactory writes interface kinds, registering the dynamic type of every value as Writer.WriteObject does.
	ObjectFactory Factory = objectFactory{}
)

var builtin = []Factory{
	NumberDiffFactory,
	SignedFactory,
	UnsignedFactory,
	FloatFactory,
	BoolFactory,
	CachedStringFactory,
	SliceFactory,
	ObjectFactory,
}

var anyType = reflect.TypeFor[any]()

// Signed integers

type signedFactory struct{}

func (signedFactory) Name() string { return "_S" }

func (signedFactory) Applicable(t reflect.Type) bool { return isSigned(t) }

func (signedFactory) DefaultType() reflect.Type { return reflect.TypeFor[int64]() }

func (signedFactory) NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error) {
	enc := encode.NewSignedWriter(w)
	return encode.SerializerFunc[any](func(v any) error {
		if v == nil {
			return enc.Serialize(nil)
		}
		n := reflect.ValueOf(v).Int()
		return enc.Serialize(&n)
	}), nil
}

func (signedFactory) NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error) {
	dec := encode.NewSignedReader(r)
	return encode.DeserializerFunc[any](func() (any, error) {
		n, err := dec.Deserialize()
		if err != nil || n == nil {
			return nil, err
		}
		return setInt(t, *n)
	}), nil
}

type numberDiffFactory struct{}

func (numberDiffFactory) Name() string { return "_ND" }

func (numberDiffFactory) Applicable(t reflect.Type) bool { return isSigned(t) }

func (numberDiffFactory) DefaultType() reflect.Type { return reflect.TypeFor[int64]() }

func (numberDiffFactory) NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error) {
	enc := encode.NewSignedWriter(w)
	var prev int64
	return encode.SerializerFunc[any](func(v any) error {
		if v == nil {
			return enc.Serialize(nil)
		}
		n := reflect.ValueOf(v).Int()
		diff := n - prev
		if err := enc.Serialize(&diff); err != nil {
			return err
		}
		prev = n
		return nil
	}), nil
}

func (numberDiffFactory) NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error) {
	dec := encode.NewSignedReader(r)
	var prev int64
	return encode.DeserializerFunc[any](func() (any, error) {
		diff, err := dec.Deserialize()
		if err != nil || diff == nil {
			return nil, err
		}
		prev += *diff
		return setInt(t, prev)
	}), nil
}

func isSigned(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func setInt(t reflect.Type, n int64) (any, error) {
	v := reflect.New(t).Elem()
	if v.OverflowInt(n) {
		return nil, encio.NewError(encio.ErrMalformed, fmt.Sprintf("%v overflows %v", n, t), 1)
	}
	v.SetInt(n)
	return v.Interface(), nil
}

// Unsigned integers

type unsignedFactory struct{}

func (unsignedFactory) Name() string { return "_U" }

func (unsignedFactory) Applicable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func (unsignedFactory) DefaultType() reflect.Type { return reflect.TypeFor[uint64]() }

func (unsignedFactory) NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error) {
	enc := encode.NewUnsignedWriter(w)
	return encode.SerializerFunc[any](func(v any) error {
		if v == nil {
			return enc.Serialize(nil)
		}
		n := reflect.ValueOf(v).Uint()
		return enc.Serialize(&n)
	}), nil
}

func (unsignedFactory) NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error) {
	dec := encode.NewUnsignedReader(r)
	return encode.DeserializerFunc[any](func() (any, error) {
		n, err := dec.Deserialize()
		if err != nil || n == nil {
			return nil, err
		}
		v := reflect.New(t).Elem()
		if v.OverflowUint(*n) {
			return nil, encio.NewError(encio.ErrMalformed, fmt.Sprintf("%v overflows %v", *n, t), 0)
		}
		v.SetUint(*n)
		return v.Interface(), nil
	}), nil
}

// Floats

type floatFactory struct{}

func (floatFactory) Name() string { return "_F" }

func (floatFactory) Applicable(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

func (floatFactory) DefaultType() reflect.Type { return reflect.TypeFor[float64]() }

func (floatFactory) NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error) {
	enc := encode.NewFloatWriter(w)
	return encode.SerializerFunc[any](func(v any) error {
		if v == nil {
			return enc.Serialize(nil)
		}
		f := reflect.ValueOf(v).Float()
		return enc.Serialize(&f)
	}), nil
}

func (floatFactory) NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error) {
	dec := encode.NewFloatReader(r)
	return encode.DeserializerFunc[any](func() (any, error) {
		f, err := dec.Deserialize()
		if err != nil || f == nil {
			return nil, err
		}
		v := reflect.New(t).Elem()
		if v.OverflowFloat(*f) {
			return nil, encio.NewError(encio.ErrMalformed, fmt.Sprintf("%v overflows %v", *f, t), 0)
		}
		v.SetFloat(*f)
		return v.Interface(), nil
	}), nil
}

// Bools

type boolFactory struct{}

func (boolFactory) Name() string { return "_B" }

func (boolFactory) Applicable(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func (boolFactory) DefaultType() reflect.Type { return reflect.TypeFor[bool]() }

func (boolFactory) NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error) {
	enc := encode.NewBoolWriter(w)
	return encode.SerializerFunc[any](func(v any) error {
		if v == nil {
			return enc.Serialize(nil)
		}
		b := reflect.ValueOf(v).Bool()
		return enc.Serialize(&b)
	}), nil
}

func (boolFactory) NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error) {
	dec := encode.NewBoolReader(r)
	return encode.DeserializerFunc[any](func() (any, error) {
		b, err := dec.Deserialize()
		if err != nil || b == nil {
			return nil, err
		}
		v := reflect.New(t).Elem()
		v.SetBool(*b)
		return v.Interface(), nil
	}), nil
}

// Strings

type cachedStringFactory struct{}

func (cachedStringFactory) Name() string { return "_C" }

func (cachedStringFactory) Applicable(t reflect.Type) bool { return t.Kind() == reflect.String }

func (cachedStringFactory) DefaultType() reflect.Type { return reflect.TypeFor[string]() }

func (cachedStringFactory) NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error) {
	c := cache.NewKind[string](w.config.CacheKind, w.config.CacheSize)
	enc, err := encode.NewCachedWriter[string](w, encode.NewStringWriter(w), c)
	if err != nil {
		return nil, err
	}
	return encode.SerializerFunc[any](func(v any) error {
		if v == nil {
			return enc.Serialize(nil)
		}
		s := reflect.ValueOf(v).String()
		return enc.Serialize(&s)
	}), nil
}

func (cachedStringFactory) NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error) {
	dec, err := encode.NewCachedReader[string](r, encode.NewStringReader(r), r.config.CacheKind)
	if err != nil {
		return nil, err
	}
	return encode.DeserializerFunc[any](func() (any, error) {
		s, err := dec.Deserialize()
		if err != nil || s == nil {
			return nil, err
		}
		v := reflect.New(t).Elem()
		v.SetString(*s)
		return v.Interface(), nil
	}), nil
}

// Slices

type sliceFactory struct{}

func (sliceFactory) Name() string { return "_A" }

func (sliceFactory) Applicable(t reflect.Type) bool { return t.Kind() == reflect.Slice }

func (sliceFactory) DefaultType() reflect.Type { return reflect.TypeFor[[]any]() }

func (sliceFactory) NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error) {
	elem, err := w.SerializerFor(t.Elem())
	if err != nil {
		return nil, err
	}

	var buff encio.Varint
	return encode.SerializerFunc[any](func(v any) error {
		rv := reflect.ValueOf(v)
		if v == nil || rv.IsNil() {
			return buff.EncodeUnsignedNull(w)
		}

		if err := buff.EncodeUnsigned(w, uint64(rv.Len())); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			if err := elem.Serialize(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func (sliceFactory) NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error) {
	elem, err := r.DeserializerFor(t.Elem())
	if err != nil {
		return nil, err
	}

	var buff encio.Varint
	return encode.DeserializerFunc[any](func() (any, error) {
		l, ok, err := buff.DecodeUnsigned(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return reflect.Zero(t).Interface(), nil
		}
		if l > encio.TooBig {
			return nil, encio.NewIOError(encio.ErrMalformed, r, fmt.Sprintf("slice length of %v is too big", l), 0)
		}

		s := reflect.MakeSlice(t, int(l), int(l))
		for i := 0; i < int(l); i++ {
			e, err := elem.Deserialize()
			if err != nil {
				return nil, unexpectedEOF(err, r)
			}
			if e == nil {
				continue
			}

			ev := reflect.ValueOf(e)
			if !ev.Type().AssignableTo(t.Elem()) {
				return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("cannot use %v as element of %v", ev.Type(), t), 0)
			}
			s.Index(i).Set(ev)
		}
		return s.Interface(), nil
	}), nil
}

// Interfaces

type objectFactory struct{}

func (objectFactory) Name() string { return "_O" }

func (objectFactory) Applicable(t reflect.Type) bool { return t.Kind() == reflect.Interface }

func (objectFactory) DefaultType() reflect.Type { return anyType }

func (objectFactory) NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error) {
	return encode.SerializerFunc[any](w.WriteObject), nil
}

func (objectFactory) NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error) {
	return encode.DeserializerFunc[any](func() (any, error) {
		return r.ReadObject(nil)
	}), nil
}
