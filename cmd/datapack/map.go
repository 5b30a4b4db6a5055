package main

import (
	"fmt"
	"reflect"
	"slices"

	datapack "github.com/gron1987/entity-array-compressor"
	"github.com/gron1987/entity-array-compressor/encio"
	"github.com/gron1987/entity-array-compressor/encode"
)

func init() {
	if err := datapack.Register(mapFactory{}); err != nil {
		panic(err)
	}
}

// mapFactory writes maps with string keys as their length, null for a nil map, followed by the entries in key order.
// Keys and values are registered as types of their own, so JSON field names go through the cached string factory.
type mapFactory struct{}

func (mapFactory) Name() string { return "_M" }

func (mapFactory) Applicable(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func (mapFactory) DefaultType() reflect.Type { return reflect.TypeFor[map[string]any]() }

func (mapFactory) NewSerializer(w *datapack.Writer, t reflect.Type) (encode.Serializer[any], error) {
	keys, err := w.SerializerFor(t.Key())
	if err != nil {
		return nil, err
	}
	values, err := w.SerializerFor(t.Elem())
	if err != nil {
		return nil, err
	}

	return encode.SerializerFunc[any](func(v any) error {
		rv := reflect.ValueOf(v)
		if v == nil || rv.IsNil() {
			return w.WriteUnsignedNull()
		}

		if err := w.WriteUnsigned(uint64(rv.Len())); err != nil {
			return err
		}

		mapKeys := rv.MapKeys()
		slices.SortFunc(mapKeys, func(a, b reflect.Value) int {
			switch {
			case a.String() < b.String():
				return -1
			case a.String() > b.String():
				return 1
			default:
				return 0
			}
		})
		for _, k := range mapKeys {
			if err := keys.Serialize(k.Interface()); err != nil {
				return err
			}
			if err := values.Serialize(rv.MapIndex(k).Interface()); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func (mapFactory) NewDeserializer(r *datapack.Reader, t reflect.Type) (encode.Deserializer[any], error) {
	keys, err := r.DeserializerFor(t.Key())
	if err != nil {
		return nil, err
	}
	values, err := r.DeserializerFor(t.Elem())
	if err != nil {
		return nil, err
	}

	return encode.DeserializerFunc[any](func() (any, error) {
		l, ok, err := r.ReadUnsigned()
		if err != nil {
			return nil, err
		}
		if !ok {
			return reflect.Zero(t).Interface(), nil
		}
		if l > encio.TooBig {
			return nil, encio.NewError(encio.ErrMalformed, fmt.Sprintf("map length of %v is too big", l), 0)
		}

		m := reflect.MakeMapWithSize(t, int(l))
		for i := uint64(0); i < l; i++ {
			k, err := keys.Deserialize()
			if err != nil {
				return nil, err
			}
			v, err := values.Deserialize()
			if err != nil {
				return nil, err
			}

			kv, err := assignable(k, t.Key())
			if err != nil {
				return nil, err
			}
			vv, err := assignable(v, t.Elem())
			if err != nil {
				return nil, err
			}
			m.SetMapIndex(kv, vv)
		}
		return m.Interface(), nil
	}), nil
}

// assignable returns v as a value that can be stored in a t, with nil as the zero t.
func assignable(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, encio.NewError(encio.ErrBadType, fmt.Sprintf("cannot use %v as %v", rv.Type(), t), 1)
	}
	return rv, nil
}
