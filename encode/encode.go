// Package encode provides the value codecs datapack streams are built from.
//
// A Serializer is bound to one io.Writer and a Deserializer to one io.Reader when it is created; codecs holding state,
// such as CachedWriter and CachedReader, depend on values passing through them in stream order.
// Nullable values are passed as pointers, with nil as null.
package encode

// Serializer writes values of type T to the stream it was created for.
type Serializer[T any] interface {
	Serialize(v T) error
}

// Deserializer reads values of type T from the stream it was created for.
type Deserializer[T any] interface {
	Deserialize() (T, error)
}

// SerializerFunc adapts a function to a Serializer.
type SerializerFunc[T any] func(v T) error

// Serialize implements Serializer.
func (f SerializerFunc[T]) Serialize(v T) error { return f(v) }

// DeserializerFunc adapts a function to a Deserializer.
type DeserializerFunc[T any] func() (T, error)

// Deserialize implements Deserializer.
func (f DeserializerFunc[T]) Deserialize() (T, error) { return f() }
