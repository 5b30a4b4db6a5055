package datapack

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/gron1987/entity-array-compressor/encio"
	"github.com/gron1987/entity-array-compressor/encode"
)

// Factory creates the serializers and deserializers for a family of types.
//
// When a Writer first meets a type it writes the factory's name, then calls NewSerializer,
// which may write parameters and register nested types with Writer.SerializerFor.
// A Reader reading the name calls NewDeserializer, which must read exactly what NewSerializer wrote.
type Factory interface {
	// Name identifies the factory in streams. It must be unique within a FactoryLookup.
	Name() string

	// Applicable reports whether the factory can serialize values of type t.
	Applicable(t reflect.Type) bool

	// DefaultType is the type values are decoded as when the reader gives no applicable type.
	DefaultType() reflect.Type

	// NewSerializer returns a Serializer for values of type t, writing any parameters to w.
	NewSerializer(w *Writer, t reflect.Type) (encode.Serializer[any], error)

	// NewDeserializer reads the parameters written by NewSerializer from r and returns a Deserializer producing values of type t.
	NewDeserializer(r *Reader, t reflect.Type) (encode.Deserializer[any], error)
}

// FactoryLookup finds factories by type and by name.
type FactoryLookup interface {
	// Lookup returns a factory applicable to t, or nil.
	Lookup(t reflect.Type) Factory

	// ByName returns the factory with the given name, or nil.
	ByName(name string) Factory
}

// NewRegistry returns a Registry holding the given factories.
func NewRegistry(factories ...Factory) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Factory),
	}
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Registry is an ordered FactoryLookup.
// Lookup prefers factories registered later, so registering a factory overrides earlier ones for the types it applies to.
// It is safe for concurrent use.
type Registry struct {
	mutex     sync.RWMutex
	factories []Factory
	byName    map[string]Factory
}

// Register adds f to the registry.
func (r *Registry) Register(f Factory) error {
	if f == nil {
		return encio.NewError(encio.ErrNilPointer, "cannot register nil factory", 0)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.byName[f.Name()]; ok {
		return encio.NewError(encio.ErrBadConfig, fmt.Sprintf("factory name %q is already registered", f.Name()), 0)
	}
	r.byName[f.Name()] = f
	r.factories = append(r.factories, f)
	return nil
}

// Lookup implements FactoryLookup.
func (r *Registry) Lookup(t reflect.Type) Factory {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for i := len(r.factories) - 1; i >= 0; i-- {
		if r.factories[i].Applicable(t) {
			return r.factories[i]
		}
	}
	return nil
}

// ByName implements FactoryLookup.
func (r *Registry) ByName(name string) Factory {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.byName[name]
}

// DefaultRegistry is the FactoryLookup used when Config.Factories is nil.
// It holds the builtin factories.
var DefaultRegistry = func() *Registry {
	r, err := NewRegistry(builtin...)
	if err != nil {
		panic(err)
	}
	return r
}()

// Register adds f to DefaultRegistry.
func Register(f Factory) error {
	return DefaultRegistry.Register(f)
}
