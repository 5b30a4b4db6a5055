// Package datapack writes and reads compact binary streams of typed objects.
//
// Streams stay small in two ways:
// Integers are written as variable-length varints, sign-aware where the type is signed, so small values take a single byte.
// Nothing is written twice: the factory describing a type is written the first time the type appears and referenced by a small id after,
// and cached factories replace values seen recently with a back-reference to a latest-first cache.
//
// A stream is written with a Writer and read back with a Reader. Writers pick a Factory for each type from Config.Factories;
// the factory's name is part of the stream, so Readers need the same factories registered, but need not know the Go types that were written.
//
//	w, err := datapack.NewWriter(f, nil)
//	...
//	err = w.WriteObject([]string{"a", "b", "a"})
//	err = w.Close()
//
//	r, err := datapack.NewReader(f, nil)
//	...
//	s, err := datapack.Read[[]string](r)
//
// datapack/encio provides the varint codec, io helpers and error types.
//
// datapack/cache provides the identity caches used for back-references.
//
// datapack/encode provides the value codecs factories are built from.
package datapack
