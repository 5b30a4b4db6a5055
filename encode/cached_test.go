package encode_test

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/gron1987/entity-array-compressor/cache"
	"github.com/gron1987/entity-array-compressor/encio"
	"github.com/gron1987/entity-array-compressor/encode"
)

var kinds = []cache.Kind{cache.KindList, cache.KindRingBuffer, cache.KindRingTree}

func newCachedPair(t *testing.T, buff *bytes.Buffer, kind cache.Kind, size int) (*encode.CachedWriter[string], *encode.CachedReader[string]) {
	t.Helper()

	enc, err := encode.NewCachedWriter[string](buff, encode.NewStringWriter(buff), cache.NewKind[string](kind, size))
	td.Require(t).CmpNoError(err)
	dec, err := encode.NewCachedReader[string](buff, encode.NewStringReader(buff), kind)
	td.Require(t).CmpNoError(err)
	return enc, dec
}

func TestCachedSymmetry(t *testing.T) {
	for _, kind := range kinds {
		for _, size := range []int{1, 2, 3, 5, 16, 100, 300} {
			t.Run(fmt.Sprintf("%v/%v", kind, size), func(t *testing.T) {
				rng := rand.New(rand.NewSource(int64(size)))
				buff := new(bytes.Buffer)
				enc, dec := newCachedPair(t, buff, kind, size)

				for i := 0; i < size*30; i++ {
					var v *string
					if rng.Intn(10) != 0 {
						v = ptr(fmt.Sprintf("value %v", rng.Intn(size*2)))
					}

					td.Require(t).CmpNoError(enc.Serialize(v))
					got, err := dec.Deserialize()
					td.Require(t).CmpNoError(err)
					td.Require(t).Cmp(got, v, "value %v", i)
					td.Require(t).Cmp(dec.Cache().String(), enc.Cache().String(), "caches after value %v", i)
					td.Require(t).Cmp(buff.Len(), 0)
				}
			})
		}
	}
}

func TestCachedWire(t *testing.T) {
	buff := new(bytes.Buffer)
	enc, err := encode.NewCachedWriter[string](buff, encode.NewStringWriter(buff), cache.NewList[string](2))
	td.Require(t).CmpNoError(err)

	for _, v := range []*string{ptr("a"), ptr("b"), ptr("a"), ptr("c"), ptr("b"), nil} {
		td.Require(t).CmpNoError(enc.Serialize(v))
	}

	td.Cmp(t, buff.Bytes(), []byte{
		2,         // cache size
		0, 1, 'a', // miss
		0, 1, 'b', // miss
		2,         // a at position 1
		0, 1, 'c', // miss, evicts b
		0, 1, 'b', // miss again
		encio.UnsignedNull,
	})
	td.Cmp(t, enc.Cache().String(), "[b c]")
}

func TestCachedRepeatsAreOneByte(t *testing.T) {
	buff := new(bytes.Buffer)
	enc, err := encode.NewCachedWriter[string](buff, encode.NewStringWriter(buff), cache.New[string](1024))
	td.Require(t).CmpNoError(err)

	v := ptr("a fairly long string that should only be written once")
	td.CmpNoError(t, enc.Serialize(v))
	written := buff.Len()
	for i := 0; i < 100; i++ {
		td.CmpNoError(t, enc.Serialize(v))
	}
	td.Cmp(t, buff.Len(), written+100)
}

func TestCachedEOF(t *testing.T) {
	buff := new(bytes.Buffer)
	enc, dec := newCachedPair(t, buff, cache.KindAuto, 4)

	td.CmpNoError(t, enc.Serialize(ptr("x")))
	_, err := dec.Deserialize()
	td.CmpNoError(t, err)

	_, err = dec.Deserialize()
	td.Cmp(t, err, io.EOF)
}

func TestCachedReaderMalformed(t *testing.T) {
	testCases := []struct {
		desc string
		data []byte
		err  error
	}{
		{desc: "null size", data: []byte{encio.UnsignedNull}, err: encio.ErrMalformed},
		{desc: "zero size", data: []byte{0}, err: encio.ErrMalformed},
		{desc: "huge size", data: encio.AppendUnsigned(nil, encio.TooBig+1), err: encio.ErrMalformed},
		{desc: "oversized cache", data: []byte{0xe0, 0x40, 0x00, 0x00}, err: encio.ErrMalformed},
		{desc: "one past max size", data: encio.AppendUnsigned(nil, cache.MaxCacheSize+1), err: encio.ErrMalformed},
		{desc: "no size", data: nil, err: io.EOF},
		{desc: "reference past size", data: []byte{2, 1}, err: encio.ErrMalformed},
		{desc: "null uncached value", data: []byte{2, 0, encio.UnsignedNull}, err: encio.ErrMalformed},
		{desc: "truncated value", data: []byte{2, 0, 3, 'a'}, err: io.ErrUnexpectedEOF},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			r := bytes.NewReader(tC.data)
			dec, err := encode.NewCachedReader[string](r, encode.NewStringReader(r), cache.KindAuto)
			if err == nil {
				_, err = dec.Deserialize()
			}
			td.CmpErrorIs(t, err, tC.err)
		})
	}
}

func TestCachedNilArguments(t *testing.T) {
	_, err := encode.NewCachedWriter[string](io.Discard, nil, cache.New[string](1))
	td.CmpErrorIs(t, err, encio.ErrNilPointer)

	_, err = encode.NewCachedReader[string](bytes.NewReader([]byte{1}), nil, cache.KindAuto)
	td.CmpErrorIs(t, err, encio.ErrNilPointer)
}

func BenchmarkCached(b *testing.B) {
	values := make([]string, 4096)
	rng := rand.New(rand.NewSource(1))
	for i := range values {
		values[i] = fmt.Sprint(rng.Intn(2048))
	}

	for _, size := range []int{16, 256, 4096} {
		b.Run(fmt.Sprint(size), func(b *testing.B) {
			enc, err := encode.NewCachedWriter[string](io.Discard, encode.NewStringWriter(io.Discard), cache.New[string](size))
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := enc.Serialize(&values[i%len(values)]); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
