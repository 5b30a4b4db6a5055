package encio_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/gron1987/entity-array-compressor/encio"
)

var signedCases = []int64{
	0, 1, -1, 2, -2,
	62, 63, 64, -63, -64, -65,
	127, 128, -128, -129,
	1<<13 - 1, 1 << 13, -1 << 13, -1<<13 - 1,
	1<<20 - 1, 1 << 20, -1 << 20, -1<<20 - 1,
	1<<27 - 1, 1 << 27, -1 << 27, -1<<27 - 1,
	1<<34 - 1, 1 << 34, -1 << 34, -1<<34 - 1,
	1<<41 - 1, 1 << 41, -1 << 41, -1<<41 - 1,
	1<<48 - 1, 1 << 48, -1 << 48, -1<<48 - 1,
	1<<55 - 1, 1 << 55, -1 << 55, -1<<55 - 1,
	math.MaxInt64, math.MinInt64, math.MaxInt64 - 1, math.MinInt64 + 1,
}

var unsignedCases = []uint64{
	0, 1, 2, 63, 64, 125, 126, 127, 128, 255, 256,
	1<<14 - 1, 1 << 14,
	1<<21 - 1, 1 << 21,
	1<<28 - 1, 1 << 28,
	1<<35 - 1, 1 << 35,
	1<<42 - 1, 1 << 42,
	1<<49 - 1, 1 << 49,
	1<<56 - 1, 1 << 56,
	1<<63 - 1, 1 << 63, math.MaxUint64,
}

func TestSignedRoundTrip(t *testing.T) {
	var enc, dec encio.Varint

	for _, tC := range signedCases {
		t.Run(fmt.Sprint(tC), func(t *testing.T) {
			buff := new(bytes.Buffer)

			if err := enc.EncodeSigned(buff, tC); err != nil {
				t.Fatal(err)
			}

			td.Cmp(t, buff.Len(), encio.SignedLen(tC), "encoded length")

			n, ok, err := dec.DecodeSigned(buff)
			td.CmpNoError(t, err)
			td.CmpTrue(t, ok)
			td.Cmp(t, n, tC)

			if buff.Len() != 0 {
				t.Fatalf("data remaining in buffer %v", buff.Bytes())
			}
		})
	}
}

func TestUnsignedRoundTrip(t *testing.T) {
	var enc, dec encio.Varint

	for _, tC := range unsignedCases {
		t.Run(fmt.Sprint(tC), func(t *testing.T) {
			buff := new(bytes.Buffer)

			if err := enc.EncodeUnsigned(buff, tC); err != nil {
				t.Fatal(err)
			}

			td.Cmp(t, buff.Len(), encio.UnsignedLen(tC), "encoded length")

			n, ok, err := dec.DecodeUnsigned(buff)
			td.CmpNoError(t, err)
			td.CmpTrue(t, ok)
			td.Cmp(t, n, tC)

			if buff.Len() != 0 {
				t.Fatalf("data remaining in buffer %v", buff.Bytes())
			}
		})
	}
}

func TestVarintWireFormat(t *testing.T) {
	testCases := []struct {
		desc string
		got  []byte
		want []byte
	}{
		{desc: "signed null", got: encio.AppendSignedNull(nil), want: []byte{0x40}},
		{desc: "unsigned null", got: encio.AppendUnsignedNull(nil), want: []byte{0x7F}},
		{desc: "signed 0", got: encio.AppendSigned(nil, 0), want: []byte{0x00}},
		{desc: "signed 63", got: encio.AppendSigned(nil, 63), want: []byte{0x3F}},
		{desc: "signed -1", got: encio.AppendSigned(nil, -1), want: []byte{0x7F}},
		{desc: "signed -63", got: encio.AppendSigned(nil, -63), want: []byte{0x41}},
		{desc: "signed -64", got: encio.AppendSigned(nil, -64), want: []byte{0xBF, 0xC0}},
		{desc: "signed 64", got: encio.AppendSigned(nil, 64), want: []byte{0x80, 0x40}},
		{desc: "signed min", got: encio.AppendSigned(nil, math.MinInt64), want: []byte{0xFF, 0x80, 0, 0, 0, 0, 0, 0, 0}},
		{desc: "unsigned 126", got: encio.AppendUnsigned(nil, 126), want: []byte{0x7E}},
		{desc: "unsigned 127", got: encio.AppendUnsigned(nil, 127), want: []byte{0x80, 0x7F}},
		{desc: "unsigned 300", got: encio.AppendUnsigned(nil, 300), want: []byte{0x81, 0x2C}},
		{desc: "unsigned 1<<14", got: encio.AppendUnsigned(nil, 1<<14), want: []byte{0xC0, 0x40, 0x00}},
		{desc: "unsigned 1<<56 - 1", got: encio.AppendUnsigned(nil, 1<<56-1), want: []byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{desc: "unsigned max", got: encio.AppendUnsigned(nil, math.MaxUint64), want: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			td.Cmp(t, tC.got, tC.want)
		})
	}
}

func TestVarintNull(t *testing.T) {
	var v encio.Varint
	buff := new(bytes.Buffer)

	td.CmpNoError(t, v.EncodeSignedNull(buff))
	td.CmpNoError(t, v.EncodeUnsignedNull(buff))
	td.Cmp(t, buff.Bytes(), []byte{0x40, 0x7F})

	_, ok, err := v.DecodeSigned(buff)
	td.CmpNoError(t, err)
	td.CmpFalse(t, ok)

	_, ok, err = v.DecodeUnsigned(buff)
	td.CmpNoError(t, err)
	td.CmpFalse(t, ok)
}

// TestVarintMinimal checks that no shorter prefix form could hold the value.
func TestVarintMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(256))

	for i := 0; i < 100000; i++ {
		v := rng.Int63() >> uint(rng.Intn(63))
		if rng.Intn(2) == 0 {
			v = -v
		}

		n := encio.SignedLen(v)
		for j := 1; j < n && j <= 8; j++ {
			shift := 64 - 7*j
			fits := (v<<shift)>>shift == v && !(j == 1 && v == -64)
			if fits {
				t.Fatalf("%v encoded in %v bytes, but fits in %v", v, n, j)
			}
		}

		u := uint64(rng.Int63()) >> uint(rng.Intn(63))
		n = encio.UnsignedLen(u)
		for j := 1; j < n && j <= 8; j++ {
			if u>>(7*j) == 0 && !(j == 1 && u == 127) {
				t.Fatalf("%v encoded in %v bytes, but fits in %v", u, n, j)
			}
		}
	}
}

func TestVarintRandomStream(t *testing.T) {
	rng := rand.New(rand.NewSource(1024))
	buff := new(encio.Buffer)
	var enc, dec encio.Varint

	signed := make([]int64, 5000)
	unsigned := make([]uint64, len(signed))
	for i := range signed {
		signed[i] = rng.Int63() >> uint(rng.Intn(63))
		if rng.Intn(2) == 0 {
			signed[i] = -signed[i]
		}
		unsigned[i] = rng.Uint64() >> uint(rng.Intn(64))

		td.CmpNoError(t, enc.EncodeSigned(buff, signed[i]))
		td.CmpNoError(t, enc.EncodeUnsigned(buff, unsigned[i]))
	}

	for i := range signed {
		s, ok, err := dec.DecodeSigned(buff)
		if err != nil || !ok || s != signed[i] {
			t.Fatalf("signed %v: got %v, %v, %v", signed[i], s, ok, err)
		}
		u, ok, err := dec.DecodeUnsigned(buff)
		if err != nil || !ok || u != unsigned[i] {
			t.Fatalf("unsigned %v: got %v, %v, %v", unsigned[i], u, ok, err)
		}
	}

	_, _, err := dec.DecodeSigned(buff)
	td.Cmp(t, err, io.EOF)
}

func TestVarintTruncated(t *testing.T) {
	var v encio.Varint

	for _, tC := range []int64{64, -65, 1 << 40, math.MinInt64} {
		t.Run(fmt.Sprint(tC), func(t *testing.T) {
			encoded := encio.AppendSigned(nil, tC)
			for l := 1; l < len(encoded); l++ {
				_, _, err := v.DecodeSigned(bytes.NewReader(encoded[:l]))
				if !errors.Is(err, io.ErrUnexpectedEOF) {
					t.Fatalf("truncated to %v bytes: want io.ErrUnexpectedEOF, got %v", l, err)
				}
				var ioErr encio.IOError
				td.CmpTrue(t, errors.As(err, &ioErr))
			}
		})
	}

	_, _, err := v.DecodeUnsigned(bytes.NewReader(nil))
	td.Cmp(t, err, io.EOF)
}

func BenchmarkEncodeSigned(b *testing.B) {
	var v encio.Varint
	for i := 0; i < b.N; i++ {
		if err := v.EncodeSigned(io.Discard, int64(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeSigned(b *testing.B) {
	var v encio.Varint
	buff := new(encio.Buffer)
	for i := 0; i < b.N; i++ {
		if err := v.EncodeSigned(buff, int64(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := v.DecodeSigned(buff); err != nil {
			b.Fatal(err)
		}
	}
}
