package encode

import (
	"io"
	"math"
	"math/bits"

	"github.com/gron1987/entity-array-compressor/encio"
)

// Floats are written as the unsigned varint of their IEEE 754 bits with the byte order reversed.
// Common values have zero low mantissa bytes, which the reversal moves to the top where the varint drops them;
// 1.0 takes 3 bytes and 0.0 one.

// NewFloatWriter returns a Serializer writing nullable float64s to w.
func NewFloatWriter(w io.Writer) *FloatWriter {
	return &FloatWriter{w: w}
}

// FloatWriter is a Serializer for nullable float64s.
type FloatWriter struct {
	w    io.Writer
	buff encio.Varint
}

// Serialize implements Serializer.
func (e *FloatWriter) Serialize(v *float64) error {
	if v == nil {
		return e.buff.EncodeUnsignedNull(e.w)
	}
	return e.buff.EncodeUnsigned(e.w, bits.ReverseBytes64(math.Float64bits(*v)))
}

// NewFloatReader returns a Deserializer reading nullable float64s from r.
func NewFloatReader(r io.Reader) *FloatReader {
	return &FloatReader{r: r}
}

// FloatReader is a Deserializer for nullable float64s.
type FloatReader struct {
	r    io.Reader
	buff encio.Varint
}

// Deserialize implements Deserializer.
func (d *FloatReader) Deserialize() (*float64, error) {
	u, ok, err := d.buff.DecodeUnsigned(d.r)
	if err != nil || !ok {
		return nil, err
	}
	v := math.Float64frombits(bits.ReverseBytes64(u))
	return &v, nil
}
