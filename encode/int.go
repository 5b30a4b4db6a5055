package encode

import (
	"io"

	"github.com/gron1987/entity-array-compressor/encio"
)

// NewSignedWriter returns a Serializer writing nullable signed integers to w.
func NewSignedWriter(w io.Writer) *SignedWriter {
	return &SignedWriter{w: w}
}

// SignedWriter is a Serializer for nullable signed integers.
type SignedWriter struct {
	w    io.Writer
	buff encio.Varint
}

// Serialize implements Serializer.
func (e *SignedWriter) Serialize(v *int64) error {
	if v == nil {
		return e.buff.EncodeSignedNull(e.w)
	}
	return e.buff.EncodeSigned(e.w, *v)
}

// NewSignedReader returns a Deserializer reading nullable signed integers from r.
func NewSignedReader(r io.Reader) *SignedReader {
	return &SignedReader{r: r}
}

// SignedReader is a Deserializer for nullable signed integers.
type SignedReader struct {
	r    io.Reader
	buff encio.Varint
}

// Deserialize implements Deserializer.
func (d *SignedReader) Deserialize() (*int64, error) {
	v, ok, err := d.buff.DecodeSigned(d.r)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// NewUnsignedWriter returns a Serializer writing nullable unsigned integers to w.
func NewUnsignedWriter(w io.Writer) *UnsignedWriter {
	return &UnsignedWriter{w: w}
}

// UnsignedWriter is a Serializer for nullable unsigned integers.
type UnsignedWriter struct {
	w    io.Writer
	buff encio.Varint
}

// Serialize implements Serializer.
func (e *UnsignedWriter) Serialize(v *uint64) error {
	if v == nil {
		return e.buff.EncodeUnsignedNull(e.w)
	}
	return e.buff.EncodeUnsigned(e.w, *v)
}

// NewUnsignedReader returns a Deserializer reading nullable unsigned integers from r.
func NewUnsignedReader(r io.Reader) *UnsignedReader {
	return &UnsignedReader{r: r}
}

// UnsignedReader is a Deserializer for nullable unsigned integers.
type UnsignedReader struct {
	r    io.Reader
	buff encio.Varint
}

// Deserialize implements Deserializer.
func (d *UnsignedReader) Deserialize() (*uint64, error) {
	v, ok, err := d.buff.DecodeUnsigned(d.r)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}
