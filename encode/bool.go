package encode

import (
	"fmt"
	"io"

	"github.com/gron1987/entity-array-compressor/encio"
)

// NewBoolWriter returns a Serializer writing nullable bools to w as the unsigned integers 0 and 1.
func NewBoolWriter(w io.Writer) *BoolWriter {
	return &BoolWriter{w: w}
}

// BoolWriter is a Serializer for nullable bools.
type BoolWriter struct {
	w    io.Writer
	buff encio.Varint
}

// Serialize implements Serializer.
func (e *BoolWriter) Serialize(v *bool) error {
	switch {
	case v == nil:
		return e.buff.EncodeUnsignedNull(e.w)
	case *v:
		return e.buff.EncodeUnsigned(e.w, 1)
	default:
		return e.buff.EncodeUnsigned(e.w, 0)
	}
}

// NewBoolReader returns a Deserializer reading nullable bools from r.
func NewBoolReader(r io.Reader) *BoolReader {
	return &BoolReader{r: r}
}

// BoolReader is a Deserializer for nullable bools.
type BoolReader struct {
	r    io.Reader
	buff encio.Varint
}

// Deserialize implements Deserializer.
func (d *BoolReader) Deserialize() (*bool, error) {
	u, ok, err := d.buff.DecodeUnsigned(d.r)
	if err != nil || !ok {
		return nil, err
	}
	if u > 1 {
		return nil, encio.NewError(encio.ErrMalformed, fmt.Sprintf("bool encoded as %v", u), 0)
	}
	v := u == 1
	return &v, nil
}
