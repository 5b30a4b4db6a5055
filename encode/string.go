package encode

import (
	"fmt"
	"io"

	"github.com/gron1987/entity-array-compressor/encio"
)

// NewStringWriter returns a Serializer writing nullable strings to w.
// A string is its byte length as an unsigned integer, null for a nil string, followed by its bytes.
func NewStringWriter(w io.Writer) *StringWriter {
	return &StringWriter{w: w}
}

// StringWriter is a Serializer for nullable strings.
type StringWriter struct {
	w    io.Writer
	buff encio.Varint
}

// Serialize implements Serializer.
func (e *StringWriter) Serialize(v *string) error {
	if v == nil {
		return e.buff.EncodeUnsignedNull(e.w)
	}
	if err := e.buff.EncodeUnsigned(e.w, uint64(len(*v))); err != nil {
		return err
	}
	if len(*v) == 0 {
		return nil
	}
	_, err := io.WriteString(e.w, *v)
	if err != nil {
		return encio.NewIOError(err, e.w, "", 0)
	}
	return nil
}

// NewStringReader returns a Deserializer reading nullable strings from r.
func NewStringReader(r io.Reader) *StringReader {
	return &StringReader{r: r}
}

// StringReader is a Deserializer for nullable strings.
type StringReader struct {
	r    io.Reader
	buff encio.Varint
	str  []byte
}

// Deserialize implements Deserializer.
func (d *StringReader) Deserialize() (*string, error) {
	l, ok, err := d.buff.DecodeUnsigned(d.r)
	if err != nil || !ok {
		return nil, err
	}
	if l > encio.TooBig {
		return nil, encio.NewIOError(encio.ErrMalformed, d.r, fmt.Sprintf("string length of %v is too big", l), 0)
	}

	if uint64(cap(d.str)) < l {
		d.str = make([]byte, l)
	}
	d.str = d.str[:l]
	if err := encio.ReadFull(d.str, d.r); err != nil {
		return nil, err
	}

	v := string(d.str)
	return &v, nil
}
