package encio_test

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/maxatome/go-testdeep/td"

	"github.com/gron1987/entity-array-compressor/encio"
)

func randomBytes(rng *rand.Rand, maxLen int) []byte {
	buff := make([]byte, 8+rng.Intn(maxLen))
	rng.Read(buff)
	return buff
}

func TestReadWrite(t *testing.T) {
	rng := rand.New(rand.NewSource(64))
	var buff encio.Buffer

	payloads := make([][]byte, 100)
	for i := range payloads {
		payloads[i] = randomBytes(rng, 1000)
		td.CmpNoError(t, encio.Write(payloads[i], &buff))
	}

	// one byte at a time exercises the short read loop.
	r := iotest.OneByteReader(&buff)
	for _, want := range payloads {
		got := make([]byte, len(want))
		td.CmpNoError(t, encio.Read(got, r))
		td.Cmp(t, got, want)
	}

	td.Cmp(t, encio.Read(make([]byte, 1), r), io.EOF)
}

func TestReadTruncated(t *testing.T) {
	err := encio.Read(make([]byte, 4), strings.NewReader("ab"))
	td.CmpTrue(t, errors.Is(err, io.ErrUnexpectedEOF))

	var ioErr encio.IOError
	td.CmpTrue(t, errors.As(err, &ioErr))

	err = encio.ReadFull(make([]byte, 4), strings.NewReader(""))
	td.CmpTrue(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReadError(t *testing.T) {
	errBroken := errors.New("broken")
	err := encio.Read(make([]byte, 4), iotest.ErrReader(errBroken))
	td.CmpTrue(t, errors.Is(err, errBroken))
}

type shortWriter struct {
	w io.Writer
}

func (s shortWriter) Write(buff []byte) (int, error) {
	if len(buff) > 1 {
		buff = buff[:1]
	}
	return s.w.Write(buff)
}

func TestWriteShort(t *testing.T) {
	warnings := new(bytes.Buffer)
	defer func(w io.Writer) { encio.Warnings = w }(encio.Warnings)
	encio.Warnings = warnings

	out := new(bytes.Buffer)
	td.CmpNoError(t, encio.Write([]byte("hello"), shortWriter{w: out}))
	td.Cmp(t, out.String(), "hello")
	td.Cmp(t, warnings.String(), td.Contains("bad io.Writer implementation"))
}

func TestErrorWrapping(t *testing.T) {
	err := encio.NewError(encio.ErrMalformed, "bad id", 0)
	td.CmpTrue(t, errors.Is(err, encio.ErrMalformed))
	td.Cmp(t, err.Error(), td.Re(`TestErrorWrapping: malformed \(bad id\)$`))

	var encErr encio.Error
	td.CmpTrue(t, errors.As(err, &encErr))
	td.Cmp(t, encErr.Message, "bad id")

	ioErr := encio.NewIOError(io.ErrUnexpectedEOF, strings.NewReader(""), "", 0)
	td.CmpTrue(t, errors.Is(ioErr, io.ErrUnexpectedEOF))
	td.Cmp(t, ioErr.Error(), td.HasPrefix("*strings.Reader: in "))
}

func TestBuffer(t *testing.T) {
	var buff encio.Buffer
	for i := 0; i < 1000; i++ {
		td.CmpNoError(t, buff.WriteByte(byte(i)))
	}
	td.Cmp(t, buff.Len(), 1000)

	for i := 0; i < 500; i++ {
		b, err := buff.ReadByte()
		td.CmpNoError(t, err)
		td.Cmp(t, b, byte(i))
	}
	td.Cmp(t, buff.Bytes()[0], byte(500%256))

	buff.Reset()
	td.Cmp(t, buff.Len(), 0)
	_, err := buff.ReadByte()
	td.Cmp(t, err, io.EOF)
}
