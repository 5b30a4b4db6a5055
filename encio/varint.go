package encio

import (
	"encoding/binary"
	"io"
	"math/bits"
)

// The datapack variable-length integer format.
//
// The first byte starts with a unary length prefix; k leading one bits followed by a zero bit mean k more bytes follow,
// for a total of i = k+1 bytes (k in 0..7). The remaining 8-i bits of the first byte and all following bytes hold 7*i bits of data,
// most significant first. Signed values are sign-extended from 7*i bits. A first byte of 0xFF is followed by 8 raw bytes holding the full
// 64 bits.
//
// One single-byte pattern on each side is reserved for null:
//
//	signed:   0x40, which would otherwise be -64
//	unsigned: 0x7F, which would otherwise be 127
//
// so those values always take two bytes.
const (
	// SignedNull is the single-byte encoding of a null signed integer.
	SignedNull byte = 0x40

	// UnsignedNull is the single-byte encoding of a null unsigned integer.
	UnsignedNull byte = 0x7F

	// MaxVarintLen is the longest encoding of any 64-bit integer.
	MaxVarintLen = 9

	fullPrefix byte = 0xFF
)

// SignedLen returns the number of bytes AppendSigned uses to encode v.
func SignedLen(v int64) int {
	i := 1
	if v <= -64 {
		i = 2 // -64 in one byte is SignedNull
	}
	for ; i <= 8; i++ {
		shift := 64 - 7*i
		if (v<<shift)>>shift == v {
			return i
		}
	}
	return MaxVarintLen
}

// UnsignedLen returns the number of bytes AppendUnsigned uses to encode v.
func UnsignedLen(v uint64) int {
	i := 1
	if v >= 127 {
		i = 2 // 127 in one byte is UnsignedNull
	}
	for ; i <= 8; i++ {
		if v>>(7*i) == 0 {
			return i
		}
	}
	return MaxVarintLen
}

// AppendSigned appends the minimal encoding of v to b.
func AppendSigned(b []byte, v int64) []byte {
	return appendVarint(b, uint64(v), SignedLen(v))
}

// AppendSignedNull appends the signed null encoding to b.
func AppendSignedNull(b []byte) []byte {
	return append(b, SignedNull)
}

// AppendUnsigned appends the minimal encoding of v to b.
func AppendUnsigned(b []byte, v uint64) []byte {
	return appendVarint(b, v, UnsignedLen(v))
}

// AppendUnsignedNull appends the unsigned null encoding to b.
func AppendUnsignedNull(b []byte) []byte {
	return append(b, UnsignedNull)
}

// appendVarint writes the low 7*i bits of u with an i byte prefix, or the 9 byte form if i is MaxVarintLen.
func appendVarint(b []byte, u uint64, i int) []byte {
	if i == MaxVarintLen {
		b = append(b, fullPrefix)
		return binary.BigEndian.AppendUint64(b, u)
	}

	prefix := byte(uint(0xFF00) >> (i - 1))
	mask := byte(0xFF) >> i
	b = append(b, prefix|byte(u>>(8*(i-1)))&mask)
	for j := i - 2; j >= 0; j-- {
		b = append(b, byte(u>>(8*j)))
	}
	return b
}

// Varint provides methods for reading and writing datapack variable-length integers.
// It is a scratch buffer; the zero value is ready to use, and it must not be shared between goroutines.
type Varint [MaxVarintLen]byte

// EncodeSigned writes v to w.
func (buff *Varint) EncodeSigned(w io.Writer, v int64) error {
	return Write(AppendSigned(buff[:0], v), w)
}

// EncodeSignedNull writes a null signed integer to w.
func (buff *Varint) EncodeSignedNull(w io.Writer) error {
	return Write(AppendSignedNull(buff[:0]), w)
}

// EncodeUnsigned writes v to w.
func (buff *Varint) EncodeUnsigned(w io.Writer, v uint64) error {
	return Write(AppendUnsigned(buff[:0], v), w)
}

// EncodeUnsignedNull writes a null unsigned integer to w.
func (buff *Varint) EncodeUnsignedNull(w io.Writer) error {
	return Write(AppendUnsignedNull(buff[:0]), w)
}

// DecodeSigned reads a signed integer from r.
// ok is false if the encoded value was null.
// If r is already exhausted io.EOF is returned; if it ends inside the integer the error wraps io.ErrUnexpectedEOF.
func (buff *Varint) DecodeSigned(r io.Reader) (v int64, ok bool, err error) {
	if err := Read(buff[:1], r); err != nil {
		return 0, false, err
	}
	if buff[0] == SignedNull {
		return 0, false, nil
	}

	u, n, err := buff.decodeTail(r)
	if err != nil {
		return 0, false, err
	}
	if n == MaxVarintLen {
		return int64(u), true, nil
	}

	shift := 64 - 7*n
	return int64(u<<shift) >> shift, true, nil
}

// DecodeUnsigned reads an unsigned integer from r.
// ok is false if the encoded value was null.
// If r is already exhausted io.EOF is returned; if it ends inside the integer the error wraps io.ErrUnexpectedEOF.
func (buff *Varint) DecodeUnsigned(r io.Reader) (v uint64, ok bool, err error) {
	if err := Read(buff[:1], r); err != nil {
		return 0, false, err
	}
	if buff[0] == UnsignedNull {
		return 0, false, nil
	}

	u, _, err := buff.decodeTail(r)
	if err != nil {
		return 0, false, err
	}
	return u, true, nil
}

// decodeTail reads the bytes announced by the prefix in buff[0], returning the unextended data bits and the total encoded length.
func (buff *Varint) decodeTail(r io.Reader) (uint64, int, error) {
	k := bits.LeadingZeros8(^buff[0])
	if k == 8 {
		if err := ReadFull(buff[1:MaxVarintLen], r); err != nil {
			return 0, 0, err
		}
		return binary.BigEndian.Uint64(buff[1:MaxVarintLen]), MaxVarintLen, nil
	}

	u := uint64(buff[0] & (0xFF >> (k + 1)))
	if k > 0 {
		if err := ReadFull(buff[1:k+1], r); err != nil {
			return 0, 0, err
		}
		for _, b := range buff[1 : k+1] {
			u = u<<8 | uint64(b)
		}
	}
	return u, k + 1, nil
}
