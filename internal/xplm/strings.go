package xplm

import "bytes"

// Size limits of the string fields read while probing the user aircraft,
// including the terminating NUL.
const (
	AuthorSize      = 500
	DescriptionSize = 512
	ICAOSize        = 40
	TailNumberSize  = 40
	PathSize        = 512
)

// ReadString reads a NUL-terminated byte field of at most size bytes. The
// result stops at the first NUL and never exceeds size-1 bytes.
func ReadString(da DataAccess, ref DataRef, size int) string {
	if !ref.Valid() || size <= 1 {
		return ""
	}
	buf := make([]byte, size)
	n := da.GetBytes(ref, buf[:size-1], 0)
	if n < 0 {
		n = 0
	}
	if n > size-1 {
		n = size - 1
	}
	buf = buf[:n]
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}

// WriteString stores s into a byte field of size bytes, truncating to
// size-1 bytes and always writing the terminating NUL.
func WriteString(da DataAccess, ref DataRef, s string, size int) {
	if !ref.Valid() || size <= 1 {
		return
	}
	if len(s) > size-1 {
		s = s[:size-1]
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	da.SetBytes(ref, buf, 0)
}
