// Package cobs implements Consistent Overhead Byte Stuffing with 0x00 as
// the frame delimiter.
//
// Both directions work on caller provided buffers so a frame can be encoded
// and decoded without allocating.
package cobs

// Delimiter is the byte which never appears in stuffed output.
const Delimiter byte = 0x00

// maxBlock is the largest code byte, a block of 254 non-zero bytes.
const maxBlock = 0xff

// MaxEncodedLen returns the worst case stuffed size of n bytes.
func MaxEncodedLen(n int) int {
	return n + n/(maxBlock-1) + 1
}

// Stuff encodes src into dst and returns the number of bytes written.
// dst must hold at least MaxEncodedLen(len(src)) bytes. The delimiter is
// not appended.
func Stuff(dst, src []byte) int {
	codeAt, n, code := 0, 1, byte(1)
	for _, b := range src {
		if b == Delimiter {
			dst[codeAt] = code
			codeAt, code = n, 1
			n++
			continue
		}
		dst[n] = b
		n++
		if code++; code == maxBlock {
			dst[codeAt] = code
			codeAt, code = n, 1
			n++
		}
	}
	dst[codeAt] = code
	return n
}

// Unstuff decodes src into dst and returns the number of bytes written.
// Decoding stops at the first delimiter or at the end of src, whichever
// comes first. A code byte pointing past the available input truncates the
// output rather than failing; dst bounds the output in every case.
func Unstuff(dst, src []byte) int {
	n := 0
	for i := 0; i < len(src); {
		code := int(src[i])
		if code == int(Delimiter) {
			break
		}
		i++
		for j := 1; j < code; j++ {
			if i >= len(src) || src[i] == Delimiter || n >= len(dst) {
				return n
			}
			dst[n] = src[i]
			n++
			i++
		}
		if code < maxBlock && i < len(src) && src[i] != Delimiter {
			if n >= len(dst) {
				return n
			}
			dst[n] = Delimiter
			n++
		}
	}
	return n
}
