// Package checksum provides the CRC8 integrity check used on every frame.
package checksum

import "github.com/sigurn/crc8"

// GeneratorPoly is the CRC8 generator polynomial.
const GeneratorPoly = 0xA6

// Params describes the CRC8 variant: MSB first, zero initial value and no
// final xor, so a run followed by its own CRC checks to zero.
var Params = crc8.Params{
	Poly:   GeneratorPoly,
	Init:   0x00,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x00,
	Check:  0x62,
	Name:   "CRC-8/SIMPLESERIAL",
}

var table = crc8.MakeTable(Params)

// CRC8 computes the checksum over data.
func CRC8(data []byte) byte {
	return crc8.Checksum(data, table)
}

// Valid reports whether data ends with the CRC8 of the bytes before it.
// Leading zero bytes do not change the result.
func Valid(data []byte) bool {
	return CRC8(data) == 0
}
