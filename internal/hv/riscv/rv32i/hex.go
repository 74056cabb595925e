package rv32i

import "fmt"

// hex8 renders the low 8 bits of i as a 2-digit lowercase hex string.
func hex8(i uint32) string {
	return fmt.Sprintf("%02x", i&0xff)
}

// hex32 renders the full 32 bits of i as an 8-digit lowercase hex string.
func hex32(i uint32) string {
	return fmt.Sprintf("%08x", i)
}

// hex0x32 is hex32 with a "0x" prefix.
func hex0x32(i uint32) string {
	return "0x" + hex32(i)
}

// hex0x20 renders the low 20 bits of i as a 5-digit "0x"-prefixed string.
func hex0x20(i uint32) string {
	return fmt.Sprintf("0x%05x", i&0xfffff)
}

// hex0x12 renders the low 12 bits of i as a 3-digit "0x"-prefixed string.
func hex0x12(i uint32) string {
	return fmt.Sprintf("0x%03x", i&0xfff)
}
