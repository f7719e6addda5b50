// Package varint implements the prefix-tagged variable length integer used by
// the Mumble voice datagram format.
//
// The first byte selects the width:
//
//	0xxxxxxx                  7-bit value
//	10xxxxxx + 1 byte         14-bit value
//	110xxxxx + 2 bytes        21-bit value
//	1110xxxx + 3 bytes        28-bit value
//	111100__ + 4 bytes        32-bit value
//	111101__ + 8 bytes        64-bit value
//	111110__ + varint         bitwise complement of the following varint
//	111111xx                  bitwise complement of xx (-1 to -4)
//
// All multi-byte values are big-endian. The encoder only uses the negative forms
// for values with the sign bit set whose complement fits in 32 bits; any other
// value goes out in the positive forms, which keeps the output compatible with
// existing Mumble implementations.
package varint
