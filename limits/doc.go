// Package limits provides centralized wire size constants and validation functions
// for the Mumble protocol. Every codec in the module checks sizes through this
// package so that a single change here adjusts the whole stack.
//
// # Size Hierarchy
//
//   - MaxVoicePayload (8191 bytes): the largest audio payload a voice datagram can
//     describe. The length field shares a 16-bit varint with the terminator flag and
//     only has 13 bits.
//
//   - MaxEncodedFrame (4000 bytes): the scratch space reserved for one encoded Opus
//     frame, the upper bound recommended by libopus.
//
//   - MaxControlPayload (8 MiB - 1): the largest control frame body accepted from the
//     wire. The header allows up to 4 GiB; anything above this limit is treated as a
//     protocol error before memory is allocated for it.
//
// # Validation Functions
//
//	if err := limits.ValidateVoicePayload(payload); err != nil {
//	    // ErrPayloadTooLarge
//	}
//
// Unlike the control payload check, an empty voice payload is valid: it is what a
// talk-spurt terminator carries.
package limits
