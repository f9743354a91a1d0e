// Package ws implements the minimal server side of RFC 6455 by hand:
// the upgrade handshake and outbound text framing. The transport is
// push-only; inbound frames (client messages, ping/pong, close,
// fragmentation) are never parsed.
package ws

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
)

// acceptGUID is the fixed magic GUID from RFC 6455 §1.3.
const acceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// finText is byte0 of every frame we send: FIN=1, opcode=text.
const finText = 0x81

// AcceptKey derives the Sec-WebSocket-Accept token for a client key:
// SHA-1 over key+GUID, base64-encoded. Pure function of the key.
func AcceptKey(clientKey string) string {
	sum := sha1.Sum([]byte(clientKey + acceptGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// EncodeTextFrame wraps payload in a single final unmasked text frame.
// Header size depends on payload length: 2 bytes below 126, 4 bytes
// with a 16-bit big-endian length below 65536, 10 bytes with a 64-bit
// big-endian length above. Server-to-client frames carry no mask.
func EncodeTextFrame(payload []byte) []byte {
	n := len(payload)

	var frame []byte
	switch {
	case n < 126:
		frame = make([]byte, 2, 2+n)
		frame[0] = finText
		frame[1] = byte(n)
	case n < 65536:
		frame = make([]byte, 4, 4+n)
		frame[0] = finText
		frame[1] = 126
		binary.BigEndian.PutUint16(frame[2:4], uint16(n))
	default:
		frame = make([]byte, 10, 10+n)
		frame[0] = finText
		frame[1] = 127
		binary.BigEndian.PutUint64(frame[2:10], uint64(n))
	}

	return append(frame, payload...)
}
