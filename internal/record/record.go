// Package record implements the length-prefixed key/value frame shared by
// the write-ahead log and segment files:
//
//	u32_be key_len ‖ key_bytes ‖ u32_be value_len ‖ value_bytes
//
// No header, no footer, no padding — a frame is exactly 8+len(key)+len(value)
// bytes. Decode never copies past the bytes it was given, so a truncated
// frame is always reported rather than read out of bounds.
package record

import (
	"encoding/binary"
	"errors"
)

// ErrTruncatedFrame is returned when a buffer ends before a full frame could
// be decoded from it.
var ErrTruncatedFrame = errors.New("record: truncated frame")

const frameHeaderSize = 4

// Pair is a decoded key/value record.
type Pair struct {
	Key   []byte
	Value []byte
}

// Iterator yields Pairs in some defined order (ascending key order, for
// every iterator this engine constructs). Next returns ok=false once
// exhausted; err is non-nil only if a frame could not be decoded.
type Iterator interface {
	Next() (Pair, bool, error)
}

// Encode serializes a single key/value pair into its on-disk frame. A zero
// length key is accepted, here and by the engine's Put, and Decode reads one
// back; the codec must be able to decode one on read for forward
// compatibility (spec §4.1).
func Encode(key, value []byte) []byte {
	buf := make([]byte, frameHeaderSize+len(key)+frameHeaderSize+len(value))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(key)))
	off := frameHeaderSize
	copy(buf[off:off+len(key)], key)
	off += len(key)
	binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(value)))
	off += frameHeaderSize
	copy(buf[off:], value)
	return buf
}

// Decode decodes a single frame from the front of buf, returning the pair
// and the number of bytes consumed. It returns ErrTruncatedFrame if buf ends
// mid-field rather than reading past the end of buf.
func Decode(buf []byte) (Pair, int, error) {
	if len(buf) < frameHeaderSize {
		return Pair{}, 0, ErrTruncatedFrame
	}
	keyLen := int(binary.BigEndian.Uint32(buf[0:4]))
	off := frameHeaderSize + keyLen
	if off > len(buf) {
		return Pair{}, 0, ErrTruncatedFrame
	}
	key := buf[frameHeaderSize:off]

	if off+frameHeaderSize > len(buf) {
		return Pair{}, 0, ErrTruncatedFrame
	}
	valLen := int(binary.BigEndian.Uint32(buf[off : off+frameHeaderSize]))
	off += frameHeaderSize
	valEnd := off + valLen
	if valEnd > len(buf) {
		return Pair{}, 0, ErrTruncatedFrame
	}
	value := buf[off:valEnd]

	return Pair{Key: key, Value: value}, valEnd, nil
}
