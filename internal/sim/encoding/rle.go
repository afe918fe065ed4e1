package encoding

import (
	"encoding/binary"
	"fmt"
)

// EncodeRLE encodes a block id sequence as (id, run_len) varint pairs.
// Terrain chunks are run-heavy, so this typically shrinks a dense array by
// an order of magnitude before any general-purpose compressor sees it.
func EncodeRLE(ids []uint16) []byte {
	out := make([]byte, 0, 64)
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(ids) {
		b := ids[i]
		run := 1
		for j := i + 1; j < len(ids) && ids[j] == b; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(b))
		out = append(out, tmp[:n]...)
		n = binary.PutUvarint(tmp[:], uint64(run))
		out = append(out, tmp[:n]...)

		i += run
	}
	return out
}

// DecodeRLE expands an encoded sequence. want is the expected id count; a
// mismatch means the payload is truncated or padded and is an error.
func DecodeRLE(raw []byte, want int) ([]uint16, error) {
	out := make([]uint16, 0, want)
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("block id too large: %d", b)
		}
		if int(run) > want-len(out) {
			return nil, fmt.Errorf("run overflows expected length %d", want)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, uint16(b))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("decoded %d ids, want %d", len(out), want)
	}
	return out, nil
}
