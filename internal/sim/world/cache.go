package world

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"stonehollow.dev/internal/sim/encoding"
)

// chunkCache preserves the block state of modified chunks across
// unload/reload cycles within a session. Entries are zstd-compressed RLE
// block arrays; lifetime is unbounded until the region reloads. Owned and
// mutated exclusively by the world loop goroutine.
type chunkCache struct {
	entries map[ChunkKey][]byte
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

func newChunkCache() (*chunkCache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("chunk cache encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("chunk cache decoder: %w", err)
	}
	return &chunkCache{
		entries: map[ChunkKey][]byte{},
		enc:     enc,
		dec:     dec,
	}, nil
}

func (cc *chunkCache) store(key ChunkKey, blocks []uint16) {
	cc.entries[key] = cc.enc.EncodeAll(encoding.EncodeRLE(blocks), nil)
}

// take removes and decodes the cached entry for key, if any.
func (cc *chunkCache) take(key ChunkKey) ([]uint16, bool) {
	comp, ok := cc.entries[key]
	if !ok {
		return nil, false
	}
	delete(cc.entries, key)

	raw, err := cc.dec.DecodeAll(comp, nil)
	if err != nil {
		// A corrupt entry regenerates from the seed instead.
		return nil, false
	}
	blocks, err := encoding.DecodeRLE(raw, Size*Size*Size)
	if err != nil {
		return nil, false
	}
	return blocks, true
}

func (cc *chunkCache) has(key ChunkKey) bool {
	_, ok := cc.entries[key]
	return ok
}

func (cc *chunkCache) len() int { return len(cc.entries) }
