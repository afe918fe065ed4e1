package world

import (
	"crypto/sha256"
	"encoding/binary"
)

// Size is the chunk edge length in blocks.
const Size = 16

// ChunkKey identifies a chunk in the global grid.
type ChunkKey struct {
	CX int
	CY int
	CZ int
}

// Chunk is a 16^3 dense block volume. Accessed only from the world loop
// goroutine once attached to the grid.
type Chunk struct {
	Key    ChunkKey
	Blocks []uint16 // len = 16*16*16; x fastest, then z, then y

	modified bool
}

func NewChunk(key ChunkKey) *Chunk {
	return &Chunk{
		Key:    key,
		Blocks: make([]uint16, Size*Size*Size),
	}
}

func index(lx, ly, lz int) int {
	return lx + lz*Size + ly*Size*Size
}

func inRange(lx, ly, lz int) bool {
	return lx >= 0 && lx < Size && ly >= 0 && ly < Size && lz >= 0 && lz < Size
}

// Get returns air for out-of-range local coordinates so face and clearance
// checks at chunk boundaries need no special cases.
func (c *Chunk) Get(lx, ly, lz int) uint16 {
	if !inRange(lx, ly, lz) {
		return 0
	}
	return c.Blocks[index(lx, ly, lz)]
}

// Set writes a block and marks the chunk modified when the value changes.
// Out-of-range coordinates are ignored.
func (c *Chunk) Set(lx, ly, lz int, b uint16) {
	if !inRange(lx, ly, lz) {
		return
	}
	i := index(lx, ly, lz)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.modified = true
}

// Modified reports whether the chunk diverged from its generated state and
// must be cached instead of discarded on unload.
func (c *Chunk) Modified() bool { return c.modified }

func (c *Chunk) markModified() { c.modified = true }

// ExportBlocks returns a copy of the dense block array.
func (c *Chunk) ExportBlocks() []uint16 {
	out := make([]uint16, len(c.Blocks))
	copy(out, c.Blocks)
	return out
}

// ImportBlocks bulk-replaces the block array without touching the modified
// flag; used only for generator and cache population.
func (c *Chunk) ImportBlocks(blocks []uint16) {
	if len(blocks) != Size*Size*Size {
		return
	}
	copy(c.Blocks, blocks)
}

// Digest hashes the block array deterministically; used to verify cache
// round-trips.
func (c *Chunk) Digest() [32]byte {
	h := sha256.New()
	var tmp [2]byte
	for _, v := range c.Blocks {
		binary.LittleEndian.PutUint16(tmp[:], v)
		h.Write(tmp[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
