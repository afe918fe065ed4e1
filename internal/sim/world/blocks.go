package world

import "stonehollow.dev/internal/sim/world/logic/mathx"

type Vec3i struct {
	X, Y, Z int
}

// ChunkKeyFor maps a world coordinate to its chunk via floor division.
func ChunkKeyFor(p Vec3i) ChunkKey {
	return ChunkKey{
		CX: mathx.FloorDiv(p.X, Size),
		CY: mathx.FloorDiv(p.Y, Size),
		CZ: mathx.FloorDiv(p.Z, Size),
	}
}

// LocalFor maps a world coordinate to local coordinates in [0, Size), exact
// for negative inputs.
func LocalFor(p Vec3i) (lx, ly, lz int) {
	return mathx.Mod(p.X, Size), mathx.Mod(p.Y, Size), mathx.Mod(p.Z, Size)
}

// GetBlock returns the block at a world coordinate, or air when the owning
// chunk is not loaded.
func (w *World) GetBlock(p Vec3i) uint16 {
	ch, ok := w.chunks[ChunkKeyFor(p)]
	if !ok {
		return 0
	}
	lx, ly, lz := LocalFor(p)
	return ch.Get(lx, ly, lz)
}

// BlockAt adapts GetBlock to the pathfinder's BlockSource interface.
func (w *World) BlockAt(x, y, z int) uint16 {
	return w.GetBlock(Vec3i{x, y, z})
}

// SetBlock writes a block if its chunk is loaded and reports whether the
// write landed. It does not schedule a mesh refresh; that is the caller's
// contract.
func (w *World) SetBlock(p Vec3i, b uint16) bool {
	ch, ok := w.chunks[ChunkKeyFor(p)]
	if !ok {
		return false
	}
	lx, ly, lz := LocalFor(p)
	ch.Set(lx, ly, lz, b)
	return true
}

// ChunkAt returns the loaded chunk at key, if any.
func (w *World) ChunkAt(key ChunkKey) (*Chunk, bool) {
	ch, ok := w.chunks[key]
	return ch, ok
}

// LoadedChunkCount reports the grid size; loop-goroutine only.
func (w *World) LoadedChunkCount() int { return len(w.chunks) }
