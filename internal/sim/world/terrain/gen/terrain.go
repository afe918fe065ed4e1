package gen

import (
	"math"

	"stonehollow.dev/internal/sim/world/block"
	"stonehollow.dev/internal/sim/world/logic/mathx"
	"stonehollow.dev/internal/sim/world/terrain/noise"
)

// Config fixes the deterministic inputs of the generator pipeline.
type Config struct {
	Seed        int64
	WorldHeight int // exclusive upper Y bound, multiple of 16
	SeaLevel    int
}

// Generator produces terrain and caves as pure functions of world
// coordinates and the seed. Safe to call from any number of goroutines.
type Generator struct {
	cfg Config

	base   *noise.Generator
	detail *noise.Generator
	temp   *noise.Generator
	moist  *noise.Generator
	rough  *noise.Generator

	caves caveFields
}

const baseHeight = 36

func New(cfg Config) *Generator {
	if cfg.WorldHeight <= 0 {
		cfg.WorldHeight = 128
	}
	if cfg.SeaLevel <= 0 {
		cfg.SeaLevel = 24
	}
	// Distinct fixed seed offsets keep every field independent while a single
	// seed reproduces the whole world.
	return &Generator{
		cfg:    cfg,
		base:   noise.New(cfg.Seed),
		detail: noise.New(cfg.Seed + 11),
		temp:   noise.New(cfg.Seed + 100),
		moist:  noise.New(cfg.Seed + 101),
		rough:  noise.New(cfg.Seed + 102),
		caves:  newCaveFields(cfg.Seed),
	}
}

func (g *Generator) Config() Config { return g.cfg }

// HeightAt returns the surface height of the column at world XZ, combining a
// low-frequency fractal base field with a higher-frequency detail field,
// shaped by the biome record.
func (g *Generator) HeightAt(wx, wz int) int {
	b := g.BiomeAt(wx, wz)
	x := float64(wx)
	z := float64(wz)

	base := g.base.Fractal2(x/256, z/256, 4, 0.5)
	detail := g.detail.Noise2(x/32, z/32)

	h := baseHeight + b.HeightOffset + base*28*b.Amplitude + detail*6*b.DetailScale
	return mathx.ClampInt(int(math.Round(h)), 1, g.cfg.WorldHeight-1)
}

// blockAt applies the column material rule for one cell given the column's
// surface height and biome.
func (g *Generator) blockAt(wy, height int, b Biome) uint16 {
	sea := g.cfg.SeaLevel
	switch {
	case wy < height-2:
		if wy <= deepstoneTopY {
			return block.Deepstone
		}
		return block.Stone
	case wy < height:
		if height <= sea+2 {
			return block.Sand
		}
		return b.Subsurface
	case wy == height:
		switch {
		case height < sea:
			return b.Underwater
		case height <= sea+1:
			return block.Sand
		default:
			return b.Surface
		}
	case wy <= sea:
		return block.Water
	default:
		return block.Air
	}
}

// GenerateChunk builds the dense block array for the 16^3 chunk at the given
// chunk coordinate: terrain columns first, then cave carving. The result is
// immutable from the generator's point of view and may be handed across
// goroutines.
func (g *Generator) GenerateChunk(cx, cy, cz int) []uint16 {
	blocks := make([]uint16, 16*16*16)
	wy0 := cy * 16

	for lz := 0; lz < 16; lz++ {
		for lx := 0; lx < 16; lx++ {
			wx := cx*16 + lx
			wz := cz*16 + lz
			height := g.HeightAt(wx, wz)
			biome := g.BiomeAt(wx, wz)

			for ly := 0; ly < 16; ly++ {
				wy := wy0 + ly
				if wy < 0 || wy >= g.cfg.WorldHeight {
					continue
				}
				b := g.blockAt(wy, height, biome)
				if block.Solid(b) && g.CarveAt(wx, wy, wz, height) {
					b = block.Air
				}
				// x fastest, then z, then y.
				blocks[lx+lz*16+ly*256] = b
			}
		}
	}
	return blocks
}
