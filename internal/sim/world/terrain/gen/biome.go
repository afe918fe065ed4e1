package gen

import "stonehollow.dev/internal/sim/world/block"

// Biome carries the surface palette and height-shaping multipliers for one
// climate band.
type Biome struct {
	Name string

	Surface    uint16
	Subsurface uint16
	Underwater uint16

	HeightOffset float64
	Amplitude    float64
	DetailScale  float64
}

var (
	biomePlains = Biome{
		Name:       "PLAINS",
		Surface:    block.Grass,
		Subsurface: block.Dirt,
		Underwater: block.Gravel,
		Amplitude:  1.0, DetailScale: 1.0,
	}
	biomeForest = Biome{
		Name:       "FOREST",
		Surface:    block.Grass,
		Subsurface: block.Dirt,
		Underwater: block.Gravel,
		HeightOffset: 2, Amplitude: 1.1, DetailScale: 1.2,
	}
	biomeDesert = Biome{
		Name:       "DESERT",
		Surface:    block.Sand,
		Subsurface: block.Sandstone,
		Underwater: block.Sand,
		Amplitude:  0.85, DetailScale: 0.8,
	}
	biomeMountains = Biome{
		Name:       "MOUNTAINS",
		Surface:    block.Stone,
		Subsurface: block.Stone,
		Underwater: block.Gravel,
		HeightOffset: 14, Amplitude: 1.8, DetailScale: 1.5,
	}
	biomeTundra = Biome{
		Name:       "TUNDRA",
		Surface:    block.Snow,
		Subsurface: block.Dirt,
		Underwater: block.Gravel,
		HeightOffset: 4, Amplitude: 1.0, DetailScale: 0.9,
	}
)

// BiomeAt maps temperature/moisture fields sampled at continent scale through
// a fixed table. Pure function of the seed and world XZ.
func (g *Generator) BiomeAt(wx, wz int) Biome {
	x := float64(wx)
	z := float64(wz)

	temp := g.temp.Fractal2(x/512, z/512, 4, 0.5)
	moist := g.moist.Fractal2(x/512+100, z/512+100, 4, 0.5)
	rough := g.rough.Noise2(x/768, z/768)

	switch {
	case rough > 0.52:
		return biomeMountains
	case temp < -0.35:
		return biomeTundra
	case temp > 0.3 && moist < -0.05:
		return biomeDesert
	case moist > 0.2:
		return biomeForest
	default:
		return biomePlains
	}
}
