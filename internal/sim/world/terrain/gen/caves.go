package gen

import (
	"math"

	"stonehollow.dev/internal/sim/world/terrain/noise"
)

// Cave carving combines independent systems with OR semantics: a cell is
// emptied when any system votes to carve it. Narrow winding tunnels come from
// a pair of fields at mismatched frequencies, broad chambers from ridged
// noise gated by depth, and thin connectors from a second tight field pair.
// Periodic layer separators keep the chamber network partitioned into strata.

const (
	deepstoneTopY = 6

	floorCutoffY = 2 // never carved, regardless of every other rule

	surfaceProtectDepth = 4  // no carving shallower than this below surface
	surfaceFadeDepth    = 12 // full carving strength from this depth down

	tunnelFreqA   = 1.0 / 90
	tunnelFreqB   = 1.0 / 15 // ~1:6 ratio against field A; equal frequencies give blobs, not tubes
	tunnelYScale  = 0.5      // squash Y so tunnels run mostly horizontal
	tunnelCutoff  = 0.08

	cavernFreq     = 1.0 / 56
	cavernYScale   = 1.4
	cavernMinDepth = 12
	cavernMarginLo = 0.08 // carve margin at min depth
	cavernMarginHi = 0.22 // carve margin once fully deep
	cavernDeepRamp = 50.0

	connFreq     = 1.0 / 38
	connMinDepth = 20
	connCutoff   = 0.045

	deepAttenStart = 48.0
	deepAttenEnd   = 64.0

	sepPeriod     = 28.0
	sepPhaseFreq  = 1.0 / 48
	sepPhaseScale = 8.0
	sepShoulder   = 0.75 // cos value where separator influence begins
	sepTunnelKeep = 0.4  // tunnels keep this fraction of strength at a floor center

	entranceFreq   = 1.0 / 160
	entranceCutoff = 0.58
)

type caveFields struct {
	tunnelA *noise.Generator
	tunnelB *noise.Generator
	cavern  *noise.Generator
	connA   *noise.Generator
	connB   *noise.Generator
	phase   *noise.Generator
	entry   *noise.Generator
}

func newCaveFields(seed int64) caveFields {
	return caveFields{
		tunnelA: noise.New(seed + 300),
		tunnelB: noise.New(seed + 301),
		cavern:  noise.New(seed + 310),
		connA:   noise.New(seed + 320),
		connB:   noise.New(seed + 321),
		phase:   noise.New(seed + 330),
		entry:   noise.New(seed + 340),
	}
}

// CarveAt reports whether the cell at world coordinates should be emptied,
// given the surface height of its column. Pure and bit-stable per seed.
func (g *Generator) CarveAt(wx, wy, wz, surface int) bool {
	if wy <= floorCutoffY {
		return false
	}
	depth := surface - wy
	if depth <= 0 {
		return false
	}

	// Surface protection: fade carving in below the surface, unless this
	// column is a marked entrance (only where land sits above the sea, so the
	// sea floor stays closed).
	strength := 1.0
	if depth < surfaceFadeDepth {
		if g.isEntranceColumn(wx, wz, surface) {
			strength = 1.0
		} else if depth <= surfaceProtectDepth {
			return false
		} else {
			strength = float64(depth-surfaceProtectDepth) / float64(surfaceFadeDepth-surfaceProtectDepth)
		}
	}

	x := float64(wx)
	y := float64(wy)
	z := float64(wz)

	// Layer separators: a periodic function of Y, phase-shifted per column so
	// the floors undulate. sep is 1 at a floor center and 0 outside the
	// shoulder region.
	phase := g.caves.phase.Noise2(x*sepPhaseFreq, z*sepPhaseFreq) * sepPhaseScale
	wave := math.Cos(2 * math.Pi * (y + phase) / sepPeriod)
	sep := (wave - sepShoulder) / (1 - sepShoulder)
	if sep < 0 {
		sep = 0
	}
	// Tunnels are only damped near floors; a few passages still cross.
	tunnelAtten := 1 - (1-sepTunnelKeep)*sep

	// Beyond the deep boundary the chamber system should dominate; shrink the
	// tunnel/connector cutoffs toward half strength.
	deepFactor := 1.0
	if depth > int(deepAttenStart) {
		t := (float64(depth) - deepAttenStart) / (deepAttenEnd - deepAttenStart)
		if t > 1 {
			t = 1
		}
		deepFactor = 1 - 0.5*t
	}

	// Spaghetti tunnels: both mismatched-frequency fields near zero.
	tc := tunnelCutoff * strength * tunnelAtten * deepFactor
	if tc > 0 {
		ta := g.caves.tunnelA.Noise3(x*tunnelFreqA, y*tunnelFreqA/tunnelYScale, z*tunnelFreqA)
		if math.Abs(ta) < tc {
			tb := g.caves.tunnelB.Noise3(x*tunnelFreqB, y*tunnelFreqB*tunnelYScale, z*tunnelFreqB)
			if math.Abs(tb) < tc {
				return true
			}
		}
	}

	// Cheese caverns: ridged noise, gated by depth, margin loosening as the
	// column deepens and fully closed at separator floor centers.
	if depth > cavernMinDepth {
		t := (float64(depth) - cavernMinDepth) / cavernDeepRamp
		if t > 1 {
			t = 1
		}
		margin := (cavernMarginLo + (cavernMarginHi-cavernMarginLo)*t) * strength * (1 - sep)
		if margin > 0 {
			ridge := 1 - math.Abs(g.caves.cavern.Noise3(x*cavernFreq, y*cavernFreq*cavernYScale, z*cavernFreq))
			if ridge > 1-margin {
				return true
			}
		}
	}

	// Noodle connectors: a second tight field pair linking chambers.
	if depth > connMinDepth {
		cc := connCutoff * strength * tunnelAtten * deepFactor
		if cc > 0 {
			ca := g.caves.connA.Noise3(x*connFreq, y*connFreq/tunnelYScale, z*connFreq)
			if math.Abs(ca) < cc {
				cb := g.caves.connB.Noise3(x*connFreq+77, y*connFreq*tunnelYScale, z*connFreq-77)
				if math.Abs(cb) < cc {
					return true
				}
			}
		}
	}

	return false
}

func (g *Generator) isEntranceColumn(wx, wz, surface int) bool {
	if surface <= g.cfg.SeaLevel+2 {
		return false
	}
	return g.caves.entry.Noise2(float64(wx)*entranceFreq, float64(wz)*entranceFreq) > entranceCutoff
}
