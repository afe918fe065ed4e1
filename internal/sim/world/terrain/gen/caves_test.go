package gen

import (
	"math"
	"testing"
)

func TestCarveDeterministic(t *testing.T) {
	a := testGen(42)
	b := testGen(42)
	for x := -40; x <= 40; x += 3 {
		for y := 3; y < 60; y += 5 {
			if a.CarveAt(x, y, -x, 64) != b.CarveAt(x, y, -x, 64) {
				t.Fatalf("carve decision differs at %d,%d,%d", x, y, -x)
			}
		}
	}
}

func TestFloorCutoffNeverCarved(t *testing.T) {
	g := testGen(1337)
	for x := -128; x <= 128; x += 7 {
		for z := -128; z <= 128; z += 11 {
			for y := 0; y <= floorCutoffY; y++ {
				if g.CarveAt(x, y, z, 100) {
					t.Fatalf("carved below floor cutoff at %d,%d,%d", x, y, z)
				}
			}
		}
	}
}

func TestNoCarvingAboveProtectDepth(t *testing.T) {
	g := testGen(5)
	const surface = 70
	for x := -64; x <= 64; x += 5 {
		for z := -64; z <= 64; z += 5 {
			if g.isEntranceColumn(x, z, surface) {
				continue
			}
			for d := 0; d <= surfaceProtectDepth; d++ {
				if g.CarveAt(x, surface-d, z, surface) {
					t.Fatalf("carved %d below surface at %d,%d (protection zone)", d, x, z)
				}
			}
		}
	}
}

func TestSeaFloorColumnsHaveNoEntrances(t *testing.T) {
	g := testGen(9)
	for x := -200; x <= 200; x += 9 {
		for z := -200; z <= 200; z += 9 {
			if g.isEntranceColumn(x, z, g.cfg.SeaLevel) {
				t.Fatalf("entrance marked on drowned column at %d,%d", x, z)
			}
		}
	}
}

func TestSeparatorFloorsStayMostlySolid(t *testing.T) {
	// At a separator floor center the cavern system is fully closed and
	// tunnels run at reduced strength, so cells there must be solid at a far
	// higher rate than the carve field average.
	g := testGen(42)
	const surface = 110

	peak := 0
	peakCarved := 0
	total := 0
	totalCarved := 0
	for x := -300; x <= 300; x += 4 {
		for z := -300; z <= 300; z += 4 {
			phase := g.caves.phase.Noise2(float64(x)*sepPhaseFreq, float64(z)*sepPhaseFreq) * sepPhaseScale
			for y := 20; y <= 80; y++ {
				carved := g.CarveAt(x, y, z, surface)
				total++
				if carved {
					totalCarved++
				}
				wave := math.Cos(2 * math.Pi * (float64(y) + phase) / sepPeriod)
				if wave > 0.995 {
					peak++
					if carved {
						peakCarved++
					}
				}
			}
		}
	}
	if peak == 0 || total == 0 {
		t.Fatalf("degenerate sample: peak=%d total=%d", peak, total)
	}
	peakRate := float64(peakCarved) / float64(peak)
	overall := float64(totalCarved) / float64(total)
	if peakRate > 0.05 {
		t.Fatalf("floor-center cells carved at %.3f, want near zero", peakRate)
	}
	if overall == 0 {
		t.Fatalf("no carving at all in a 60-layer deep sample; cave system inert")
	}
	if peakRate > overall {
		t.Fatalf("floor centers carved more often (%.3f) than average (%.3f)", peakRate, overall)
	}
}

func TestColumnsNeverFullyVoided(t *testing.T) {
	g := testGen(42)
	for x := -120; x <= 120; x += 10 {
		for z := -120; z <= 120; z += 10 {
			h := g.HeightAt(x, z)
			solid := 0
			for y := 0; y <= h; y++ {
				if !g.CarveAt(x, y, z, h) {
					solid++
				}
			}
			if solid < 4 {
				t.Fatalf("column %d,%d almost fully voided: %d solid of %d", x, z, solid, h+1)
			}
		}
	}
}
