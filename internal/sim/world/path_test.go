package world

import (
	"testing"

	"stonehollow.dev/internal/sim/world/block"
	"stonehollow.dev/internal/sim/world/logic/pathfind"
)

// Carve a flat stone platform with headroom inside loaded chunks so the
// route does not depend on whatever the generator put there.
func buildPlatform(t *testing.T, w *World, y, size int) {
	t.Helper()
	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			if !w.SetBlock(Vec3i{x, y, z}, block.Stone) {
				t.Fatalf("platform block (%d,%d,%d) not placed", x, y, z)
			}
			for dy := 1; dy <= 3; dy++ {
				w.SetBlock(Vec3i{x, y + dy, z}, block.Air)
			}
		}
	}
}

func TestFindPathAcrossLoadedChunks(t *testing.T) {
	w := testWorld(t, 42)
	w.LoadArea(0, 0, 1)
	buildPlatform(t, w, 20, 6)

	res := w.FindPath(pathfind.Node{X: 0, Y: 20, Z: 0}, pathfind.Node{X: 5, Y: 20, Z: 5})
	if !res.Found {
		t.Fatalf("expected path across platform, explored %d", res.Explored)
	}
	first, last := res.Path[0], res.Path[len(res.Path)-1]
	if first != (pathfind.Node{X: 0, Y: 20, Z: 0}) || last != (pathfind.Node{X: 5, Y: 20, Z: 5}) {
		t.Fatalf("endpoints %v .. %v", first, last)
	}
}

func TestFindPathFailsIntoUnloadedSpace(t *testing.T) {
	w := testWorld(t, 42)
	w.LoadArea(0, 0, 1)
	buildPlatform(t, w, 20, 6)

	// Goal sits far outside the loaded area; unloaded chunks read as air,
	// so there is no footing anywhere near it.
	res := w.FindPath(pathfind.Node{X: 0, Y: 20, Z: 0}, pathfind.Node{X: 500, Y: 20, Z: 500})
	if res.Found {
		t.Fatalf("expected no path into unloaded space")
	}
	if res.Explored == 0 {
		t.Fatalf("expected search effort before giving up")
	}
}
