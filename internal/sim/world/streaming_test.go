package world

import (
	"testing"
	"time"

	"stonehollow.dev/internal/sim/world/block"
)

func testWorld(t *testing.T, seed int64) *World {
	t.Helper()
	w, err := New(Config{
		ID:          "test",
		Seed:        seed,
		WorldHeight: 32,
		SeaLevel:    12,
		MeshPerTick: 1000,
	}, nil)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

// stepUntil drives the loop body until cond holds or the deadline passes.
func stepUntil(t *testing.T, w *World, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached")
		}
		w.Step()
		time.Sleep(time.Millisecond)
	}
}

func TestLoadAreaSynchronous(t *testing.T) {
	w := testWorld(t, 42)
	w.LoadArea(0, 0, 1)
	// 3x3 columns, 2 vertical chunks each.
	if got := w.LoadedChunkCount(); got != 18 {
		t.Fatalf("loaded %d chunks, want 18", got)
	}
}

func TestGenerationDeterministicAcrossWorlds(t *testing.T) {
	a := testWorld(t, 42)
	b := testWorld(t, 42)
	a.LoadArea(0, 0, 0)
	b.LoadArea(0, 0, 0)
	for cy := 0; cy <= a.maxCY(); cy++ {
		key := ChunkKey{CY: cy}
		ca, _ := a.ChunkAt(key)
		cb, _ := b.ChunkAt(key)
		if ca.Digest() != cb.Digest() {
			t.Fatalf("chunk %v differs between same-seed worlds", key)
		}
	}
}

func TestChunkBoundaryConsistency(t *testing.T) {
	w := testWorld(t, 7)
	w.LoadArea(0, 0, 1)

	left, _ := w.ChunkAt(ChunkKey{CX: 0, CY: 1, CZ: 0})
	right, _ := w.ChunkAt(ChunkKey{CX: 1, CY: 1, CZ: 0})
	for ly := 0; ly < Size; ly++ {
		for lz := 0; lz < Size; lz++ {
			wy := Size + ly
			// The shared face: both the owning chunk's local storage and the
			// world accessor must agree for each side.
			if left.Get(Size-1, ly, lz) != w.GetBlock(Vec3i{X: Size - 1, Y: wy, Z: lz}) {
				t.Fatalf("left face mismatch at ly=%d lz=%d", ly, lz)
			}
			if right.Get(0, ly, lz) != w.GetBlock(Vec3i{X: Size, Y: wy, Z: lz}) {
				t.Fatalf("right face mismatch at ly=%d lz=%d", ly, lz)
			}
		}
	}
}

func TestNegativeCoordinateAccess(t *testing.T) {
	w := testWorld(t, 3)
	w.LoadArea(0, 0, 1)
	// World (-1, y, -1) lives in chunk (-1,cy,-1) at local (15, ly, 15).
	ch, ok := w.ChunkAt(ChunkKey{CX: -1, CY: 0, CZ: -1})
	if !ok {
		t.Fatalf("negative chunk not loaded")
	}
	for y := 0; y < Size; y++ {
		if ch.Get(Size-1, y, Size-1) != w.GetBlock(Vec3i{X: -1, Y: y, Z: -1}) {
			t.Fatalf("negative coordinate mapping wrong at y=%d", y)
		}
	}
}

func TestModifiedChunkCacheRoundTrip(t *testing.T) {
	w := testWorld(t, 42)
	w.LoadArea(0, 0, 0)

	pos := Vec3i{X: 3, Y: 3, Z: 3}
	if !w.SetBlock(pos, block.Stone) {
		t.Fatalf("SetBlock failed on a loaded chunk")
	}
	key := ChunkKeyFor(pos)
	ch, _ := w.ChunkAt(key)
	if !ch.Modified() {
		t.Fatalf("edit did not mark chunk modified")
	}
	wantDigest := ch.Digest()
	generatedBefore := w.stats.Generated

	// Move the point of interest far away: everything unloads, the edited
	// chunk goes to the cache.
	w.UpdateStreaming(100, 100, 1)
	if w.LoadedChunkCount() != 0 {
		// Chunks near origin are beyond radius+margin of column (100,100).
		t.Fatalf("%d chunks still loaded after moving away", w.LoadedChunkCount())
	}
	if w.cache.len() != 1 {
		t.Fatalf("cache holds %d entries, want 1 (only the modified chunk)", w.cache.len())
	}

	// Reload the same coordinate: restored bit-identical from the cache, no
	// generator run.
	w.LoadArea(0, 0, 0)
	if got := w.GetBlock(pos); got != block.Stone {
		t.Fatalf("reloaded block = %s, want STONE", block.Name(got))
	}
	ch2, _ := w.ChunkAt(key)
	if ch2.Digest() != wantDigest {
		t.Fatalf("cache round trip not bit-identical")
	}
	if !ch2.Modified() {
		t.Fatalf("restored chunk lost its modified state")
	}
	if w.stats.CacheHits != 1 {
		t.Fatalf("cache hits = %d, want 1", w.stats.CacheHits)
	}
	// Only the clean sibling chunk regenerated; the edited one came from the
	// cache.
	if w.stats.Generated != generatedBefore+1 {
		t.Fatalf("generator ran %d times on reload, want 1", w.stats.Generated-generatedBefore)
	}
}

func TestAsyncStreamingLoadsDesiredSet(t *testing.T) {
	w := testWorld(t, 5)
	w.UpdateStreaming(0, 0, 1)
	stepUntil(t, w, func() bool { return w.LoadedChunkCount() >= 18 })
	if w.LoadedChunkCount() != 18 {
		t.Fatalf("loaded %d, want 18", w.LoadedChunkCount())
	}
	if len(w.generating) != 0 || len(w.loadQueue) != 0 {
		t.Fatalf("leftover work: generating=%d queued=%d", len(w.generating), len(w.loadQueue))
	}
}

func TestCancelledGenerationIsDiscarded(t *testing.T) {
	w := testWorld(t, 5)
	w.UpdateStreaming(0, 0, 1)
	w.Step() // dispatches workers for the first batch
	if len(w.generating) == 0 {
		t.Fatalf("nothing dispatched")
	}

	// POI jumps far away before generation completes: in-flight work is
	// cancelled, queued work is dropped.
	w.UpdateStreaming(1000, 1000, 1)
	if len(w.generating) != 0 {
		t.Fatalf("generating set not cleared on cancel")
	}
	for _, key := range w.loadQueue {
		if key.CX < 500 {
			t.Fatalf("stale queued load survived: %v", key)
		}
	}

	stepUntil(t, w, func() bool { return len(w.discard) == 0 })
	if w.stats.Discarded == 0 {
		t.Fatalf("no results discarded after cancellation")
	}
	for key := range w.chunks {
		if key.CX < 500 {
			t.Fatalf("cancelled chunk %v was attached anyway", key)
		}
	}
}

func TestSetBlockUnloadedIsNoop(t *testing.T) {
	w := testWorld(t, 1)
	if w.SetBlock(Vec3i{X: 1000, Y: 3, Z: 0}, block.Stone) {
		t.Fatalf("SetBlock succeeded on an unloaded chunk")
	}
	if got := w.GetBlock(Vec3i{X: 1000, Y: 3, Z: 0}); got != block.Air {
		t.Fatalf("unloaded read = %s, want AIR", block.Name(got))
	}
}

func TestUnloadHysteresis(t *testing.T) {
	w := testWorld(t, 2)
	w.UpdateStreaming(0, 0, 2)
	stepUntil(t, w, func() bool { return w.LoadedChunkCount() >= 50 })

	// One column over: chunks at distance radius+1 are inside the margin and
	// must stay loaded.
	w.UpdateStreaming(1, 0, 2)
	if _, ok := w.ChunkAt(ChunkKey{CX: -2, CY: 0, CZ: 0}); !ok {
		t.Fatalf("chunk inside hysteresis margin was unloaded")
	}
}
