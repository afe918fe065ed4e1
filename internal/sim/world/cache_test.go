package world

import "testing"

func TestCacheRoundTrip(t *testing.T) {
	cc, err := newChunkCache()
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	blocks := make([]uint16, Size*Size*Size)
	for i := range blocks {
		blocks[i] = uint16(i % 7)
	}
	key := ChunkKey{CX: -3, CY: 1, CZ: 9}
	cc.store(key, blocks)
	if !cc.has(key) {
		t.Fatalf("entry missing after store")
	}

	got, ok := cc.take(key)
	if !ok {
		t.Fatalf("take failed")
	}
	if len(got) != len(blocks) {
		t.Fatalf("length %d, want %d", len(got), len(blocks))
	}
	for i := range blocks {
		if got[i] != blocks[i] {
			t.Fatalf("round trip differs at %d: %d vs %d", i, got[i], blocks[i])
		}
	}

	// take removes the entry: the region is live again, not cached.
	if _, ok := cc.take(key); ok {
		t.Fatalf("entry survived take")
	}
}

func TestCacheMissingKey(t *testing.T) {
	cc, err := newChunkCache()
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	if _, ok := cc.take(ChunkKey{CX: 1}); ok {
		t.Fatalf("take invented an entry")
	}
	if cc.len() != 0 {
		t.Fatalf("phantom entries: %d", cc.len())
	}
}
