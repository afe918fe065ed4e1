package world

// Stats counts streaming work since world start. Written only by the world
// loop; read through StatsSnapshot.
type Stats struct {
	Generated   uint64 // chunks built by the generator pipeline
	CacheHits   uint64 // chunks restored from the modified-chunk cache
	CacheStored uint64 // modified chunks exported to the cache on unload
	Discarded   uint64 // generation results dropped after cancellation
	MeshBuilt   uint64 // mesh refreshes applied
}

// StatsSnapshot returns a copy of the counters plus current occupancy.
// Loop-goroutine only.
func (w *World) StatsSnapshot() StatsView {
	return StatsView{
		Stats:        w.stats,
		LoadedChunks: len(w.chunks),
		Generating:   len(w.generating),
		LoadBacklog:  len(w.loadQueue),
		MeshBacklog:  len(w.meshQueue),
		CachedChunks: w.cache.len(),
	}
}

type StatsView struct {
	Stats
	LoadedChunks int
	Generating   int
	LoadBacklog  int
	MeshBacklog  int
	CachedChunks int
}
