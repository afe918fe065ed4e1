package world

import "stonehollow.dev/internal/sim/world/logic/mathx"

// Chunk lifecycle: Unloaded -> Generating -> Loaded(clean) <-> Loaded(modified)
// -> Unloaded (cached when modified). Cancellation moves a generating key to
// the discard set; its result is dropped on arrival.

func (w *World) maxCY() int {
	return w.cfg.WorldHeight/Size - 1
}

// UpdateStreaming recomputes the desired chunk set around a point-of-interest
// column. Incremental: a no-op until the POI crosses into a new chunk column
// or changes radius.
func (w *World) UpdateStreaming(poiCX, poiCZ, radius int) {
	if radius <= 0 {
		radius = w.cfg.LoadRadius
	}
	if w.havePOI && poiCX == w.poiCX && poiCZ == w.poiCZ && radius == w.poiRadius {
		return
	}
	w.havePOI = true
	w.poiCX = poiCX
	w.poiCZ = poiCZ
	w.poiRadius = radius
	w.logf("world %s: poi -> column (%d,%d) radius %d", w.cfg.ID, poiCX, poiCZ, radius)

	// Queue loads for every missing chunk in the desired columns.
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			for cy := 0; cy <= w.maxCY(); cy++ {
				w.requestLoad(ChunkKey{CX: poiCX + dx, CY: cy, CZ: poiCZ + dz})
			}
		}
	}

	limit := radius + w.cfg.UnloadMargin

	// Unload everything beyond the hysteresis boundary.
	for key := range w.chunks {
		if w.columnDistance(key) > limit {
			w.unloadChunk(key)
		}
	}

	// Cancel in-flight generation that drifted out of range: result will be
	// discarded on arrival, the worker itself is not preempted.
	for key := range w.generating {
		if w.columnDistance(key) > limit {
			delete(w.generating, key)
			w.discard[key] = struct{}{}
		}
	}

	// Drop queued loads that are no longer wanted.
	if len(w.loadQueue) > 0 {
		kept := w.loadQueue[:0]
		for _, key := range w.loadQueue {
			if w.columnDistance(key) > limit {
				delete(w.loadQueued, key)
				continue
			}
			kept = append(kept, key)
		}
		w.loadQueue = kept
	}
}

func (w *World) columnDistance(key ChunkKey) int {
	return mathx.MaxInt(mathx.AbsInt(key.CX-w.poiCX), mathx.AbsInt(key.CZ-w.poiCZ))
}

// requestLoad queues a chunk for loading unless it is already loaded,
// queued, or generating.
func (w *World) requestLoad(key ChunkKey) {
	if key.CY < 0 || key.CY > w.maxCY() {
		return
	}
	if _, ok := w.chunks[key]; ok {
		return
	}
	if _, ok := w.loadQueued[key]; ok {
		return
	}
	if _, ok := w.generating[key]; ok {
		return
	}
	// A cancelled generation may still be in flight for this key; reclaim it
	// instead of generating twice.
	if _, ok := w.discard[key]; ok {
		delete(w.discard, key)
		w.generating[key] = struct{}{}
		return
	}
	w.loadQueued[key] = struct{}{}
	w.loadQueue = append(w.loadQueue, key)
}

// dispatchLoads starts background generation up to the in-flight budget.
// Edited chunks restore from the cache on the loop instead, since cache
// application mutates owned state.
func (w *World) dispatchLoads() {
	budget := w.cfg.MaxInFlight
	if len(w.loadQueue) > w.cfg.BacklogBoost {
		// Large backlog: drain faster.
		budget *= 2
	}

	for len(w.loadQueue) > 0 && len(w.generating) < budget {
		key := w.loadQueue[0]
		w.loadQueue = w.loadQueue[1:]
		delete(w.loadQueued, key)

		if _, ok := w.chunks[key]; ok {
			continue
		}

		if blocks, ok := w.cache.take(key); ok {
			w.attachRestored(key, blocks)
			continue
		}

		w.generating[key] = struct{}{}
		go func(key ChunkKey) {
			w.results <- genResult{key: key, blocks: w.gen.GenerateChunk(key.CX, key.CY, key.CZ)}
		}(key)
	}
}

// drainResults applies every completed generation result. Bounded by what
// the workers finished; never blocks.
func (w *World) drainResults() {
	for {
		select {
		case r := <-w.results:
			w.applyResult(r)
		default:
			return
		}
	}
}

func (w *World) applyResult(r genResult) {
	if _, ok := w.discard[r.key]; ok {
		delete(w.discard, r.key)
		w.stats.Discarded++
		return
	}
	if _, ok := w.generating[r.key]; !ok {
		// Unknown result; silently drop per the cancellation contract.
		w.stats.Discarded++
		return
	}
	delete(w.generating, r.key)

	ch := NewChunk(r.key)
	ch.ImportBlocks(r.blocks)
	w.chunks[r.key] = ch
	w.stats.Generated++

	w.scheduleRefreshWithNeighbors(r.key)
	w.emit(EventChunkLoaded, r.key)
}

// attachRestored brings a cached (edited) chunk straight back as
// Loaded(modified) without re-running the generator.
func (w *World) attachRestored(key ChunkKey, blocks []uint16) {
	ch := NewChunk(key)
	ch.ImportBlocks(blocks)
	ch.markModified()
	w.chunks[key] = ch
	w.stats.CacheHits++

	w.scheduleRefreshWithNeighbors(key)
	w.emit(EventChunkLoaded, key)
}

func (w *World) unloadChunk(key ChunkKey) {
	ch, ok := w.chunks[key]
	if !ok {
		return
	}
	if ch.Modified() {
		w.cache.store(key, ch.Blocks)
		w.stats.CacheStored++
	}
	delete(w.chunks, key)
	delete(w.meshQueued, key)
	w.emit(EventChunkUnloaded, key)
}

// scheduleRefreshWithNeighbors queues the chunk and its six face-adjacent
// neighbors so cross-chunk face culling stays correct when a boundary chunk
// appears.
func (w *World) scheduleRefreshWithNeighbors(key ChunkKey) {
	w.RequestMeshRefresh(key)
	for _, nk := range [6]ChunkKey{
		{key.CX + 1, key.CY, key.CZ},
		{key.CX - 1, key.CY, key.CZ},
		{key.CX, key.CY + 1, key.CZ},
		{key.CX, key.CY - 1, key.CZ},
		{key.CX, key.CY, key.CZ + 1},
		{key.CX, key.CY, key.CZ - 1},
	} {
		w.RequestMeshRefresh(nk)
	}
}

// LoadArea synchronously loads every chunk within radius columns of a center
// column; used for initial world bring-up before the loop starts streaming.
func (w *World) LoadArea(centerCX, centerCZ, radius int) {
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			for cy := 0; cy <= w.maxCY(); cy++ {
				key := ChunkKey{CX: centerCX + dx, CY: cy, CZ: centerCZ + dz}
				if _, ok := w.chunks[key]; ok {
					continue
				}
				if blocks, ok := w.cache.take(key); ok {
					w.attachRestored(key, blocks)
					continue
				}
				ch := NewChunk(key)
				ch.ImportBlocks(w.gen.GenerateChunk(key.CX, key.CY, key.CZ))
				w.chunks[key] = ch
				w.stats.Generated++
				w.scheduleRefreshWithNeighbors(key)
				w.emit(EventChunkLoaded, key)
			}
		}
	}
}
