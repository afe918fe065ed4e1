package world

// MeshBuilder turns a chunk's exported blocks into renderable/collidable
// geometry. The lookup resolves local coordinates outside [0, Size) to the
// correct world block through the owning chunk's origin, so boundary faces
// cull against live neighbor state. The world never inspects the geometry.
type MeshBuilder interface {
	BuildMesh(key ChunkKey, blocks []uint16, lookup func(lx, ly, lz int) uint16)
}

// RequestMeshRefresh queues a chunk for mesh rebuild. Deduplicated: a
// coordinate already queued is never queued twice.
func (w *World) RequestMeshRefresh(key ChunkKey) {
	if _, ok := w.meshQueued[key]; ok {
		return
	}
	w.meshQueued[key] = struct{}{}
	w.meshQueue = append(w.meshQueue, key)
}

// applyMeshBudget rebuilds at most MeshPerTick chunks per tick. Mesh
// construction is the expensive half of streaming; amortizing it trades a
// few ticks of stale neighbor culling for steady frame pacing.
func (w *World) applyMeshBudget() {
	budget := w.cfg.MeshPerTick
	for budget > 0 && len(w.meshQueue) > 0 {
		key := w.meshQueue[0]
		w.meshQueue = w.meshQueue[1:]
		delete(w.meshQueued, key)

		ch, ok := w.chunks[key]
		if !ok {
			// Unloaded while queued.
			continue
		}

		if w.mesher != nil {
			ox := key.CX * Size
			oy := key.CY * Size
			oz := key.CZ * Size
			lookup := func(lx, ly, lz int) uint16 {
				return w.GetBlock(Vec3i{X: ox + lx, Y: oy + ly, Z: oz + lz})
			}
			w.mesher.BuildMesh(key, ch.ExportBlocks(), lookup)
		}
		w.stats.MeshBuilt++
		w.emit(EventChunkRefreshed, key)
		budget--
	}
}

// PendingMeshRefreshes reports the refresh backlog; loop-goroutine only.
func (w *World) PendingMeshRefreshes() int { return len(w.meshQueue) }
