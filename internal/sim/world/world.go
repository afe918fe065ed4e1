package world

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"stonehollow.dev/internal/sim/world/block"
	"stonehollow.dev/internal/sim/world/logic/pathfind"
	"stonehollow.dev/internal/sim/world/terrain/gen"
)

type Config struct {
	ID          string
	Seed        int64
	TickRateHz  int
	WorldHeight int // multiple of Size
	SeaLevel    int

	LoadRadius   int // chunk columns around the point of interest
	UnloadMargin int // hysteresis beyond LoadRadius before unloading

	MaxInFlight   int // concurrent background generations
	BacklogBoost  int // queue length past which MaxInFlight doubles
	MeshPerTick   int // mesh refreshes applied per tick
	ResultBacklog int // buffered generation results

	PathMaxNodes  int  // node budget per path query
	PathDiagonals bool // allow diagonal steps in path queries
}

func (c Config) withDefaults() Config {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.WorldHeight <= 0 {
		c.WorldHeight = 128
	}
	if c.SeaLevel <= 0 {
		c.SeaLevel = 24
	}
	if c.LoadRadius <= 0 {
		c.LoadRadius = 6
	}
	if c.UnloadMargin <= 0 {
		c.UnloadMargin = 2
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 8
	}
	if c.BacklogBoost <= 0 {
		c.BacklogBoost = 64
	}
	if c.MeshPerTick <= 0 {
		c.MeshPerTick = 4
	}
	if c.ResultBacklog <= 0 {
		c.ResultBacklog = 256
	}
	return c
}

// EditRequest asks the world loop to set one block and refresh the touched
// chunk faces.
type EditRequest struct {
	Pos   Vec3i
	Block uint16
}

// POIUpdate moves the streaming point of interest to a chunk column.
type POIUpdate struct {
	CX, CZ int
	Radius int
}

type genResult struct {
	key    ChunkKey
	blocks []uint16
}

// World owns the loaded chunk grid and orchestrates streaming. All grid
// state must be accessed only from the world loop goroutine; external
// callers talk through the Edits/POI channels.
type World struct {
	cfg Config
	log *log.Logger
	gen *gen.Generator

	tick atomic.Uint64

	chunks     map[ChunkKey]*Chunk
	generating map[ChunkKey]struct{}
	discard    map[ChunkKey]struct{}
	cache      *chunkCache

	loadQueue  []ChunkKey
	loadQueued map[ChunkKey]struct{}

	meshQueue  []ChunkKey
	meshQueued map[ChunkKey]struct{}

	results chan genResult

	mesher MeshBuilder
	events chan<- Event

	poiCX, poiCZ int
	poiRadius    int
	havePOI      bool

	stats Stats

	pather *pathfind.Pathfinder

	edits    chan EditRequest
	poi      chan POIUpdate
	statsReq chan chan StatsView
	pathReq  chan PathRequest
	stop     chan struct{}
}

func New(cfg Config, logger *log.Logger) (*World, error) {
	cfg = cfg.withDefaults()
	cache, err := newChunkCache()
	if err != nil {
		return nil, err
	}
	w := &World{
		cfg: cfg,
		log: logger,
		gen: gen.New(gen.Config{
			Seed:        cfg.Seed,
			WorldHeight: cfg.WorldHeight,
			SeaLevel:    cfg.SeaLevel,
		}),
		chunks:     map[ChunkKey]*Chunk{},
		generating: map[ChunkKey]struct{}{},
		discard:    map[ChunkKey]struct{}{},
		cache:      cache,
		loadQueued: map[ChunkKey]struct{}{},
		meshQueued: map[ChunkKey]struct{}{},
		results:    make(chan genResult, cfg.ResultBacklog),
		edits:      make(chan EditRequest, 256),
		poi:        make(chan POIUpdate, 16),
		statsReq:   make(chan chan StatsView, 8),
		pathReq:    make(chan PathRequest, 16),
		stop:       make(chan struct{}),
	}
	w.pather = w.newPathfinder()
	return w, nil
}

func (w *World) Config() Config          { return w.cfg }
func (w *World) Generator() *gen.Generator { return w.gen }
func (w *World) CurrentTick() uint64     { return w.tick.Load() }
func (w *World) Palette() []string       { return block.Palette() }

// SetMeshBuilder installs the mesh consumer. Call before Run.
func (w *World) SetMeshBuilder(m MeshBuilder) { w.mesher = m }

// SetEventSink installs an optional chunk-lifecycle event sink. Sends never
// block; events are dropped when the sink lags.
func (w *World) SetEventSink(ch chan<- Event) { w.events = ch }

// Edits is the external mutation entry point.
func (w *World) Edits() chan<- EditRequest { return w.edits }

// POI receives point-of-interest updates, one per tick from the provider.
func (w *World) POI() chan<- POIUpdate { return w.poi }

// StatsRequests lets other goroutines ask the loop for a stats snapshot.
// Send a buffered reply channel; the loop answers on it.
func (w *World) StatsRequests() chan<- chan StatsView { return w.statsReq }

func (w *World) Stop() { close(w.stop) }

func (w *World) logf(format string, args ...any) {
	if w.log != nil {
		w.log.Printf(format, args...)
	}
}

// Run drives the world loop until the context ends or Stop is called.
func (w *World) Run(ctx context.Context) error {
	w.logf("world %s: loop running at %d Hz (seed %d)", w.cfg.ID, w.cfg.TickRateHz, w.cfg.Seed)
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingEdits []EditRequest

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case e := <-w.edits:
			pendingEdits = append(pendingEdits, e)
		case p := <-w.poi:
			w.UpdateStreaming(p.CX, p.CZ, p.Radius)
		case reply := <-w.statsReq:
			reply <- w.StatsSnapshot()
		case pr := <-w.pathReq:
			pr.Reply <- w.pather.FindPath(pr.From, pr.To)
		case <-ticker.C:
			for _, e := range pendingEdits {
				w.applyEdit(e)
			}
			pendingEdits = pendingEdits[:0]
			w.Step()
		}
	}
}

// Step runs one tick of owned work: apply completed generation results, top
// up background generation, then spend the mesh budget. Results always apply
// before any mesh refresh so refreshed meshes see the freshest neighbors.
func (w *World) Step() {
	w.drainResults()
	w.dispatchLoads()
	w.applyMeshBudget()
	w.tick.Add(1)
}

// applyEdit performs the edit-trigger contract: set the block, then refresh
// the edited chunk and any neighbor sharing the edited face.
func (w *World) applyEdit(e EditRequest) {
	if !w.SetBlock(e.Pos, e.Block) {
		return
	}
	key := ChunkKeyFor(e.Pos)
	w.RequestMeshRefresh(key)
	lx, ly, lz := LocalFor(e.Pos)
	if lx == 0 {
		w.RequestMeshRefresh(ChunkKey{key.CX - 1, key.CY, key.CZ})
	}
	if lx == Size-1 {
		w.RequestMeshRefresh(ChunkKey{key.CX + 1, key.CY, key.CZ})
	}
	if ly == 0 {
		w.RequestMeshRefresh(ChunkKey{key.CX, key.CY - 1, key.CZ})
	}
	if ly == Size-1 {
		w.RequestMeshRefresh(ChunkKey{key.CX, key.CY + 1, key.CZ})
	}
	if lz == 0 {
		w.RequestMeshRefresh(ChunkKey{key.CX, key.CY, key.CZ - 1})
	}
	if lz == Size-1 {
		w.RequestMeshRefresh(ChunkKey{key.CX, key.CY, key.CZ + 1})
	}
}

func (w *World) emit(t EventType, key ChunkKey) {
	if w.events == nil {
		return
	}
	select {
	case w.events <- Event{Type: t, Key: key, Tick: w.tick.Load()}:
	default:
	}
}
