package observerproto

// Version is the observer protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// HTTP response for GET /admin/v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
	BlockPalette    []string    `json:"block_palette"`
	Stats           Stats       `json:"stats"`
}

type WorldParams struct {
	TickRateHz  int    `json:"tick_rate_hz"`
	ChunkSize   [3]int `json:"chunk_size"`
	WorldHeight int    `json:"world_height"`
	SeaLevel    int    `json:"sea_level"`
	Seed        int64  `json:"seed"`
	LoadRadius  int    `json:"load_radius"`
}

type Stats struct {
	Generated    uint64 `json:"generated"`
	CacheHits    uint64 `json:"cache_hits"`
	CacheStored  uint64 `json:"cache_stored"`
	Discarded    uint64 `json:"discarded"`
	MeshBuilt    uint64 `json:"mesh_built"`
	LoadedChunks int    `json:"loaded_chunks"`
	Generating   int    `json:"generating"`
	LoadBacklog  int    `json:"load_backlog"`
	MeshBacklog  int    `json:"mesh_backlog"`
	CachedChunks int    `json:"cached_chunks"`
}

// Server -> Client. One chunk lifecycle transition.
type ChunkEventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Event           string `json:"event"`
	CX              int    `json:"cx"`
	CY              int    `json:"cy"`
	CZ              int    `json:"cz"`
	Tick            uint64 `json:"tick"`
}
