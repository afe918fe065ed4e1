package world

type EventType string

const (
	EventChunkLoaded    EventType = "chunk_loaded"
	EventChunkRefreshed EventType = "chunk_refreshed"
	EventChunkUnloaded  EventType = "chunk_unloaded"
)

// Event reports one chunk lifecycle transition to the observer feed.
type Event struct {
	Type EventType
	Key  ChunkKey
	Tick uint64
}
