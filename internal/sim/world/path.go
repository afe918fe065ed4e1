package world

import (
	"stonehollow.dev/internal/sim/world/logic/pathfind"
)

// PathRequest asks the world loop to solve a walk between two cells over the
// currently loaded chunks. Reply must be buffered.
type PathRequest struct {
	From, To pathfind.Node
	Reply    chan pathfind.Result
}

// PathRequests lets other goroutines submit path queries. The loop answers
// on the request's Reply channel; unloaded chunks read as air, so queries
// outside the streamed area simply fail to find a path.
func (w *World) PathRequests() chan<- PathRequest { return w.pathReq }

// FindPath solves a path over the loaded chunks. Loop-goroutine only;
// concurrent callers go through PathRequests.
func (w *World) FindPath(from, to pathfind.Node) pathfind.Result {
	return w.pather.FindPath(from, to)
}

func (w *World) newPathfinder() *pathfind.Pathfinder {
	return pathfind.New(w, pathfind.Options{
		AllowDiagonal: w.cfg.PathDiagonals,
		MaxNodes:      w.cfg.PathMaxNodes,
	})
}
