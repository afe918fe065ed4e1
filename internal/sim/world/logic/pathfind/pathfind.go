package pathfind

import (
	"container/heap"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"stonehollow.dev/internal/sim/world/block"
	"stonehollow.dev/internal/sim/world/logic/mathx"
)

// BlockSource is the read-only view the pathfinder searches over. Unloaded
// or out-of-world cells must read as air.
type BlockSource interface {
	BlockAt(x, y, z int) uint16
}

// Node identifies the solid block an agent stands on. Equality is structural
// so nodes key maps directly.
type Node struct {
	X, Y, Z int
}

// StandPosition is the continuous point locomotion aims for: block-center XZ
// on top of the node's block.
func (n Node) StandPosition() mgl64.Vec3 {
	return mgl64.Vec3{float64(n.X) + 0.5, float64(n.Y) + 1, float64(n.Z) + 0.5}
}

type Result struct {
	Found    bool
	Path     []Node
	Explored int
}

type Options struct {
	AllowDiagonal bool
	MaxNodes      int // expansion budget; 0 means the default
	FloorY        int // downward scans stop below this Y
}

const defaultMaxNodes = 10000

// Edge costs. Vertical moves are penalized so routes prefer staying level;
// the diagonal step-down premium is the orthogonal step-down cost plus the
// diagonal surcharge.
const (
	costFlat     = 1.0
	costDown     = 1.2
	costUp       = 2.0
	costDiag     = math.Sqrt2
	costDiagDown = costDown + (math.Sqrt2 - 1)

	verticalWeight = 1.5
)

// Pathfinder runs stateless A* over the block grid. It holds no state
// between calls and issues no writes, so one instance may serve many agents.
type Pathfinder struct {
	src BlockSource
	opt Options
}

func New(src BlockSource, opt Options) *Pathfinder {
	if opt.MaxNodes <= 0 {
		opt.MaxNodes = defaultMaxNodes
	}
	return &Pathfinder{src: src, opt: opt}
}

// walkable: solid footing with a two-cell air column above it.
func (p *Pathfinder) walkable(x, y, z int) bool {
	return block.Solid(p.src.BlockAt(x, y, z)) && p.clearAbove(x, y, z)
}

// clearAbove reports two cells of air starting one above the given Y.
func (p *Pathfinder) clearAbove(x, y, z int) bool {
	return block.Empty(p.src.BlockAt(x, y+1, z)) && block.Empty(p.src.BlockAt(x, y+2, z))
}

type candidate struct {
	n    Node
	cost float64
}

var orthoDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var diagDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// neighbors fills buf with at most 8 reachable candidates from n and returns
// the count. Fixed-capacity buffer: this runs inside the search loop and
// must not allocate.
func (p *Pathfinder) neighbors(n Node, buf *[8]candidate) int {
	count := 0
	for _, d := range orthoDirs {
		nx, nz := n.X+d[0], n.Z+d[1]
		switch {
		case p.walkable(nx, n.Y, nz):
			buf[count] = candidate{Node{nx, n.Y, nz}, costFlat}
			count++
		case p.walkable(nx, n.Y+1, nz) && block.Empty(p.src.BlockAt(n.X, n.Y+3, n.Z)):
			// Step-up needs headroom above the agent to rise.
			buf[count] = candidate{Node{nx, n.Y + 1, nz}, costUp}
			count++
		case p.walkable(nx, n.Y-1, nz):
			buf[count] = candidate{Node{nx, n.Y - 1, nz}, costDown}
			count++
		}
	}
	if !p.opt.AllowDiagonal {
		return count
	}
	for _, d := range diagDirs {
		nx, nz := n.X+d[0], n.Z+d[1]
		// Both orthogonal cells beside the diagonal need full clearance or an
		// embodied capsule clips the corner.
		if !p.clearAbove(n.X+d[0], n.Y, n.Z) || !p.clearAbove(n.X, n.Y, n.Z+d[1]) {
			continue
		}
		switch {
		case p.walkable(nx, n.Y, nz):
			buf[count] = candidate{Node{nx, n.Y, nz}, costDiag}
			count++
		case p.walkable(nx, n.Y-1, nz):
			// Diagonal step-up is never offered; step-down follows the
			// orthogonal rule.
			buf[count] = candidate{Node{nx, n.Y - 1, nz}, costDiagDown}
			count++
		}
	}
	return count
}

func (p *Pathfinder) heuristic(n, goal Node) float64 {
	dx := mathx.AbsInt(n.X - goal.X)
	dz := mathx.AbsInt(n.Z - goal.Z)
	dy := mathx.AbsInt(n.Y - goal.Y)
	if p.opt.AllowDiagonal {
		// Octile distance on the horizontal plane.
		return float64(mathx.MaxInt(dx, dz)) + 0.414*float64(mathx.MinInt(dx, dz)) + verticalWeight*float64(dy)
	}
	return float64(dx+dz) + verticalWeight*float64(dy)
}

type record struct {
	n      Node
	g, f   float64
	parent *record
	closed bool
	index  int
}

type openHeap []*record

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openHeap) Push(x any)         { r := x.(*record); r.index = len(*h); *h = append(*h, r) }
func (h *openHeap) Pop() any           { old := *h; n := len(old); r := old[n-1]; *h = old[:n-1]; return r }

// FindPath searches from start to goal and returns the ordered waypoint
// sequence on success. Exhausting the node budget or an unreachable goal is
// a negative result, not an error.
func (p *Pathfinder) FindPath(start, goal Node) Result {
	if start == goal {
		return Result{Found: true, Path: []Node{start}}
	}

	records := make(map[Node]*record, 256)
	open := make(openHeap, 0, 256)

	sr := &record{n: start, g: 0, f: p.heuristic(start, goal)}
	records[start] = sr
	heap.Push(&open, sr)

	explored := 0
	var buf [8]candidate

	for open.Len() > 0 {
		cur := heap.Pop(&open).(*record)
		if cur.closed {
			continue
		}
		if explored >= p.opt.MaxNodes {
			break
		}
		cur.closed = true
		explored++

		if cur.n == goal {
			return Result{Found: true, Path: reconstruct(cur), Explored: explored}
		}

		cnt := p.neighbors(cur.n, &buf)
		for i := 0; i < cnt; i++ {
			nb := buf[i]
			r, ok := records[nb.n]
			if !ok {
				r = &record{n: nb.n, g: math.Inf(1)}
				records[nb.n] = r
			}
			if r.closed {
				continue
			}
			ng := cur.g + nb.cost
			if ng < r.g {
				r.g = ng
				r.f = ng + p.heuristic(nb.n, goal)
				r.parent = cur
				// Lazy decrease-key: stale heap entries are skipped on pop.
				heap.Push(&open, r)
			}
		}
	}

	return Result{Found: false, Explored: explored}
}

func reconstruct(end *record) []Node {
	n := 0
	for r := end; r != nil; r = r.parent {
		n++
	}
	path := make([]Node, n)
	for r := end; r != nil; r = r.parent {
		n--
		path[n] = r.n
	}
	return path
}

// WorldPositionToNode resolves a continuous position to the walkable node
// beneath it by scanning downward, or reports false when the scan falls
// below the world floor.
func (p *Pathfinder) WorldPositionToNode(pos mgl64.Vec3) (Node, bool) {
	x := int(math.Floor(pos.X()))
	z := int(math.Floor(pos.Z()))
	for y := int(math.Floor(pos.Y())); y >= p.opt.FloorY; y-- {
		if p.walkable(x, y, z) {
			return Node{x, y, z}, true
		}
	}
	return Node{}, false
}
