package block

// Block ids. Air must stay 0 so zeroed storage reads as empty.
const (
	Air uint16 = iota
	Stone
	Deepstone
	Dirt
	Grass
	Sand
	Sandstone
	Gravel
	Snow
	Water
)

var names = []string{
	"AIR",
	"STONE",
	"DEEPSTONE",
	"DIRT",
	"GRASS",
	"SAND",
	"SANDSTONE",
	"GRAVEL",
	"SNOW",
	"WATER",
}

// Palette returns the block names indexed by id.
func Palette() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func Name(b uint16) string {
	if int(b) >= len(names) {
		return ""
	}
	return names[b]
}

// Solid reports whether an agent can stand on the block. Water is not
// standable; unknown ids are treated as solid so edits with future palette
// entries block movement rather than letting agents fall through.
func Solid(b uint16) bool {
	switch b {
	case Air, Water:
		return false
	}
	return true
}

// Empty reports whether the block occupies no space for clearance checks.
// Water is deliberately not empty: agents neither stand on it nor walk
// through it.
func Empty(b uint16) bool {
	return b == Air
}
