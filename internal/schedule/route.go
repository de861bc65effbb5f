package schedule

// Role names a buffer a pass reads from or writes to.
type Role uint8

const (
	RoleInput Role = iota
	RoleOutput
	RoleScratch
)

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	case RoleScratch:
		return "scratch"
	default:
		return "unknown"
	}
}

// Hop is the source and destination of one pass.
type Hop struct {
	Src Role
	Dst Role
}

// Aliased reports whether the pass reads and writes the same buffer.
func (h Hop) Aliased() bool {
	return h.Src == h.Dst
}

// Route assigns buffers to n consecutive passes starting from src so the
// last pass writes final. Destinations alternate between final and the
// other of Output and Scratch, counting back from the last pass.
func Route(n int, src, final Role) []Hop {
	if n <= 0 {
		return nil
	}

	other := RoleScratch
	if final == RoleScratch {
		other = RoleOutput
	}

	hops := make([]Hop, n)
	cur := src

	for q := range n {
		dst := final
		if (n-1-q)%2 == 1 {
			dst = other
		}

		hops[q] = Hop{Src: cur, Dst: dst}
		cur = dst
	}

	return hops
}
