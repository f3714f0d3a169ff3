package fsm

import "math"

// Unreachable is the distance reported between states with no connecting path,
// or when either identity is unknown.
const Unreachable = math.MaxInt

// DistanceCache holds unweighted, undirected shortest-path hop counts between
// every pair of states. It is read-only after [ComputeDistances].
type DistanceCache struct {
	ids   []string
	index map[string]int
	dist  [][]int
}

// ComputeDistances runs Floyd–Warshall over nodes, treating every link as an
// undirected edge of weight one. Links whose endpoints are not in nodes are
// ignored. Runs in O(V³) time and O(V²) space.
func ComputeDistances(nodes []*State, links []*Link) *DistanceCache {
	n := len(nodes)
	c := &DistanceCache{
		ids:   make([]string, n),
		index: make(map[string]int, n),
		dist:  make([][]int, n),
	}
	for i, s := range nodes {
		c.ids[i] = s.ID
		c.index[s.ID] = i
		row := make([]int, n)
		for j := range row {
			row[j] = Unreachable
		}
		row[i] = 0
		c.dist[i] = row
	}

	for _, l := range links {
		i, okI := c.index[l.Source.ID]
		j, okJ := c.index[l.Target.ID]
		if !okI || !okJ || i == j {
			continue
		}
		c.dist[i][j] = 1
		c.dist[j][i] = 1
	}

	for k := 0; k < n; k++ {
		dk := c.dist[k]
		for i := 0; i < n; i++ {
			dik := c.dist[i][k]
			if dik == Unreachable {
				continue
			}
			di := c.dist[i]
			for j := 0; j < n; j++ {
				if dk[j] == Unreachable {
					continue
				}
				if d := dik + dk[j]; d < di[j] {
					di[j] = d
				}
			}
		}
	}
	return c
}

// Distance returns the hop count between a and b, or [Unreachable].
func (c *DistanceCache) Distance(a, b string) int {
	i, okA := c.index[a]
	j, okB := c.index[b]
	if !okA || !okB {
		return Unreachable
	}
	return c.dist[i][j]
}

// HasPath reports whether a and b are connected.
func (c *DistanceCache) HasPath(a, b string) bool {
	return c.Distance(a, b) != Unreachable
}

// AllDistances returns a fresh map from every state ID to its distance from a,
// including unreachable entries. It is empty when a is unknown.
func (c *DistanceCache) AllDistances(a string) map[string]int {
	i, ok := c.index[a]
	if !ok {
		return map[string]int{}
	}
	out := make(map[string]int, len(c.ids))
	for j, id := range c.ids {
		out[id] = c.dist[i][j]
	}
	return out
}

// MaxFinite returns the largest finite distance from a to any state, or 0 when
// a is unknown or isolated.
func (c *DistanceCache) MaxFinite(a string) int {
	i, ok := c.index[a]
	if !ok {
		return 0
	}
	maxD := 0
	for _, d := range c.dist[i] {
		if d != Unreachable && d > maxD {
			maxD = d
		}
	}
	return maxD
}

// Len returns the number of states in the cache.
func (c *DistanceCache) Len() int { return len(c.ids) }
