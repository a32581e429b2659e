package solver

import (
	"fmt"
	"sort"
)

// Constraint Graph Builder
//
// Normalizes raw compatible/incompatible person pairs into the reduced
// problem the search actually runs on: connected components of the
// compatibility relation ("clusters", the indivisible units of assignment)
// plus a cluster-level conflict relation. Collapsing forced-together people
// into one decision unit shrinks the search space before the solver runs.
//
// Implementation: weighted union-find with path compression over dense
// person ids. Find and Union are O(α(n)) amortized.
//
// All analytic contradictions are rejected here, never mid-search:
//   - a pair present in both relations
//   - a compatibility cluster larger than the group capacity
//   - an incompatible pair forced into the same cluster

// ContradictionKind identifies which analytic rule an instance violated.
type ContradictionKind int

const (
	// ContradictionBothRelations: a pair is marked both compatible and incompatible.
	ContradictionBothRelations ContradictionKind = iota
	// ContradictionClusterOverflow: transitive compatibility forces more people
	// together than one group can hold.
	ContradictionClusterOverflow
	// ContradictionConflictInCluster: an incompatible pair is transitively
	// forced into the same cluster.
	ContradictionConflictInCluster
)

// Contradiction is a structured pre-search rejection. It carries the
// offending pair or cluster so callers can explain the failure instead of
// surfacing a generic solver error.
type Contradiction struct {
	Kind    ContradictionKind
	PersonA int
	PersonB int
	Cluster []int
}

func (c *Contradiction) Error() string {
	switch c.Kind {
	case ContradictionBothRelations:
		return fmt.Sprintf("pair (%d, %d) is marked both compatible and incompatible", c.PersonA, c.PersonB)
	case ContradictionClusterOverflow:
		return fmt.Sprintf("compatibility cluster %v has %d members, exceeding group capacity", c.Cluster, len(c.Cluster))
	case ContradictionConflictInCluster:
		return fmt.Sprintf("persons %d and %d are forced into the same cluster but marked incompatible", c.PersonA, c.PersonB)
	default:
		return "constraint contradiction"
	}
}

// Graph is the reduced problem handed to the solver: clusters ordered by
// their smallest member id, and a symmetric cluster-level conflict matrix.
// It is a plain value; concurrent solves never share one.
type Graph struct {
	N        int
	Capacity int
	Clusters [][]int

	conflict [][]bool
}

// Conflicts reports whether clusters a and b may never share a group.
func (g *Graph) Conflicts(a, b int) bool {
	return g.conflict[a][b]
}

// ClusterOf returns the index of the cluster containing person p.
func (g *Graph) ClusterOf(p int) int {
	for ci, members := range g.Clusters {
		for _, m := range members {
			if m == p {
				return ci
			}
		}
	}
	return -1
}

type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x])
	}
	return uf.parent[x]
}

// union merges by size to keep trees shallow.
func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

func normalizePair(p [2]int) [2]int {
	if p[0] > p[1] {
		p[0], p[1] = p[1], p[0]
	}
	return p
}

// BuildGraph validates the raw constraint pairs over persons 0..n-1 and
// produces the cluster-level problem. It returns *Contradiction for analytic
// violations and ErrConfiguration-wrapped errors for malformed input.
func BuildGraph(n, capacity int, compatible, incompatible [][2]int) (*Graph, error) {
	if n < 1 || capacity < 1 {
		return nil, fmt.Errorf("%w: n=%d capacity=%d", ErrConfiguration, n, capacity)
	}

	check := func(p [2]int) error {
		if p[0] < 0 || p[0] >= n || p[1] < 0 || p[1] >= n {
			return fmt.Errorf("%w: pair (%d, %d) references a person outside 0..%d", ErrConfiguration, p[0], p[1], n-1)
		}
		if p[0] == p[1] {
			return fmt.Errorf("%w: person %d is paired with itself", ErrConfiguration, p[0])
		}
		return nil
	}

	mustTogether := make(map[[2]int]bool, len(compatible))
	for _, p := range compatible {
		if err := check(p); err != nil {
			return nil, err
		}
		mustTogether[normalizePair(p)] = true
	}
	mustApart := make(map[[2]int]bool, len(incompatible))
	for _, p := range incompatible {
		if err := check(p); err != nil {
			return nil, err
		}
		np := normalizePair(p)
		if mustTogether[np] {
			return nil, &Contradiction{Kind: ContradictionBothRelations, PersonA: np[0], PersonB: np[1]}
		}
		mustApart[np] = true
	}

	uf := newUnionFind(n)
	for p := range mustTogether {
		uf.union(p[0], p[1])
	}

	// An incompatible pair inside one component is a direct contradiction.
	for p := range mustApart {
		if uf.find(p[0]) == uf.find(p[1]) {
			return nil, &Contradiction{Kind: ContradictionConflictInCluster, PersonA: p[0], PersonB: p[1]}
		}
	}

	byRoot := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		byRoot[root] = append(byRoot[root], i)
	}

	clusters := make([][]int, 0, len(byRoot))
	for _, members := range byRoot {
		sort.Ints(members)
		clusters = append(clusters, members)
	}
	// Canonical cluster order: ascending smallest member id. The solver's
	// symmetry breaking depends on this order being stable.
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })

	clusterOf := make([]int, n)
	for ci, members := range clusters {
		if len(members) > capacity {
			return nil, &Contradiction{Kind: ContradictionClusterOverflow, Cluster: members}
		}
		for _, m := range members {
			clusterOf[m] = ci
		}
	}

	conflict := make([][]bool, len(clusters))
	for i := range conflict {
		conflict[i] = make([]bool, len(clusters))
	}
	for p := range mustApart {
		a, b := clusterOf[p[0]], clusterOf[p[1]]
		conflict[a][b] = true
		conflict[b][a] = true
	}

	return &Graph{N: n, Capacity: capacity, Clusters: clusters, conflict: conflict}, nil
}
