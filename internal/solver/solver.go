package solver

import (
	"sort"
	"time"
)

// Partition Solver
//
// Assigns every cluster to exactly one of k groups such that group loads
// stay within capacity and mutually-incompatible clusters land in different
// groups. This is a pure feasibility search: the first satisfying
// assignment wins, there is no objective.
//
// The search is backtracking with constraint propagation, in the same shape
// as the engine's other exhaustive matchers: one decision per cluster,
// pruning on capacity and conflicts at every node, and a hard node/walltime
// budget so an adversarial instance can never wedge a request.
//
// Symmetry breaking: groups are interchangeable, so a naive search explores
// every relabeling of the same partition. A cluster may only be placed into
// an already-used group or the single next unused one ("first open slot"),
// which collapses each family of k! equivalent labelings to one.

// Status is the three-valued outcome of a solve.
type Status int

const (
	// StatusSatisfiable: a concrete partition was found.
	StatusSatisfiable Status = iota
	// StatusInfeasible: the search space was exhausted with no solution.
	StatusInfeasible
	// StatusUnknown: the budget ran out before either proof. Retryable with
	// a larger budget; never to be conflated with infeasibility.
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusSatisfiable:
		return "satisfiable"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Options bounds a single solve. A zero Timeout disables the wall-clock
// check; MaxNodes is always enforced.
type Options struct {
	MaxNodes int
	Timeout  time.Duration
}

var DefaultOptions = Options{
	MaxNodes: 2_000_000,
	Timeout:  5 * time.Second,
}

// Result is the outcome of one solve. Groups holds ascending person ids per
// group and is only populated for StatusSatisfiable; no partial assignment
// is ever returned otherwise. Nodes is the number of search decisions made.
type Result struct {
	Status Status
	Groups [][]int
	Reason string
	Nodes  int
}

type searchState struct {
	g     *Graph
	k     int
	order []int // cluster indices, largest cluster first

	assignment   []int   // cluster index -> group, -1 while undecided
	load         []int   // persons per group
	groupMembers [][]int // cluster indices per group
	used         int     // groups touched so far

	requireNonEmpty bool
	maxNodes        int
	deadline        time.Time
	nodes           int
	aborted         bool
}

// Solve searches for an assignment of g's clusters into k groups. The Graph
// is treated as read-only; all mutable search state is local to this call.
func Solve(g *Graph, k int, opts Options) Result {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultOptions.MaxNodes
	}

	s := &searchState{
		g:            g,
		k:            k,
		assignment:   make([]int, len(g.Clusters)),
		load:         make([]int, k),
		groupMembers: make([][]int, k),
		maxNodes:     opts.MaxNodes,
		// Every group must receive at least one cluster whenever enough
		// clusters exist; empty groups are only a fallback when k exceeds
		// the cluster count.
		requireNonEmpty: len(g.Clusters) >= k,
	}
	if opts.Timeout > 0 {
		s.deadline = time.Now().Add(opts.Timeout)
	}
	for i := range s.assignment {
		s.assignment[i] = -1
	}

	// Place large clusters first: they have the fewest feasible slots, so
	// failing on them early cuts the deepest subtrees.
	s.order = make([]int, len(g.Clusters))
	for i := range s.order {
		s.order[i] = i
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		return len(g.Clusters[s.order[a]]) > len(g.Clusters[s.order[b]])
	})

	if s.place(0) {
		return Result{Status: StatusSatisfiable, Groups: s.extractGroups(), Nodes: s.nodes}
	}
	if s.aborted {
		return Result{
			Status: StatusUnknown,
			Reason: "search budget exhausted before a proof either way",
			Nodes:  s.nodes,
		}
	}
	return Result{
		Status: StatusInfeasible,
		Reason: "no assignment satisfies the capacity and incompatibility constraints",
		Nodes:  s.nodes,
	}
}

func (s *searchState) place(pos int) bool {
	if pos == len(s.order) {
		return !s.requireNonEmpty || s.used == s.k
	}

	ci := s.order[pos]
	size := len(s.g.Clusters[ci])

	// First-open-slot rule: groups beyond the next unused index are
	// relabelings of assignments already explored.
	limit := s.used
	if limit >= s.k {
		limit = s.k - 1
	}

	for group := 0; group <= limit; group++ {
		s.nodes++
		if s.nodes > s.maxNodes || (!s.deadline.IsZero() && s.nodes%1024 == 0 && time.Now().After(s.deadline)) {
			s.aborted = true
			return false
		}

		if s.load[group]+size > s.g.Capacity {
			continue
		}
		if s.conflictsWithGroup(ci, group) {
			continue
		}

		usedAfter := s.used
		if group == s.used {
			usedAfter++
		}
		// Each remaining cluster can open at most one new group; bail out
		// if the still-empty groups can no longer all be filled.
		if s.requireNonEmpty && len(s.order)-pos-1 < s.k-usedAfter {
			continue
		}

		prevUsed := s.used
		s.assignment[ci] = group
		s.load[group] += size
		s.groupMembers[group] = append(s.groupMembers[group], ci)
		s.used = usedAfter

		if s.place(pos + 1) {
			return true
		}
		if s.aborted {
			return false
		}

		s.used = prevUsed
		s.groupMembers[group] = s.groupMembers[group][:len(s.groupMembers[group])-1]
		s.load[group] -= size
		s.assignment[ci] = -1
	}
	return false
}

func (s *searchState) conflictsWithGroup(ci, group int) bool {
	for _, other := range s.groupMembers[group] {
		if s.g.Conflicts(ci, other) {
			return true
		}
	}
	return false
}

// extractGroups flattens the cluster assignment into person-id groups and
// relabels them canonically: groups ordered by their smallest member, empty
// groups last. Identical inputs therefore always produce identical output
// regardless of the path the search took.
func (s *searchState) extractGroups() [][]int {
	groups := make([][]int, s.k)
	for group, members := range s.groupMembers {
		for _, ci := range members {
			groups[group] = append(groups[group], s.g.Clusters[ci]...)
		}
		sort.Ints(groups[group])
	}
	sort.SliceStable(groups, func(a, b int) bool {
		if len(groups[a]) == 0 {
			return false
		}
		if len(groups[b]) == 0 {
			return true
		}
		return groups[a][0] < groups[b][0]
	})
	return groups
}

// Partition is the single entry point the surrounding system calls: it
// sizes the groups, builds the constraint graph, and runs the search.
// Configuration errors and analytic contradictions come back as errors
// (the latter as *Contradiction); Result covers the three search outcomes.
func Partition(n, capacity int, compatible, incompatible [][2]int, opts Options) (Result, error) {
	k, err := GroupCount(n, capacity)
	if err != nil {
		return Result{}, err
	}

	g, err := BuildGraph(n, capacity, compatible, incompatible)
	if err != nil {
		return Result{}, err
	}

	// Degenerate single group: contradiction checks above already ran, so
	// the only remaining obstacle is any incompatibility at all.
	if k == 1 {
		if len(incompatible) > 0 {
			return Result{
				Status: StatusInfeasible,
				Reason: "a single group cannot separate incompatible persons",
			}, nil
		}
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return Result{Status: StatusSatisfiable, Groups: [][]int{all}}, nil
	}

	return Solve(g, k, opts), nil
}
