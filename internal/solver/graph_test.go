package solver

import (
	"errors"
	"testing"
)

func TestBuildGraph_TransitiveClusters(t *testing.T) {
	// (0,1) and (1,2) compatible: transitivity forces {0,1,2} together.
	g, err := BuildGraph(5, 4, [][2]int{{0, 1}, {1, 2}}, nil)
	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if len(g.Clusters) != 3 {
		t.Fatalf("Expected 3 clusters ({0,1,2}, {3}, {4}). Got: %d", len(g.Clusters))
	}
	if len(g.Clusters[0]) != 3 || g.Clusters[0][0] != 0 || g.Clusters[0][2] != 2 {
		t.Errorf("Expected first cluster {0,1,2}. Got: %v", g.Clusters[0])
	}
	if g.ClusterOf(1) != g.ClusterOf(2) {
		t.Errorf("Expected persons 1 and 2 in the same cluster")
	}
}

func TestBuildGraph_ClusterConflictRelation(t *testing.T) {
	// Incompatibility between members of two clusters makes the clusters
	// themselves mutually exclusive.
	g, err := BuildGraph(4, 4, [][2]int{{0, 1}, {2, 3}}, [][2]int{{1, 2}})
	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if len(g.Clusters) != 2 {
		t.Fatalf("Expected 2 clusters. Got: %d", len(g.Clusters))
	}
	if !g.Conflicts(0, 1) || !g.Conflicts(1, 0) {
		t.Errorf("Expected clusters {0,1} and {2,3} to conflict")
	}
}

func TestBuildGraph_PairInBothRelations(t *testing.T) {
	_, err := BuildGraph(4, 4, [][2]int{{0, 1}}, [][2]int{{1, 0}})
	var c *Contradiction
	if !errors.As(err, &c) {
		t.Fatalf("Expected *Contradiction. Got: %v", err)
	}
	if c.Kind != ContradictionBothRelations {
		t.Errorf("Expected ContradictionBothRelations. Got: %v", c.Kind)
	}
	if c.PersonA != 0 || c.PersonB != 1 {
		t.Errorf("Expected offending pair (0, 1). Got: (%d, %d)", c.PersonA, c.PersonB)
	}
}

func TestBuildGraph_ClusterOverflow(t *testing.T) {
	// {0,1,2,3} all mutually compatible at capacity 3: rejected analytically,
	// never attempted as satisfiable.
	_, err := BuildGraph(4, 3, [][2]int{{0, 1}, {1, 2}, {2, 3}}, nil)
	var c *Contradiction
	if !errors.As(err, &c) {
		t.Fatalf("Expected *Contradiction. Got: %v", err)
	}
	if c.Kind != ContradictionClusterOverflow {
		t.Errorf("Expected ContradictionClusterOverflow. Got: %v", c.Kind)
	}
	if len(c.Cluster) != 4 {
		t.Errorf("Expected offending cluster of size 4. Got: %v", c.Cluster)
	}
}

func TestBuildGraph_ConflictInsideCluster(t *testing.T) {
	// 0-1 and 1-2 compatible pulls 0 and 2 together, but 0/2 are marked
	// incompatible: a direct contradiction.
	_, err := BuildGraph(3, 3, [][2]int{{0, 1}, {1, 2}}, [][2]int{{0, 2}})
	var c *Contradiction
	if !errors.As(err, &c) {
		t.Fatalf("Expected *Contradiction. Got: %v", err)
	}
	if c.Kind != ContradictionConflictInCluster {
		t.Errorf("Expected ContradictionConflictInCluster. Got: %v", c.Kind)
	}
}

func TestBuildGraph_RejectsOutOfRangePair(t *testing.T) {
	_, err := BuildGraph(3, 3, [][2]int{{0, 7}}, nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for out-of-range id. Got: %v", err)
	}
}

func TestBuildGraph_RejectsSelfPair(t *testing.T) {
	_, err := BuildGraph(3, 3, nil, [][2]int{{1, 1}})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for self pair. Got: %v", err)
	}
}
