// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import (
	"math/big"
	"testing"
)

func buildLine(c *Context[string, intValues], variable string, vals intValues) SDD[string, intValues] {
	return c.MakeFlat(variable, vals, c.One())
}

func TestSumCommutative(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2))
	b := buildLine(c, "x", ints(2, 3))
	ab, err := c.Sum(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := c.Sum(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if !ab.Equal(ba) {
		t.Fatal("Sum is not commutative")
	}
}

func TestSumIdempotent(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2, 3))
	aa, err := c.Sum(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if !aa.Equal(a) {
		t.Fatal("Sum(a, a) != a")
	}
}

func TestSumZeroIdentity(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2, 3))
	r, err := c.Sum(a, c.Zero())
	if err != nil {
		t.Fatal(err)
	}
	if !r.Equal(a) {
		t.Fatal("Sum(a, |0|) != a")
	}
}

func TestIntersectionSelf(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2, 3))
	r, err := c.Intersection(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Equal(a) {
		t.Fatal("Intersection(a, a) != a")
	}
}

func TestIntersectionDisjoint(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2))
	b := buildLine(c, "x", ints(3, 4))
	r, err := c.Intersection(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsZero() {
		t.Fatal("Intersection of disjoint value sets should be |0|")
	}
}

func TestDifferenceSelfIsZero(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2, 3))
	r, err := c.Difference(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsZero() {
		t.Fatal("Difference(a, a) should be |0|")
	}
}

func TestDifferenceUnionReconstructsSum(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2, 3))
	b := buildLine(c, "x", ints(2, 3, 4))
	diff, err := c.Difference(a, b)
	if err != nil {
		t.Fatal(err)
	}
	inter, err := c.Intersection(a, b)
	if err != nil {
		t.Fatal(err)
	}
	rebuilt, err := c.Sum(diff, inter)
	if err != nil {
		t.Fatal(err)
	}
	if !rebuilt.Equal(a) {
		t.Fatal("(a - b) + (a n b) should reconstruct a")
	}
}

func TestSizeFlat(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2, 3))
	if got := c.Size(a); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("Size = %v, want 3", got)
	}
}

func TestSizeTerminals(t *testing.T) {
	c := NewContext[string, intValues]()
	if got := c.Size(c.Zero()); got.Sign() != 0 {
		t.Fatalf("Size(|0|) = %v, want 0", got)
	}
	if got := c.Size(c.One()); got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("Size(|1|) = %v, want 1", got)
	}
}

func TestPathsEnumeration(t *testing.T) {
	c := NewContext[string, intValues]()
	a := buildLine(c, "x", ints(1, 2))
	var count int
	err := c.Paths(a, func(path []PathStep[string, intValues]) error {
		count++
		if len(path) != 1 {
			t.Fatalf("unexpected path length %d", len(path))
		}
		if path[0].Variable != "x" {
			t.Fatalf("unexpected variable %v", path[0].Variable)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected a single path (one flat arc), got %d", count)
	}
}

func TestPathsHierarchical(t *testing.T) {
	c := NewContext[string, intValues]()
	nested := buildLine(c, "y", ints(1))
	top := c.MakeHierarchical("x", nested, c.One())
	var seenHier bool
	err := c.Paths(top, func(path []PathStep[string, intValues]) error {
		if len(path) != 1 || !path[0].IsHier {
			t.Fatalf("expected a single hierarchical step, got %v", path)
		}
		seenHier = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !seenHier {
		t.Fatal("did not observe the hierarchical path")
	}
}
