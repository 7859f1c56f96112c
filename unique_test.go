// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import "testing"

func TestUniqueTableUnifyShares(t *testing.T) {
	u := newUniqueTable[int](16, 0.75)
	build := func(v int) func() *int { return func() *int { return &v } }
	a := u.unify(7, func(v *int) bool { return *v == 3 }, build(3))
	b := u.unify(7, func(v *int) bool { return *v == 3 }, build(3))
	if a != b {
		t.Fatal("unify should return the same pointer for matching entries")
	}
	if u.size() != 1 {
		t.Fatalf("size() = %d, want 1", u.size())
	}
}

func TestUniqueTableGCPreservesProbeChains(t *testing.T) {
	// Force three entries to collide on the same home slot so that gc must
	// correctly rebuild the probe chain rather than leaving a gap an
	// unrelated lookup could stop early on.
	u := newUniqueTable[int](4, 0.5)
	n := uint64(len(u.slots))
	build := func(v int) func() *int { return func() *int { return &v } }
	a := u.unify(0, func(v *int) bool { return *v == 1 }, build(1))
	_ = a
	u.unify(n, func(v *int) bool { return *v == 2 }, build(2))
	u.unify(2*n, func(v *int) bool { return *v == 3 }, build(3))

	if u.size() != 3 {
		t.Fatalf("size() = %d, want 3", u.size())
	}

	// Drop the middle entry; the third entry's probe chain must remain
	// reachable from its home slot afterwards.
	u.gc(func(v *int) bool { return *v != 2 })
	if u.size() != 2 {
		t.Fatalf("size() after gc = %d, want 2", u.size())
	}
	idx, found := u.insertCheck(2*n, func(v *int) bool { return *v == 3 })
	if !found {
		t.Fatal("entry 3 should still be reachable after gc")
	}
	if *u.at(idx) != 3 {
		t.Fatalf("at(idx) = %d, want 3", *u.at(idx))
	}
}
