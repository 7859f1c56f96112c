// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import (
	"fmt"
	"math/big"
	"sort"
)

// opKind tags the three diagram-algebra operations memoized in the algebra
// cache (§4.3). difference is not commutative but follows the same cache
// shape as sum/intersection.
type opKind uint8

const (
	opSum opKind = iota
	opIntersection
	opDifference
)

// algKey is the memoization key for the algebra cache: an operator plus an
// (ordered) pair of canonical node pointers.
type algKey[Id comparable, V Values[V]] struct {
	op   opKind
	a, b *node[Id, V]
}

// ------------------------------------------------------------------------
// Canonical constructors (§6.3)

// MakeFlat builds (or retrieves) the flat node denoting
// { v . t : v in values, t in succ }, applying square union. A single arc
// with an empty valuation or a |0| successor collapses to |0| without going
// through the general square-union path, per §4.3.
func (c *Context[Id, V]) MakeFlat(variable Id, values V, succ SDD[Id, V]) SDD[Id, V] {
	if values.Empty() || succ.n.kind == kindZero {
		return c.Zero()
	}
	return c.MakeFromFlatAlpha(variable, []FlatArc[Id, V]{{Valuation: values, Successor: succ}})
}

// MakeHierarchical builds (or retrieves) the hierarchical node denoting
// { v . t : v in nested, t in succ }.
func (c *Context[Id, V]) MakeHierarchical(variable Id, nested SDD[Id, V], succ SDD[Id, V]) SDD[Id, V] {
	if nested.n.kind == kindZero || succ.n.kind == kindZero {
		return c.Zero()
	}
	return c.MakeFromHierarchicalAlpha(variable, []HierArc[Id, V]{{Valuation: nested, Successor: succ}})
}

// MakeFromFlatAlpha normalizes an arbitrary arc list via square union and
// returns the canonical node, or |0| if the normalized alpha is empty.
func (c *Context[Id, V]) MakeFromFlatAlpha(variable Id, arcs []FlatArc[Id, V]) SDD[Id, V] {
	raw := make([]flatArc[Id, V], len(arcs))
	for i, a := range arcs {
		raw[i] = flatArc[Id, V]{val: a.Valuation, succ: a.Successor.n}
	}
	merged := squareUnionFlat(c, raw)
	if len(merged) == 0 {
		return c.Zero()
	}
	return wrap(c.internFlat(variable, merged))
}

// MakeFromHierarchicalAlpha normalizes an arbitrary hierarchical arc list.
func (c *Context[Id, V]) MakeFromHierarchicalAlpha(variable Id, arcs []HierArc[Id, V]) SDD[Id, V] {
	raw := make([]hierArc[Id, V], len(arcs))
	for i, a := range arcs {
		raw[i] = hierArc[Id, V]{val: a.Valuation.n, succ: a.Successor.n}
	}
	merged, err := squareUnionHier(c, raw)
	if err != nil {
		// squareUnionHier only fails if a recursive sum of nested diagrams
		// fails, which cannot happen for the pure algebra (no TopError
		// source without a user Values implementation raising one); keep
		// the assertion narrow and surface it as a programmer error.
		panic(err)
	}
	if len(merged) == 0 {
		return c.Zero()
	}
	return wrap(c.internHier(variable, merged))
}

func (c *Context[Id, V]) internFlat(variable Id, arcs []flatArc[Id, V]) *node[Id, V] {
	h := hashFlatNode(variable, arcs)
	return c.nodes.unify(h, func(n *node[Id, V]) bool {
		return n.kind == kindFlat && n.variable == variable && sameFlatArcs(n.flat, arcs)
	}, func() *node[Id, V] {
		return &node[Id, V]{kind: kindFlat, variable: variable, flat: arcs, hash: h}
	})
}

func (c *Context[Id, V]) internHier(variable Id, arcs []hierArc[Id, V]) *node[Id, V] {
	h := hashHierNode(variable, arcs)
	return c.nodes.unify(h, func(n *node[Id, V]) bool {
		return n.kind == kindHier && n.variable == variable && sameHierArcs(n.hier, arcs)
	}, func() *node[Id, V] {
		return &node[Id, V]{kind: kindHier, variable: variable, hier: arcs, hash: h}
	})
}

func hashFlatNode[Id comparable, V Values[V]](variable Id, arcs []flatArc[Id, V]) uint64 {
	h := combine(hashTerminal(kindFlat), hashString(variable))
	for _, a := range arcs {
		h = combine(h, a.val.Hash())
		h = combine(h, a.succ.hash)
	}
	return h
}

func hashHierNode[Id comparable, V Values[V]](variable Id, arcs []hierArc[Id, V]) uint64 {
	h := combine(hashTerminal(kindHier), hashString(variable))
	for _, a := range arcs {
		h = combine(h, a.val.hash)
		h = combine(h, a.succ.hash)
	}
	return h
}

func sameFlatArcs[Id comparable, V Values[V]](a, b []flatArc[Id, V]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].succ != b[i].succ || !a[i].val.Equal(b[i].val) {
			return false
		}
	}
	return true
}

func sameHierArcs[Id comparable, V Values[V]](a, b []hierArc[Id, V]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].succ != b[i].succ || a[i].val != b[i].val {
			return false
		}
	}
	return true
}

// ------------------------------------------------------------------------
// Square union (§4.3): the single canonicalization choke-point. It merges
// arcs that share a successor (union their valuations) and arcs that share
// a valuation (union their successors), to a fixpoint, then drops arcs left
// with an empty valuation and sorts the result into a canonical order.

func squareUnionFlat[Id comparable, V Values[V]](c *Context[Id, V], arcs []flatArc[Id, V]) []flatArc[Id, V] {
	for {
		bySucc := make(map[*node[Id, V]]int, len(arcs))
		bySuccMerged := make([]flatArc[Id, V], 0, len(arcs))
		changed := false
		for _, a := range arcs {
			if idx, ok := bySucc[a.succ]; ok {
				bySuccMerged[idx].val = bySuccMerged[idx].val.Union(a.val)
				changed = true
				continue
			}
			bySucc[a.succ] = len(bySuccMerged)
			bySuccMerged = append(bySuccMerged, a)
		}
		arcs = bySuccMerged

		byVal := make([]flatArc[Id, V], 0, len(arcs))
		for _, a := range arcs {
			merged := false
			for i := range byVal {
				if byVal[i].val.Equal(a.val) {
					byVal[i].succ = mustSumNodes(c, byVal[i].succ, a.succ)
					merged = true
					changed = true
					break
				}
			}
			if !merged {
				byVal = append(byVal, a)
			}
		}
		arcs = byVal
		if !changed {
			break
		}
	}
	out := make([]flatArc[Id, V], 0, len(arcs))
	for _, a := range arcs {
		if !a.val.Empty() && a.succ.kind != kindZero {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].val.Hash() != out[j].val.Hash() {
			return out[i].val.Hash() < out[j].val.Hash()
		}
		return out[i].succ.hash < out[j].succ.hash
	})
	return out
}

func squareUnionHier[Id comparable, V Values[V]](c *Context[Id, V], arcs []hierArc[Id, V]) ([]hierArc[Id, V], error) {
	for {
		bySucc := make(map[*node[Id, V]]int, len(arcs))
		bySuccMerged := make([]hierArc[Id, V], 0, len(arcs))
		changed := false
		for _, a := range arcs {
			if idx, ok := bySucc[a.succ]; ok {
				v, err := c.sumNodes(bySuccMerged[idx].val, a.val)
				if err != nil {
					return nil, err
				}
				bySuccMerged[idx].val = v
				changed = true
				continue
			}
			bySucc[a.succ] = len(bySuccMerged)
			bySuccMerged = append(bySuccMerged, a)
		}
		arcs = bySuccMerged

		byVal := make(map[*node[Id, V]]int, len(arcs))
		byValMerged := make([]hierArc[Id, V], 0, len(arcs))
		for _, a := range arcs {
			if idx, ok := byVal[a.val]; ok {
				s, err := c.sumNodes(byValMerged[idx].succ, a.succ)
				if err != nil {
					return nil, err
				}
				byValMerged[idx].succ = s
				changed = true
				continue
			}
			byVal[a.val] = len(byValMerged)
			byValMerged = append(byValMerged, a)
		}
		arcs = byValMerged
		if !changed {
			break
		}
	}
	out := make([]hierArc[Id, V], 0, len(arcs))
	for _, a := range arcs {
		if a.val.kind != kindZero && a.succ.kind != kindZero {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].val.hash != out[j].val.hash {
			return out[i].val.hash < out[j].val.hash
		}
		return out[i].succ.hash < out[j].succ.hash
	})
	return out, nil
}

func mustSumNodes[Id comparable, V Values[V]](c *Context[Id, V], a, b *node[Id, V]) *node[Id, V] {
	n, err := c.sumNodes(a, b)
	if err != nil {
		// sum of two already-flat successors at the same level cannot
		// raise a TopError that the Values layer didn't already raise
		// while building a, b themselves; treat as a programmer error.
		panic(err)
	}
	return n
}

// ------------------------------------------------------------------------
// Diagram algebra (§4.3)

// Sum returns the union of a and b.
func (c *Context[Id, V]) Sum(a, b SDD[Id, V]) (SDD[Id, V], error) {
	n, err := c.sumNodes(a.n, b.n)
	if err != nil {
		return SDD[Id, V]{}, err
	}
	return wrap(n), nil
}

// Intersection returns the intersection of a and b.
func (c *Context[Id, V]) Intersection(a, b SDD[Id, V]) (SDD[Id, V], error) {
	n, err := c.interNodes(a.n, b.n)
	if err != nil {
		return SDD[Id, V]{}, err
	}
	return wrap(n), nil
}

// Difference returns a minus b.
func (c *Context[Id, V]) Difference(a, b SDD[Id, V]) (SDD[Id, V], error) {
	n, err := c.diffNodes(a.n, b.n)
	if err != nil {
		return SDD[Id, V]{}, err
	}
	return wrap(n), nil
}

func checkLevel[Id comparable, V Values[V]](a, b *node[Id, V]) {
	if a.kind != b.kind {
		panic(fmt.Sprintf("sdd: operands at different levels (%v, %v)", a.kind, b.kind))
	}
	if a.kind == kindFlat || a.kind == kindHier {
		if any(a.variable) != any(b.variable) {
			panic(fmt.Sprintf("sdd: operands at different variables (%v, %v)", a.variable, b.variable))
		}
	}
}

func (c *Context[Id, V]) sumNodes(a, b *node[Id, V]) (*node[Id, V], error) {
	if a == b {
		return a, nil
	}
	if a.kind == kindZero {
		return b, nil
	}
	if b.kind == kindZero {
		return a, nil
	}
	checkLevel(a, b)
	if err := c.checkInterrupt(); err != nil {
		return nil, err
	}
	key := algKey[Id, V]{op: opSum, a: a, b: b}
	return c.algebra.compute(key, func() (*node[Id, V], error) {
		if a.kind == kindFlat {
			arcs := append(append([]flatArc[Id, V]{}, a.flat...), b.flat...)
			merged := squareUnionFlat(c, arcs)
			if len(merged) == 0 {
				return c.zero, nil
			}
			return c.internFlat(a.variable, merged), nil
		}
		arcs := append(append([]hierArc[Id, V]{}, a.hier...), b.hier...)
		merged, err := squareUnionHier(c, arcs)
		if err != nil {
			return nil, err
		}
		if len(merged) == 0 {
			return c.zero, nil
		}
		return c.internHier(a.variable, merged), nil
	})
}

func (c *Context[Id, V]) interNodes(a, b *node[Id, V]) (*node[Id, V], error) {
	if a == b {
		return a, nil
	}
	if a.kind == kindZero || b.kind == kindZero {
		return c.zero, nil
	}
	checkLevel(a, b)
	if err := c.checkInterrupt(); err != nil {
		return nil, err
	}
	key := algKey[Id, V]{op: opIntersection, a: a, b: b}
	return c.algebra.compute(key, func() (*node[Id, V], error) {
		if a.kind == kindOne {
			return a, nil
		}
		if a.kind == kindFlat {
			var arcs []flatArc[Id, V]
			for _, ai := range a.flat {
				for _, bj := range b.flat {
					v := ai.val.Intersect(bj.val)
					if v.Empty() {
						continue
					}
					s, err := c.interNodes(ai.succ, bj.succ)
					if err != nil {
						return nil, err
					}
					if s.kind == kindZero {
						continue
					}
					arcs = append(arcs, flatArc[Id, V]{val: v, succ: s})
				}
			}
			merged := squareUnionFlat(c, arcs)
			if len(merged) == 0 {
				return c.zero, nil
			}
			return c.internFlat(a.variable, merged), nil
		}
		var arcs []hierArc[Id, V]
		for _, ai := range a.hier {
			for _, bj := range b.hier {
				v, err := c.interNodes(ai.val, bj.val)
				if err != nil {
					return nil, err
				}
				if v.kind == kindZero {
					continue
				}
				s, err := c.interNodes(ai.succ, bj.succ)
				if err != nil {
					return nil, err
				}
				if s.kind == kindZero {
					continue
				}
				arcs = append(arcs, hierArc[Id, V]{val: v, succ: s})
			}
		}
		merged, err := squareUnionHier(c, arcs)
		if err != nil {
			return nil, err
		}
		if len(merged) == 0 {
			return c.zero, nil
		}
		return c.internHier(a.variable, merged), nil
	})
}

func (c *Context[Id, V]) diffNodes(a, b *node[Id, V]) (*node[Id, V], error) {
	if a == b {
		return c.zero, nil
	}
	if b.kind == kindZero {
		return a, nil
	}
	if a.kind == kindZero {
		return c.zero, nil
	}
	checkLevel(a, b)
	if err := c.checkInterrupt(); err != nil {
		return nil, err
	}
	key := algKey[Id, V]{op: opDifference, a: a, b: b}
	return c.algebra.compute(key, func() (*node[Id, V], error) {
		if a.kind == kindOne {
			return c.zero, nil
		}
		if a.kind == kindFlat {
			var arcs []flatArc[Id, V]
			for _, ai := range a.flat {
				remaining := ai.val
				for _, bj := range b.flat {
					inter := remaining.Intersect(bj.val)
					if inter.Empty() {
						continue
					}
					d, err := c.diffNodes(ai.succ, bj.succ)
					if err != nil {
						return nil, err
					}
					if d.kind != kindZero {
						arcs = append(arcs, flatArc[Id, V]{val: inter, succ: d})
					}
					remaining = remaining.Difference(bj.val)
				}
				if !remaining.Empty() {
					arcs = append(arcs, flatArc[Id, V]{val: remaining, succ: ai.succ})
				}
			}
			merged := squareUnionFlat(c, arcs)
			if len(merged) == 0 {
				return c.zero, nil
			}
			return c.internFlat(a.variable, merged), nil
		}
		var arcs []hierArc[Id, V]
		for _, ai := range a.hier {
			remaining := ai.val
			for _, bj := range b.hier {
				inter, err := c.interNodes(remaining, bj.val)
				if err != nil {
					return nil, err
				}
				if inter.kind == kindZero {
					continue
				}
				d, err := c.diffNodes(ai.succ, bj.succ)
				if err != nil {
					return nil, err
				}
				if d.kind != kindZero {
					arcs = append(arcs, hierArc[Id, V]{val: inter, succ: d})
				}
				remaining, err = c.diffNodes(remaining, bj.val)
				if err != nil {
					return nil, err
				}
			}
			if remaining.kind != kindZero {
				arcs = append(arcs, hierArc[Id, V]{val: remaining, succ: ai.succ})
			}
		}
		merged, err := squareUnionHier(c, arcs)
		if err != nil {
			return nil, err
		}
		if len(merged) == 0 {
			return c.zero, nil
		}
		return c.internHier(a.variable, merged), nil
	})
}

// Equal reports whether a and b denote the same diagram (pointer equality,
// per invariant 1).
func (c *Context[Id, V]) Equal(a, b SDD[Id, V]) bool { return a.Equal(b) }

// Sized is an optional extension a Values implementation may satisfy to let
// Size report precise cardinalities. Value-set implementations that don't
// implement it are treated as contributing a cardinality of one per arc
// (see DESIGN.md for this Open-Question resolution).
type Sized interface {
	Size() *big.Int
}

// Size returns the cardinality of the set of tuples denoted by a.
func (c *Context[Id, V]) Size(a SDD[Id, V]) *big.Int {
	memo := make(map[*node[Id, V]]*big.Int)
	var rec func(n *node[Id, V]) *big.Int
	rec = func(n *node[Id, V]) *big.Int {
		if v, ok := memo[n]; ok {
			return v
		}
		var res *big.Int
		switch n.kind {
		case kindZero:
			res = big.NewInt(0)
		case kindOne:
			res = big.NewInt(1)
		case kindFlat:
			res = big.NewInt(0)
			for _, a := range n.flat {
				res = new(big.Int).Add(res, new(big.Int).Mul(valuesSize(a.val), rec(a.succ)))
			}
		case kindHier:
			res = big.NewInt(0)
			for _, a := range n.hier {
				res = new(big.Int).Add(res, new(big.Int).Mul(rec(a.val), rec(a.succ)))
			}
		}
		memo[n] = res
		return res
	}
	return rec(a.n)
}

func valuesSize[V any](v V) *big.Int {
	if s, ok := any(v).(Sized); ok {
		return s.Size()
	}
	return big.NewInt(1)
}

// PathStep is one edge of a root-to-|1| path through a diagram, produced by
// Paths.
type PathStep[Id comparable, V Values[V]] struct {
	Variable Id
	Value    V // populated when the step crosses a flat arc
	Nested   SDD[Id, V]
	IsHier   bool
}

// Paths calls f once for every root-to-|1| path through a, in the canonical
// (sorted) arc order. Iteration stops and the error propagates if f returns
// one.
func (c *Context[Id, V]) Paths(a SDD[Id, V], f func([]PathStep[Id, V]) error) error {
	var rec func(n *node[Id, V], path []PathStep[Id, V]) error
	rec = func(n *node[Id, V], path []PathStep[Id, V]) error {
		switch n.kind {
		case kindZero:
			return nil
		case kindOne:
			cp := make([]PathStep[Id, V], len(path))
			copy(cp, path)
			return f(cp)
		case kindFlat:
			for _, a := range n.flat {
				step := PathStep[Id, V]{Variable: n.variable, Value: a.val}
				if err := rec(a.succ, append(path, step)); err != nil {
					return err
				}
			}
		case kindHier:
			for _, a := range n.hier {
				step := PathStep[Id, V]{Variable: n.variable, Nested: wrap(a.val), IsHier: true}
				if err := rec(a.succ, append(path, step)); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return rec(a.n, nil)
}
