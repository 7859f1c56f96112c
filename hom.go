// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import (
	"runtime"
	"sort"
)

// homKind tags the variant carried by a homNode. The nine user-facing
// variants of §4.2 plus the internal SaturationFixpoint rewrite target
// (§4.6) all live behind the same struct, dispatched on this tag by the
// evaluator, mirroring the way the teacher keeps every BDD operator behind
// a single kind/level/low/high shape in nodes.go rather than one Go type
// per operator.
type homKind uint8

const (
	homId homKind = iota
	homConstant
	homComposition
	homSum
	homFixpoint
	homLocal
	homInductive
	homValuesFunction
	homCons
	homSaturationFixpoint
)

// Valuation carries either a flat value set or a nested diagram, whichever
// an Inductive.Next is being asked to step over (§4.2, Inductive).
type Valuation[Id comparable, V Values[V]] struct {
	IsHier bool
	Value  V
	Nested SDD[Id, V]
}

// Inductive is the user-extension point for domain-specific homomorphisms
// (§4.2). Implementations must be immutable and side-effect free: the
// evaluator may call Next any number of times, in any order, and memoizes
// on the pair (Inductive, diagram) via Hash/Equal.
type Inductive[Id comparable, V Values[V]] interface {
	// Equal reports whether two Inductive instances denote the same
	// homomorphism, for hash-consing purposes.
	Equal(other Inductive[Id, V]) bool
	// Hash is a structural hash consistent with Equal.
	Hash() uint64
	String() string
	// Skip reports whether the homomorphism acts as identity at variable.
	Skip(variable Id) bool
	// Selector reports whether the homomorphism only ever removes
	// valuations. The evaluator does not consult it.
	Selector() bool
	// One reports how the homomorphism evaluates against |1|.
	One() bool
	// Next returns the homomorphism to apply to the successor reached
	// by crossing val at variable.
	Next(variable Id, val Valuation[Id, V], c *Context[Id, V]) (Hom[Id, V], error)
}

// ValuesFunction is the user-extension point for homomorphisms that
// transform the value set labeling a flat arc without touching its
// successor (§4.2, ValuesFunction).
type ValuesFunction[V any] interface {
	Equal(other ValuesFunction[V]) bool
	Hash() uint64
	String() string
	Selector() bool
	Apply(values V) V
}

// homNode is the hash-consed representation of a homomorphism. Only the
// fields relevant to kind are populated; the rest are zero. f, g, body,
// next, nestedHom, satF, satL, operands and satG are the pointers markLiveHoms
// walks to keep referenced homomorphisms (and the diagrams they close
// over) alive.
type homNode[Id comparable, V Values[V]] struct {
	kind    homKind
	hash    uint64
	extRefs int32

	constant *node[Id, V] // Constant

	f *homNode[Id, V] // Composition: f after g
	g *homNode[Id, V] // Composition

	operands []*homNode[Id, V] // Sum

	body *homNode[Id, V] // Fixpoint body, or Local's nested homomorphism

	variable Id // Local, ValuesFunction, Cons, SaturationFixpoint

	inductive Inductive[Id, V] // Inductive

	valuesFn ValuesFunction[V] // ValuesFunction

	hasValue  bool        // Cons: flat variant carries value, else nestedHom
	value     V           // Cons, flat variant valuation
	nestedHom *homNode[Id, V] // Cons, hierarchical variant valuation
	next      *homNode[Id, V] // Cons: homomorphism applied to the successor

	satF *homNode[Id, V]   // SaturationFixpoint: operands that skip this level
	satL *homNode[Id, V]   // SaturationFixpoint: operand acting on the nested level
	satG []*homNode[Id, V] // SaturationFixpoint: operands acting at this level
}

// Hom is an opaque, ref-counted handle onto a canonical homomorphism node,
// the Hom-side counterpart of SDD in node.go.
type Hom[Id comparable, V Values[V]] struct {
	n    *homNode[Id, V]
	keep *homHandle[Id, V]
}

type homHandle[Id comparable, V Values[V]] struct {
	n *homNode[Id, V]
}

func wrapHom[Id comparable, V Values[V]](n *homNode[Id, V]) Hom[Id, V] {
	n.extRefs++
	h := &homHandle[Id, V]{n: n}
	runtime.SetFinalizer(h, func(h *homHandle[Id, V]) { h.n.extRefs-- })
	return Hom[Id, V]{n: n, keep: h}
}

// Equal reports whether f and g denote the same homomorphism.
func (f Hom[Id, V]) Equal(g Hom[Id, V]) bool { return f.n == g.n }

func (f Hom[Id, V]) String() string {
	switch f.n.kind {
	case homId:
		return "Id"
	case homConstant:
		return "Constant"
	case homComposition:
		return "(" + f.n.f.hom().String() + " o " + f.n.g.hom().String() + ")"
	case homSum:
		return "Sum"
	case homFixpoint:
		return "Fixpoint(" + f.n.body.hom().String() + ")"
	case homLocal:
		return "Local(" + toString(f.n.variable) + ")"
	case homInductive:
		return f.n.inductive.String()
	case homValuesFunction:
		return f.n.valuesFn.String()
	case homCons:
		return "Cons(" + toString(f.n.variable) + ")"
	case homSaturationFixpoint:
		return "SaturationFixpoint(" + toString(f.n.variable) + ")"
	}
	return "?"
}

// hom rewraps a raw *homNode without bumping the external ref count, used
// only for read-only traversal from within the package (e.g. String()).
func (n *homNode[Id, V]) hom() Hom[Id, V] { return Hom[Id, V]{n: n} }

// ------------------------------------------------------------------------
// Hash-consed constructors. Every constructor funnels through c.homs.unify
// so that structurally identical homomorphisms share one node, exactly as
// diagram nodes share one node.go entry.

func hashHomHeader(kind homKind, seed uint64) uint64 {
	return combine(combine(1099511628211, uint64(kind)+7), seed)
}

// Id returns the identity homomorphism.
func (c *Context[Id, V]) Id() Hom[Id, V] {
	h := hashHomHeader(homId, 0)
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool { return n.kind == homId },
		func() *homNode[Id, V] { return &homNode[Id, V]{kind: homId, hash: h} })
	return wrapHom(n)
}

// Constant returns the homomorphism that maps every diagram to s.
func (c *Context[Id, V]) Constant(s SDD[Id, V]) Hom[Id, V] {
	h := hashHomHeader(homConstant, s.n.hash)
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homConstant && n.constant == s.n
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homConstant, hash: h, constant: s.n}
	})
	return wrapHom(n)
}

// Composition returns the homomorphism f o g (apply g first, then f).
func (c *Context[Id, V]) Composition(f, g Hom[Id, V]) Hom[Id, V] {
	if f.n.kind == homId {
		return g
	}
	if g.n.kind == homId {
		return f
	}
	h := hashHomHeader(homComposition, combine(f.n.hash, g.n.hash))
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homComposition && n.f == f.n && n.g == g.n
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homComposition, hash: h, f: f.n, g: g.n}
	})
	return wrapHom(n)
}

// SumHom returns the homomorphism that unions the results of every operand
// (§4.2, Sum). Operands are kept sorted by hash, so the order in which they
// are passed does not change the resulting homomorphism.
func (c *Context[Id, V]) SumHom(operands ...Hom[Id, V]) Hom[Id, V] {
	raw := make([]*homNode[Id, V], len(operands))
	for i, o := range operands {
		raw[i] = o.n
	}
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].hash < raw[j].hash })
	h := hashHomHeader(homSum, 0)
	for _, n := range raw {
		h = combine(h, n.hash)
	}
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homSum && sameHomList(n.operands, raw)
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homSum, hash: h, operands: raw}
	})
	return wrapHom(n)
}

// Fixpoint returns the homomorphism that applies body repeatedly until the
// result stabilizes (§4.2, Fixpoint).
func (c *Context[Id, V]) Fixpoint(body Hom[Id, V]) Hom[Id, V] {
	h := hashHomHeader(homFixpoint, body.n.hash)
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homFixpoint && n.body == body.n
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homFixpoint, hash: h, body: body.n}
	})
	return wrapHom(n)
}

// Local returns the homomorphism that applies body to the nested diagram
// labeling arcs at variable, leaving every other level untouched (§4.2,
// Local). variable must name a hierarchical level; applying the result to
// a flat node at that level is a programmer error caught at evaluation time
// (a panic, §7). Flat and hierarchical nodes at other variables are passed
// through, with body applied further down.
func (c *Context[Id, V]) Local(variable Id, body Hom[Id, V]) Hom[Id, V] {
	h := hashHomHeader(homLocal, combine(hashString(variable), body.n.hash))
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homLocal && any(n.variable) == any(variable) && n.body == body.n
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homLocal, hash: h, variable: variable, body: body.n}
	})
	return wrapHom(n)
}

// NewInductive returns the homomorphism defined by a user-supplied
// Inductive implementation (§4.2, Inductive).
func (c *Context[Id, V]) NewInductive(ind Inductive[Id, V]) Hom[Id, V] {
	h := hashHomHeader(homInductive, ind.Hash())
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homInductive && n.inductive.Equal(ind)
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homInductive, hash: h, inductive: ind}
	})
	return wrapHom(n)
}

// NewValuesFunction returns the homomorphism that rewrites the value set
// labeling flat arcs at variable through fn, leaving successors untouched
// (§4.2, ValuesFunction).
func (c *Context[Id, V]) NewValuesFunction(variable Id, fn ValuesFunction[V]) Hom[Id, V] {
	h := hashHomHeader(homValuesFunction, combine(hashString(variable), fn.Hash()))
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homValuesFunction && any(n.variable) == any(variable) && n.valuesFn.Equal(fn)
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homValuesFunction, hash: h, variable: variable, valuesFn: fn}
	})
	return wrapHom(n)
}

// ConsFlat returns the homomorphism that, applied to s, yields the flat
// node { variable: value . s } (§4.2, Cons).
func (c *Context[Id, V]) ConsFlat(variable Id, value V, next Hom[Id, V]) Hom[Id, V] {
	h := hashHomHeader(homCons, combine(hashString(variable), combine(value.Hash(), next.n.hash)))
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homCons && any(n.variable) == any(variable) && n.hasValue &&
			n.value.Equal(value) && n.next == next.n
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homCons, hash: h, variable: variable, hasValue: true, value: value, next: next.n}
	})
	return wrapHom(n)
}

// ConsHierarchical returns the homomorphism that, applied to s, yields the
// hierarchical node { variable: nested . s }.
func (c *Context[Id, V]) ConsHierarchical(variable Id, nested Hom[Id, V], next Hom[Id, V]) Hom[Id, V] {
	h := hashHomHeader(homCons, combine(hashString(variable), combine(nested.n.hash, next.n.hash)))
	n := c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homCons && any(n.variable) == any(variable) && !n.hasValue &&
			n.nestedHom == nested.n && n.next == next.n
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homCons, hash: h, variable: variable, hasValue: false, nestedHom: nested.n, next: next.n}
	})
	return wrapHom(n)
}

func (c *Context[Id, V]) saturationFixpoint(variable Id, f, l *homNode[Id, V], g []*homNode[Id, V]) *homNode[Id, V] {
	h := hashHomHeader(homSaturationFixpoint, hashString(variable))
	if f != nil {
		h = combine(h, f.hash)
	}
	if l != nil {
		h = combine(h, l.hash)
	}
	for _, gi := range g {
		h = combine(h, gi.hash)
	}
	return c.homs.unify(h, func(n *homNode[Id, V]) bool {
		return n.kind == homSaturationFixpoint && any(n.variable) == any(variable) &&
			n.satF == f && n.satL == l && sameHomList(n.satG, g)
	}, func() *homNode[Id, V] {
		return &homNode[Id, V]{kind: homSaturationFixpoint, hash: h, variable: variable, satF: f, satL: l, satG: g}
	})
}

func sameHomList[Id comparable, V Values[V]](a, b []*homNode[Id, V]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
