// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import "runtime"

// kind tags the variant of a diagram node, the way the teacher tags a BDD
// node implicitly through the constant addresses 0 and 1 versus an ordinary
// triplet (level, low, high); here we make the terminals first-class kinds
// since a node can also be hierarchical.
type kind uint8

const (
	kindZero kind = iota
	kindOne
	kindFlat
	kindHier
)

// flatArc is an arc of a flat node: a non-empty value set and a successor.
type flatArc[Id comparable, V Values[V]] struct {
	val  V
	succ *node[Id, V]
}

// hierArc is an arc of a hierarchical node: a non-|0| nested diagram
// valuation and a successor.
type hierArc[Id comparable, V Values[V]] struct {
	val  *node[Id, V]
	succ *node[Id, V]
}

// node is the hash-consed, immutable payload a diagram handle points to
// (Design Notes: "an arena-allocated value behind a reference-counted
// handle whose pointer equality matches its value equality by
// construction"). Exactly one of flat/hier is populated, per kind.
type node[Id comparable, V Values[V]] struct {
	kind     kind
	variable Id
	flat     []flatArc[Id, V]
	hier     []hierArc[Id, V]
	hash     uint64
	extRefs  int32 // external references held by user-facing SDD handles
}

// SDD is a reference-counted handle to an immutable, hash-consed diagram
// node (§3). The zero value is not a valid SDD; always obtain one from a
// Context constructor.
type SDD[Id comparable, V Values[V]] struct {
	n    *node[Id, V]
	keep *handle[Id, V] // non-nil for non-terminal nodes, pins extRefs via a finalizer
}

// handle is the object a finalizer is attached to, mirroring the teacher's
// retnode/nodefinalizer idiom in buddy.go/hudd.go: incrementing extRefs when
// a node escapes to user code and decrementing it only when the Go garbage
// collector reclaims the handle.
type handle[Id comparable, V Values[V]] struct {
	n *node[Id, V]
}

// wrap returns a user-facing SDD for n, bumping its external reference count
// for anything other than the two terminals (which are never collected).
func wrap[Id comparable, V Values[V]](n *node[Id, V]) SDD[Id, V] {
	if n.kind == kindZero || n.kind == kindOne {
		return SDD[Id, V]{n: n}
	}
	n.extRefs++
	h := &handle[Id, V]{n: n}
	runtime.SetFinalizer(h, func(h *handle[Id, V]) {
		h.n.extRefs--
	})
	return SDD[Id, V]{n: n, keep: h}
}

// IsZero reports whether the diagram is the |0| terminal (the empty set).
func (s SDD[Id, V]) IsZero() bool { return s.n.kind == kindZero }

// IsOne reports whether the diagram is the |1| terminal (the singleton
// empty-tuple set).
func (s SDD[Id, V]) IsOne() bool { return s.n.kind == kindOne }

// IsFlat reports whether the diagram is a flat node.
func (s SDD[Id, V]) IsFlat() bool { return s.n.kind == kindFlat }

// IsHierarchical reports whether the diagram is a hierarchical node.
func (s SDD[Id, V]) IsHierarchical() bool { return s.n.kind == kindHier }

// Variable returns the identifier labeling a (non-terminal) node.
func (s SDD[Id, V]) Variable() Id { return s.n.variable }

// Hash returns the diagram's stable structural hash.
func (s SDD[Id, V]) Hash() uint64 { return s.n.hash }

// FlatArc is a single (valuation, successor) pair of a flat node, exposed
// read-only to callers iterating via Arcs.
type FlatArc[Id comparable, V Values[V]] struct {
	Valuation V
	Successor SDD[Id, V]
}

// HierArc is a single (valuation, successor) pair of a hierarchical node.
type HierArc[Id comparable, V Values[V]] struct {
	Valuation SDD[Id, V]
	Successor SDD[Id, V]
}

// FlatArcs returns the sorted arc list of a flat node (nil otherwise).
func (s SDD[Id, V]) FlatArcs() []FlatArc[Id, V] {
	if s.n.kind != kindFlat {
		return nil
	}
	res := make([]FlatArc[Id, V], len(s.n.flat))
	for i, a := range s.n.flat {
		res[i] = FlatArc[Id, V]{Valuation: a.val, Successor: wrap(a.succ)}
	}
	return res
}

// HierArcs returns the sorted arc list of a hierarchical node (nil
// otherwise).
func (s SDD[Id, V]) HierArcs() []HierArc[Id, V] {
	if s.n.kind != kindHier {
		return nil
	}
	res := make([]HierArc[Id, V], len(s.n.hier))
	for i, a := range s.n.hier {
		res[i] = HierArc[Id, V]{Valuation: wrap(a.val), Successor: wrap(a.succ)}
	}
	return res
}

// Equal reports whether two diagrams denote the same node. Canonicity
// (invariant 1) makes this a pointer comparison.
func (s SDD[Id, V]) Equal(other SDD[Id, V]) bool {
	return s.n == other.n
}
