// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

// Context owns the unique tables and operation caches shared by every
// diagram and homomorphism built from it (§3 Lifecycle, §5). A Context is
// cheap to copy (it is a pointer) but all copies share the same underlying
// tables: use a Context from a single goroutine at a time, the way the
// teacher's *buddy/*hudd receiver is not safe for concurrent mutation.
//
// Multiple Contexts may run independently on different threads provided
// they never exchange diagrams between each other, since cross-context
// diagrams would violate canonicity (§5).
type Context[Id comparable, V Values[V]] struct {
	cfg *configs

	zero *node[Id, V]
	one  *node[Id, V]

	nodes *uniqueTable[node[Id, V]]
	homs  *uniqueTable[homNode[Id, V]]

	algebra      *opCache[algKey[Id, V], *node[Id, V]]
	eval         *opCache[evalKey[Id, V], *node[Id, V]]
	rewriteCache *opCache[*homNode[Id, V], *homNode[Id, V]]

	interrupted bool
	err         error

	stats gcStats
}

// NewContext creates a fresh Context, with its own unique tables and
// caches, sized according to opts (see config.go).
func NewContext[Id comparable, V Values[V]](opts ...Option) *Context[Id, V] {
	cfg := makeconfigs()
	for _, opt := range opts {
		opt(cfg)
	}
	c := &Context[Id, V]{cfg: cfg}
	c.nodes = newUniqueTable[node[Id, V]](cfg.tablesize, cfg.maxLoadFactor)
	c.homs = newUniqueTable[homNode[Id, V]](cfg.tablesize, cfg.maxLoadFactor)
	c.algebra = newOpCache[algKey[Id, V], *node[Id, V]](cfg.cachesize)
	c.eval = newOpCache[evalKey[Id, V], *node[Id, V]](cfg.cachesize)
	c.rewriteCache = newOpCache[*homNode[Id, V], *homNode[Id, V]](cfg.cachesize)
	c.zero = &node[Id, V]{kind: kindZero, hash: hashTerminal(kindZero)}
	c.one = &node[Id, V]{kind: kindOne, hash: hashTerminal(kindOne)}
	return c
}

// Zero returns the |0| terminal (the empty set).
func (c *Context[Id, V]) Zero() SDD[Id, V] { return wrap(c.zero) }

// One returns the |1| terminal (the set containing the empty tuple).
func (c *Context[Id, V]) One() SDD[Id, V] { return wrap(c.one) }

// Error returns the last error recorded on the context, or nil.
func (c *Context[Id, V]) Error() error { return c.err }

func (c *Context[Id, V]) seterror(err error) error {
	c.err = err
	return err
}

// Interrupt raises the external abort signal described in §5: the next
// cache lookup on this context returns errInterrupt, unwinding every
// in-flight evaluation without committing any cache entry. The context
// remains usable afterwards; call Resume to clear the flag.
func (c *Context[Id, V]) Interrupt() { c.interrupted = true }

// Resume clears a prior Interrupt, making the context usable again.
func (c *Context[Id, V]) Resume() { c.interrupted = false }

// checkInterrupt is consulted from the cache lookup path of the algebra and
// eval caches; Rewrite does not consult it.
func (c *Context[Id, V]) checkInterrupt() error {
	if c.interrupted {
		return errInterrupt
	}
	return nil
}

// GC reclaims diagram and homomorphism nodes unreferenced by any user handle
// and not retained by a live cache entry (§3 Lifecycle, §5 Resource
// policy). It is manual, mirroring the teacher's gbc in gc.go, except we
// piggyback on the Go runtime's own reachability via the extRefs counter
// bumped/decremented by finalizers (see node.go/hom.go) instead of
// reimplementing reference counting from scratch.
func (c *Context[Id, V]) GC() {
	c.recordGC()
}

// markLiveNodes computes the set of diagrams reachable from user handles,
// the algebra/eval caches, and the constant diagram closed over by each hom
// in liveHoms (a Constant hom keeps its diagram alive the same way a
// Composition keeps its f/g operands alive).
func (c *Context[Id, V]) markLiveNodes(liveHoms map[*homNode[Id, V]]bool) map[*node[Id, V]]bool {
	live := make(map[*node[Id, V]]bool)
	var mark func(n *node[Id, V])
	mark = func(n *node[Id, V]) {
		if n == nil || live[n] {
			return
		}
		live[n] = true
		switch n.kind {
		case kindFlat:
			for _, a := range n.flat {
				mark(a.succ)
			}
		case kindHier:
			for _, a := range n.hier {
				mark(a.val)
				mark(a.succ)
			}
		}
	}
	for i := range c.nodes.slots {
		s := &c.nodes.slots[i]
		if s.used && s.val.extRefs > 0 {
			mark(s.val)
		}
	}
	for _, e := range c.algebra.entries {
		mark(e.result)
	}
	for _, e := range c.eval.entries {
		mark(e.result)
	}
	for h := range liveHoms {
		mark(h.constant)
	}
	return live
}

func (c *Context[Id, V]) markLiveHoms() map[*homNode[Id, V]]bool {
	live := make(map[*homNode[Id, V]]bool)
	var mark func(h *homNode[Id, V])
	mark = func(h *homNode[Id, V]) {
		if h == nil || live[h] {
			return
		}
		live[h] = true
		mark(h.f)
		mark(h.g)
		mark(h.body)
		mark(h.next)
		mark(h.nestedHom)
		mark(h.satF)
		mark(h.satL)
		for _, op := range h.operands {
			mark(op)
		}
		for _, g := range h.satG {
			mark(g)
		}
	}
	for i := range c.homs.slots {
		s := &c.homs.slots[i]
		if s.used && s.val.extRefs > 0 {
			mark(s.val)
		}
	}
	for _, e := range c.rewriteCache.entries {
		mark(e.result)
	}
	return live
}
