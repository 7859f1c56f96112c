// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import "log"

// gcStats stores status information about garbage collections run on a
// Context, the way the teacher's gcstat/gcpoint pair in gc.go tracks
// finalizer activity across a BDD's lifetime. We piggyback on extRefs
// (bumped/decremented by the finalizers in node.go/hom.go) instead of a
// manual AddRef/DelRef pair, since Go already tracks handle reachability
// for us; what is worth recording here is how much a GC pass actually
// reclaimed.
type gcStats struct {
	history []gcPoint
}

type gcPoint struct {
	nodesBefore int
	nodesAfter  int
	homsBefore  int
	homsAfter   int
}

// recordGC runs the mark-and-sweep pass and appends a snapshot of what
// it reclaimed to c's history.
func (c *Context[Id, V]) recordGC() {
	point := gcPoint{
		nodesBefore: c.nodes.size(),
		homsBefore:  c.homs.size(),
	}
	if _LOGLEVEL > 0 {
		log.Printf("sdd: starting GC (nodes=%d homs=%d)\n", point.nodesBefore, point.homsBefore)
	}

	liveHoms := c.markLiveHoms()
	live := c.markLiveNodes(liveHoms)
	c.nodes.gc(func(n *node[Id, V]) bool { return live[n] })
	c.homs.gc(func(h *homNode[Id, V]) bool { return liveHoms[h] })

	point.nodesAfter = c.nodes.size()
	point.homsAfter = c.homs.size()
	c.stats.history = append(c.stats.history, point)

	if _LOGLEVEL > 0 {
		log.Printf("sdd: end GC (nodes=%d homs=%d)\n", point.nodesAfter, point.homsAfter)
	}
}

// GCHistory returns a snapshot of every GC pass run on c so far, oldest
// first.
func (c *Context[Id, V]) GCHistory() []gcPoint {
	out := make([]gcPoint, len(c.stats.history))
	copy(out, c.stats.history)
	return out
}
