// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

// uniqueTable is a fixed-load-factor, open-addressed hash set of pointers to
// heap-allocated payloads (§4.1). It backs hash-consing for both diagram
// nodes (node.go) and homomorphism nodes (hom.go): at most one instance per
// equivalence class ever exists, so pointer identity implies structural
// equality.
//
// It generalizes the split storage the teacher offers behind the `buddy`
// build tag (an array-backed table in bkernel.go) and the default
// implementation (a Go-map-backed table in hkernel.go): because the spec's
// Values capability is a runtime interface rather than a compile-time
// choice, a single generic open-addressed table serves both roles, sized
// once at construction and never rehashed, exactly like the array-backed
// variant.
type uniqueTable[T any] struct {
	slots []uniqueSlot[T]
	count int
}

type uniqueSlot[T any] struct {
	used bool
	hash uint64
	val  *T
}

// newUniqueTable sizes the table at creation to requestedSize/maxLoadFactor
// slots and refuses further growth; callers must provision generously.
func newUniqueTable[T any](requestedSize int, maxLoadFactor float64) *uniqueTable[T] {
	if maxLoadFactor <= 0 || maxLoadFactor >= 1 {
		maxLoadFactor = 0.75
	}
	size := primeGte(int(float64(requestedSize)/maxLoadFactor) + 1)
	return &uniqueTable[T]{slots: make([]uniqueSlot[T], size)}
}

// insertCheck is the check phase of insert_check(key, hash, eq): it probes
// the table for an entry matching hash/matches, returning its slot index and
// true on hit, or the first free slot index and false on miss. The caller
// only allocates the payload itself on a miss, before calling commit.
func (u *uniqueTable[T]) insertCheck(hash uint64, matches func(*T) bool) (int, bool) {
	n := uint64(len(u.slots))
	i := hash % n
	for {
		s := &u.slots[i]
		if !s.used {
			return int(i), false
		}
		if s.hash == hash && matches(s.val) {
			return int(i), true
		}
		i = (i + 1) % n
		if i == hash%n {
			panic("sdd: unique table full, provision a larger Tablesize")
		}
	}
}

// commit stores val at idx (obtained from a miss returned by insertCheck).
func (u *uniqueTable[T]) commit(idx int, hash uint64, val *T) {
	u.slots[idx] = uniqueSlot[T]{used: true, hash: hash, val: val}
	u.count++
}

// at returns the payload stored at idx.
func (u *uniqueTable[T]) at(idx int) *T {
	return u.slots[idx].val
}

// unify returns the existing entry matching hash/matches, or builds, stores
// and returns a fresh one via build.
func (u *uniqueTable[T]) unify(hash uint64, matches func(*T) bool, build func() *T) *T {
	idx, found := u.insertCheck(hash, matches)
	if found {
		return u.at(idx)
	}
	v := build()
	u.commit(idx, hash, v)
	return v
}

// gc drops entries for which keep returns false. Because the table uses
// plain open addressing with no tombstones, clearing a slot in place would
// break the probe chain of any surviving entry that hashed past it; we
// instead collect the survivors and reinsert them into the (unchanged-size)
// table, which preserves the "no rehash after construction" contract since
// the slot count itself never changes.
func (u *uniqueTable[T]) gc(keep func(*T) bool) {
	type survivor struct {
		hash uint64
		val  *T
	}
	survivors := make([]survivor, 0, u.count)
	for i := range u.slots {
		if u.slots[i].used && keep(u.slots[i].val) {
			survivors = append(survivors, survivor{u.slots[i].hash, u.slots[i].val})
		}
	}
	for i := range u.slots {
		u.slots[i] = uniqueSlot[T]{}
	}
	u.count = 0
	n := uint64(len(u.slots))
	for _, s := range survivors {
		i := s.hash % n
		for u.slots[i].used {
			i = (i + 1) % n
		}
		u.slots[i] = uniqueSlot[T]{used: true, hash: s.hash, val: s.val}
		u.count++
	}
}

// size returns the number of live entries.
func (u *uniqueTable[T]) size() int { return u.count }
