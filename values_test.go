// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import (
	"math/big"
	"sort"
)

// intValues is a minimal Values implementation backed by a set of ints,
// used throughout this package's tests to exercise the core without
// depending on any concrete value-set library (§1: value sets are an
// external collaborator).
type intValues map[int]struct{}

func ints(vs ...int) intValues {
	s := make(intValues, len(vs))
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

func (s intValues) Union(other intValues) intValues {
	r := make(intValues, len(s)+len(other))
	for v := range s {
		r[v] = struct{}{}
	}
	for v := range other {
		r[v] = struct{}{}
	}
	return r
}

func (s intValues) Intersect(other intValues) intValues {
	r := make(intValues)
	for v := range s {
		if _, ok := other[v]; ok {
			r[v] = struct{}{}
		}
	}
	return r
}

func (s intValues) Difference(other intValues) intValues {
	r := make(intValues)
	for v := range s {
		if _, ok := other[v]; !ok {
			r[v] = struct{}{}
		}
	}
	return r
}

func (s intValues) Empty() bool { return len(s) == 0 }

func (s intValues) Equal(other intValues) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if _, ok := other[v]; !ok {
			return false
		}
	}
	return true
}

func (s intValues) Hash() uint64 {
	sorted := s.sorted()
	var h uint64 = 1469598103934665603
	for _, v := range sorted {
		h = combine(h, uint64(v))
	}
	return h
}

func (s intValues) Size() *big.Int { return big.NewInt(int64(len(s))) }

func (s intValues) sorted() []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
