// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import "testing"

func TestIdHashConsed(t *testing.T) {
	c := NewContext[string, intValues]()
	if !c.Id().Equal(c.Id()) {
		t.Fatal("Id() should be hash-consed to a single instance")
	}
}

func TestConstantHashConsed(t *testing.T) {
	c := NewContext[string, intValues]()
	one := c.One()
	if !c.Constant(one).Equal(c.Constant(one)) {
		t.Fatal("Constant(one) should be hash-consed to a single instance")
	}
	zero := c.Zero()
	if c.Constant(one).Equal(c.Constant(zero)) {
		t.Fatal("Constant(one) and Constant(zero) must be distinct")
	}
}

func TestCompositionWithIdIsAbsorbed(t *testing.T) {
	c := NewContext[string, intValues]()
	f := c.Constant(c.One())
	if !c.Composition(c.Id(), f).Equal(f) {
		t.Fatal("Composition(Id, f) should equal f")
	}
	if !c.Composition(f, c.Id()).Equal(f) {
		t.Fatal("Composition(f, Id) should equal f")
	}
}

func TestSumHomOrderIndependentHash(t *testing.T) {
	c := NewContext[string, intValues]()
	f := c.Constant(c.One())
	g := c.Id()
	a := c.SumHom(f, g)
	b := c.SumHom(g, f)
	if !a.Equal(b) {
		t.Fatal("SumHom should be hash-consed regardless of operand order")
	}
}

func TestFixpointHashConsed(t *testing.T) {
	c := NewContext[string, intValues]()
	body := c.Id()
	if !c.Fixpoint(body).Equal(c.Fixpoint(body)) {
		t.Fatal("Fixpoint(body) should be hash-consed")
	}
}

func TestLocalHashConsed(t *testing.T) {
	c := NewContext[string, intValues]()
	body := c.Id()
	if !c.Local("x", body).Equal(c.Local("x", body)) {
		t.Fatal("Local(x, body) should be hash-consed")
	}
	if c.Local("x", body).Equal(c.Local("y", body)) {
		t.Fatal("Local at different variables must not be shared")
	}
}

func TestConsFlatHashConsed(t *testing.T) {
	c := NewContext[string, intValues]()
	next := c.Id()
	a := c.ConsFlat("x", ints(1, 2), next)
	b := c.ConsFlat("x", ints(2, 1), next)
	if !a.Equal(b) {
		t.Fatal("ConsFlat should be hash-consed up to value-set equality")
	}
}
