// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import "testing"

func TestRewritePreservesSemantics(t *testing.T) {
	c := NewContext[string, intValues]()
	order, err := NewOrderBuilder[string]().Push("x").Build()
	if err != nil {
		t.Fatal(err)
	}
	a := buildLine(c, "x", ints(1, 2))

	h := c.Fixpoint(c.SumHom(c.Id()))
	want, err := c.Eval(h, a)
	if err != nil {
		t.Fatal(err)
	}

	rewritten := c.Rewrite(h, order)
	if rewritten.n.kind != homSaturationFixpoint {
		t.Fatalf("expected a SaturationFixpoint node, got kind %v", rewritten.n.kind)
	}
	got, err := c.Eval(rewritten, a)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatal("Rewrite changed the evaluation result")
	}
}

// skipInductive always skips: its only purpose is to occupy an F slot
// distinct from Id so partitionOperands sees more than one F operand.
type skipInductive struct{ tag string }

func (s skipInductive) Equal(other Inductive[string, intValues]) bool {
	o, ok := other.(skipInductive)
	return ok && o.tag == s.tag
}
func (s skipInductive) Hash() uint64                                       { return hashString(s.tag) }
func (s skipInductive) String() string                                     { return "skip:" + s.tag }
func (skipInductive) Skip(string) bool                                     { return true }
func (skipInductive) Selector() bool                                       { return false }
func (skipInductive) One() bool                                            { return true }
func (skipInductive) Next(string, Valuation[string, intValues], *Context[string, intValues]) (Hom[string, intValues], error) {
	panic("skipInductive.Next should never be called: Skip is always true")
}

// TestRewritePreservesSemanticsMultipleFOperands guards against dropping
// every F operand after the first: a Fixpoint(Sum(Id, skipA, skipB, Id))
// must rewrite to something that still evaluates like the original, with
// skipA and skipB both folded into F rather than discarded.
func TestRewritePreservesSemanticsMultipleFOperands(t *testing.T) {
	c := NewContext[string, intValues]()
	order, err := NewOrderBuilder[string]().Push("x").Build()
	if err != nil {
		t.Fatal(err)
	}
	a := buildLine(c, "x", ints(1, 2))

	skipA := c.NewInductive(skipInductive{tag: "a"})
	skipB := c.NewInductive(skipInductive{tag: "b"})
	h := c.Fixpoint(c.SumHom(c.Id(), skipA, skipB, c.Id()))
	want, err := c.Eval(h, a)
	if err != nil {
		t.Fatal(err)
	}

	rewritten := c.Rewrite(h, order)
	if rewritten.n.kind != homSaturationFixpoint {
		t.Fatalf("expected a SaturationFixpoint node, got kind %v", rewritten.n.kind)
	}
	got, err := c.Eval(rewritten, a)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatal("Rewrite dropped an F operand, changing the evaluation result")
	}
}

func TestRewriteIdempotent(t *testing.T) {
	c := NewContext[string, intValues]()
	order, err := NewOrderBuilder[string]().Push("x").Build()
	if err != nil {
		t.Fatal(err)
	}
	h := c.Fixpoint(c.SumHom(c.Id()))
	once := c.Rewrite(h, order)
	twice := c.Rewrite(once, order)
	if twice.n.kind != homSaturationFixpoint {
		t.Fatal("rewriting an already-rewritten node should stay a SaturationFixpoint")
	}
}
