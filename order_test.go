// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import "testing"

func TestOrderBuilderRanks(t *testing.T) {
	o, err := NewOrderBuilder[string]().Push("a").Push("b").Push("c").Build()
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"a", "b", "c"} {
		v, ok := o.Variable(id)
		if !ok {
			t.Fatalf("%s not found in order", id)
		}
		if int(v) != i {
			t.Fatalf("Variable(%s) = %d, want %d", id, v, i)
		}
	}
}

func TestOrderBuilderDuplicate(t *testing.T) {
	_, err := NewOrderBuilder[string]().Push("a").Push("a").Build()
	if err == nil {
		t.Fatal("expected an error for a duplicate identifier")
	}
}

func TestOrderNested(t *testing.T) {
	nested, err := NewOrderBuilder[string]().Push("y1").Push("y2").Build()
	if err != nil {
		t.Fatal(err)
	}
	top, err := NewOrderBuilder[string]().Push("x0").PushNested("x1", nested).Build()
	if err != nil {
		t.Fatal(err)
	}
	if !top.Contains("x1", "y1") {
		t.Fatal("expected x1 to contain y1 in its nested order")
	}
	if top.Contains("x0", "y1") {
		t.Fatal("x0 is flat, it should not contain y1")
	}
	if top.Contains("x1", "x0") {
		t.Fatal("x0 is not part of x1's nested order")
	}
}

func TestOrderNestedDuplicateAcrossLevels(t *testing.T) {
	nested, err := NewOrderBuilder[string]().Push("x0").Build()
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewOrderBuilder[string]().Push("x0").PushNested("x1", nested).Build()
	if err == nil {
		t.Fatal("expected an error: x0 reused across levels")
	}
}

func TestOrderCompare(t *testing.T) {
	o, err := NewOrderBuilder[string]().Push("a").Push("b").Push("c").Build()
	if err != nil {
		t.Fatal(err)
	}
	if o.Compare("a", "b") >= 0 {
		t.Fatal("a should be ranked before b")
	}
	if o.Compare("c", "a") <= 0 {
		t.Fatal("c should be ranked after a")
	}
	if o.Compare("b", "b") != 0 {
		t.Fatal("Compare(b, b) should be 0")
	}
}

func TestOrderComparePanicsOutsideLevel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Compare to panic on an identifier outside this level")
		}
	}()
	nested, _ := NewOrderBuilder[string]().Push("y").Build()
	top, _ := NewOrderBuilder[string]().PushNested("x", nested).Build()
	top.Compare("x", "y")
}
