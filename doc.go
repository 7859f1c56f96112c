// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package sdd implements Hierarchical Set Decision Diagrams (SDD) and their
homomorphisms, a data structure for representing and manipulating very
large sets of structured tuples symbolically rather than by enumeration.

Basics

A diagram is built over a fixed Order, an immutable tree that names each
level of the tuple (possibly nested: a level can itself be labeled by
another SDD rather than a flat value set). Two diagrams denoting the same
set of tuples are always represented by the very same node, a property
called canonicity: structural equality reduces to pointer equality (see
Context.Equal). A Context owns the unique tables and operation caches a
family of diagrams is built from; diagrams from different Contexts must
never be mixed.

Diagrams are manipulated through two layers. The diagram algebra
(Context.Sum, Context.Intersection, Context.Difference) computes the usual
set operations directly. The homomorphism algebra (Hom, built with
Context.Id, Context.Constant, Context.Composition, Context.SumHom,
Context.Fixpoint, Context.Local, Context.NewInductive,
Context.NewValuesFunction, Context.ConsFlat, Context.ConsHierarchical)
expresses structural transformations as first-class, hash-consed values
that are themselves evaluated lazily against a diagram via Context.Eval,
with memoization shared across every call through the same Context.

Value sets

The scalar domain is supplied by the caller: any type implementing Values
can label the arcs of a flat node. This package ships no Values
implementation of its own; tests build a minimal example against which to
exercise the core (see node_test.go, diagramops_test.go).

Automatic memory management

Diagram and homomorphism nodes are reference counted on the diagrams and
homomorphisms escaping to user code (via Go's runtime.SetFinalizer,
following the same external-reference idiom as BuDDy-style libraries);
reclaiming the underlying unique-table slots of unreferenced nodes is
manual, triggered by calling Context.GC.

Saturation

Context.Rewrite performs an evaluation-strategy rewrite, described in more
detail on Rewrite itself, that groups Fixpoint operands by the level they
act on, trading some rewrite bookkeeping up front for far fewer
intermediate diagrams built during evaluation on hierarchical diagrams with
deep nesting.
*/
package sdd
