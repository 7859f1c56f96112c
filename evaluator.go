// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

import "fmt"

// evalKey memoizes Eval(f, s) for a given homomorphism/diagram pair (§4.4,
// §4.5).
type evalKey[Id comparable, V Values[V]] struct {
	hom     *homNode[Id, V]
	diagram *node[Id, V]
}

// Eval applies f to s, returning the resulting diagram (§4.2, §4.4).
// Evaluation errors are reported as *EvaluationError, accumulating one Step
// per stack frame crossed on the way back up, per §7.
func (c *Context[Id, V]) Eval(f Hom[Id, V], s SDD[Id, V]) (SDD[Id, V], error) {
	n, err := c.evalNode(f.n, s.n)
	if err != nil {
		return SDD[Id, V]{}, err
	}
	return wrap(n), nil
}

func (c *Context[Id, V]) evalNode(f *homNode[Id, V], s *node[Id, V]) (result *node[Id, V], err error) {
	return c.evalHom(nil, f, s)
}

// evalHom is kept distinct from Eval's public entry so that it can be
// called recursively with a raw *homNode (including the ephemeral nodes
// synthesized on the fly for SaturationFixpoint, see below) without going
// through wrapHom.
func (c *Context[Id, V]) evalHom(_ *homNode[Id, V], f *homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	// Cheap leaves bypass the cache entirely (§4.5 should_cache policy):
	// Id is a pure pass-through and Constant never even looks at s.
	switch f.kind {
	case homId:
		return s, nil
	case homConstant:
		return f.constant, nil
	}

	if err := c.checkInterrupt(); err != nil {
		return nil, err
	}
	key := evalKey[Id, V]{hom: f, diagram: s}
	return c.eval.compute(key, func() (*node[Id, V], error) {
		res, err := c.dispatch(f, s)
		if err != nil {
			return nil, wrapEvalError(err, f, s)
		}
		return res, nil
	})
}

func wrapEvalError[Id comparable, V Values[V]](err error, f *homNode[Id, V], s *node[Id, V]) error {
	if ee, ok := err.(*EvaluationError); ok {
		return ee.addStep(f.hom().String())
	}
	return &EvaluationError{Diagram: s, Err: err, Steps: []string{f.hom().String()}}
}

func (c *Context[Id, V]) dispatch(f *homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	switch f.kind {
	case homComposition:
		mid, err := c.evalHom(nil, f.g, s)
		if err != nil {
			return nil, err
		}
		return c.evalHom(nil, f.f, mid)

	case homSum:
		return c.evalSum(f.operands, s)

	case homFixpoint:
		return c.evalFixpoint(f.body, s)

	case homLocal:
		return c.evalLocal(f, s)

	case homInductive:
		return c.evalInductive(f, s)

	case homValuesFunction:
		return c.evalValuesFunction(f, s)

	case homCons:
		return c.evalCons(f, s)

	case homSaturationFixpoint:
		return c.evalSaturation(f, s)
	}
	return nil, fmt.Errorf("sdd: unknown homomorphism kind %v", f.kind)
}

func (c *Context[Id, V]) evalSum(operands []*homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	result := c.zero
	for _, op := range operands {
		r, err := c.evalHom(nil, op, s)
		if err != nil {
			return nil, err
		}
		result, err = c.sumNodes(result, r)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *Context[Id, V]) evalFixpoint(body *homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	cur := s
	for {
		next, err := c.evalHom(nil, body, cur)
		if err != nil {
			return nil, err
		}
		if next == cur {
			return cur, nil
		}
		cur = next
	}
}

func (c *Context[Id, V]) evalLocal(f *homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	switch s.kind {
	case kindZero, kindOne:
		return s, nil
	case kindFlat:
		if any(s.variable) == any(f.variable) {
			panic("sdd: Local applied to a flat diagram at variable " + toString(f.variable))
		}
		arcs := make([]flatArc[Id, V], len(s.flat))
		for i, a := range s.flat {
			succ, err := c.evalHom(nil, f, a.succ)
			if err != nil {
				return nil, err
			}
			arcs[i] = flatArc[Id, V]{val: a.val, succ: succ}
		}
		merged := squareUnionFlat(c, arcs)
		if len(merged) == 0 {
			return c.zero, nil
		}
		return c.internFlat(s.variable, merged), nil
	}
	if any(s.variable) == any(f.variable) {
		arcs := make([]hierArc[Id, V], len(s.hier))
		for i, a := range s.hier {
			nested, err := c.evalHom(nil, f.body, a.val)
			if err != nil {
				return nil, err
			}
			arcs[i] = hierArc[Id, V]{val: nested, succ: a.succ}
		}
		merged, err := squareUnionHier(c, arcs)
		if err != nil {
			return nil, err
		}
		if len(merged) == 0 {
			return c.zero, nil
		}
		return c.internHier(s.variable, merged), nil
	}
	// Not yet at the targeted level: push through unchanged, recursing on
	// successors only.
	arcs := make([]hierArc[Id, V], len(s.hier))
	for i, a := range s.hier {
		succ, err := c.evalHom(nil, f, a.succ)
		if err != nil {
			return nil, err
		}
		arcs[i] = hierArc[Id, V]{val: a.val, succ: succ}
	}
	merged, err := squareUnionHier(c, arcs)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return c.zero, nil
	}
	return c.internHier(s.variable, merged), nil
}

func (c *Context[Id, V]) evalValuesFunction(f *homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	switch s.kind {
	case kindZero, kindOne:
		return s, nil
	case kindHier:
		return nil, fmt.Errorf("%w: variable %v", errValuesFunctionHier, f.variable)
	}
	if any(s.variable) == any(f.variable) {
		arcs := make([]flatArc[Id, V], len(s.flat))
		for i, a := range s.flat {
			arcs[i] = flatArc[Id, V]{val: f.valuesFn.Apply(a.val), succ: a.succ}
		}
		merged := squareUnionFlat(c, arcs)
		if len(merged) == 0 {
			return c.zero, nil
		}
		return c.internFlat(s.variable, merged), nil
	}
	arcs := make([]flatArc[Id, V], len(s.flat))
	for i, a := range s.flat {
		succ, err := c.evalHom(nil, f, a.succ)
		if err != nil {
			return nil, err
		}
		arcs[i] = flatArc[Id, V]{val: a.val, succ: succ}
	}
	merged := squareUnionFlat(c, arcs)
	if len(merged) == 0 {
		return c.zero, nil
	}
	return c.internFlat(s.variable, merged), nil
}

func (c *Context[Id, V]) evalInductive(f *homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	ind := f.inductive
	switch s.kind {
	case kindZero:
		return c.zero, nil
	case kindOne:
		if ind.One() {
			return s, nil
		}
		return c.zero, nil
	}
	if ind.Skip(s.variable) {
		if s.kind == kindFlat {
			arcs := make([]flatArc[Id, V], len(s.flat))
			for i, a := range s.flat {
				succ, err := c.evalHom(nil, f, a.succ)
				if err != nil {
					return nil, err
				}
				arcs[i] = flatArc[Id, V]{val: a.val, succ: succ}
			}
			merged := squareUnionFlat(c, arcs)
			if len(merged) == 0 {
				return c.zero, nil
			}
			return c.internFlat(s.variable, merged), nil
		}
		arcs := make([]hierArc[Id, V], len(s.hier))
		for i, a := range s.hier {
			succ, err := c.evalHom(nil, f, a.succ)
			if err != nil {
				return nil, err
			}
			arcs[i] = hierArc[Id, V]{val: a.val, succ: succ}
		}
		merged, err := squareUnionHier(c, arcs)
		if err != nil {
			return nil, err
		}
		if len(merged) == 0 {
			return c.zero, nil
		}
		return c.internHier(s.variable, merged), nil
	}

	// next_hom is responsible for rebuilding any level below it; the
	// original valuation on the arc is not re-attached, only summed over.
	if s.kind == kindFlat {
		result := c.zero
		for _, a := range s.flat {
			next, err := ind.Next(s.variable, Valuation[Id, V]{Value: a.val}, c)
			if err != nil {
				return nil, err
			}
			r, err := c.evalHom(nil, next.n, a.succ)
			if err != nil {
				return nil, err
			}
			result, err = c.sumNodes(result, r)
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	}
	result := c.zero
	for _, a := range s.hier {
		next, err := ind.Next(s.variable, Valuation[Id, V]{IsHier: true, Nested: wrap(a.val)}, c)
		if err != nil {
			return nil, err
		}
		r, err := c.evalHom(nil, next.n, a.succ)
		if err != nil {
			return nil, err
		}
		result, err = c.sumNodes(result, r)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *Context[Id, V]) evalCons(f *homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	tail, err := c.evalHom(nil, f.next, s)
	if err != nil {
		return nil, err
	}
	if f.hasValue {
		if f.value.Empty() || tail.kind == kindZero {
			return c.zero, nil
		}
		return c.internFlat(f.variable, squareUnionFlat(c, []flatArc[Id, V]{{val: f.value, succ: tail}})), nil
	}
	nested, err := c.evalHom(nil, f.nestedHom, c.one)
	if err != nil {
		return nil, err
	}
	if nested.kind == kindZero || tail.kind == kindZero {
		return c.zero, nil
	}
	merged, err := squareUnionHier(c, []hierArc[Id, V]{{val: nested, succ: tail}})
	if err != nil {
		return nil, err
	}
	return c.internHier(f.variable, merged), nil
}

// evalSaturation evaluates the internal SaturationFixpoint rewrite target
// (§4.6): fixpoint-iterate the union of the skip group (satF), the
// nested-level group (satL, applied through Local) and the at-level group
// (satG) until the result stabilizes. The Sum/Local nodes used
// here are assembled on the fly rather than hash-consed through c.homs,
// since they are evaluation-only scaffolding never exposed to the user and
// never looked up again once this call returns.
func (c *Context[Id, V]) evalSaturation(f *homNode[Id, V], s *node[Id, V]) (*node[Id, V], error) {
	var ops []*homNode[Id, V]
	if f.satF != nil {
		ops = append(ops, f.satF)
	}
	if f.satL != nil {
		ops = append(ops, &homNode[Id, V]{kind: homLocal, variable: f.variable, body: f.satL})
	}
	ops = append(ops, f.satG...)
	body := &homNode[Id, V]{kind: homSum, operands: ops}
	return c.evalFixpoint(body, s)
}
