// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sdd

// Rewrite performs the automatic saturation rewrite described in §4.6:
// every Fixpoint(Sum(...)) reachable from h is replaced by a single
// SaturationFixpoint node, whose operands are partitioned, level by level
// of o, into:
//
//   - F: operands that skip this variable entirely (evaluated as a no-op
//     pass-through at this level, pushed down unchanged),
//   - L: operands that are Local at this variable (merged into one
//     homomorphism applied to the nested diagram),
//   - G: everything else, which acts directly at this level.
//
// The rewrite is purely an evaluation-strategy change: Eval(Rewrite(h, o), s)
// and Eval(h, s) denote the same diagram (§4.6).
func (c *Context[Id, V]) Rewrite(h Hom[Id, V], o *Order[Id]) Hom[Id, V] {
	return wrapHom(c.rewrite(h.n, o))
}

func (c *Context[Id, V]) rewrite(h *homNode[Id, V], o *Order[Id]) *homNode[Id, V] {
	result, _ := c.rewriteCache.compute(h, func() (*homNode[Id, V], error) {
		return c.rewriteUncached(h, o), nil
	})
	return result
}

func (c *Context[Id, V]) rewriteUncached(h *homNode[Id, V], o *Order[Id]) *homNode[Id, V] {
	switch h.kind {
	case homId, homConstant, homInductive, homValuesFunction, homSaturationFixpoint:
		return h

	case homComposition:
		return &homNode[Id, V]{
			kind: homComposition,
			f:    c.rewrite(h.f, o),
			g:    c.rewrite(h.g, o),
		}

	case homSum:
		ops := make([]*homNode[Id, V], len(h.operands))
		for i, op := range h.operands {
			ops[i] = c.rewrite(op, o)
		}
		return &homNode[Id, V]{kind: homSum, operands: ops}

	case homFixpoint:
		if o == nil {
			// No order information for this level: saturation needs a
			// variable to partition against, fall back to an ordinary
			// fixpoint over the rewritten body.
			return &homNode[Id, V]{kind: homFixpoint, body: c.rewrite(h.body, o)}
		}
		operands := flattenSumOperands(h.body)
		f, l, g := c.partitionOperands(operands, o)
		return c.saturationFixpoint(o.Identifier(), f, l, g)

	case homLocal:
		var nestedOrder *Order[Id]
		if o != nil {
			nestedOrder = o.Nested()
		}
		return &homNode[Id, V]{kind: homLocal, variable: h.variable, body: c.rewrite(h.body, nestedOrder)}

	case homCons:
		return &homNode[Id, V]{
			kind:      homCons,
			variable:  h.variable,
			hasValue:  h.hasValue,
			value:     h.value,
			nestedHom: h.nestedHom,
			next:      c.rewrite(h.next, o),
		}
	}
	return h
}

func flattenSumOperands[Id comparable, V Values[V]](body *homNode[Id, V]) []*homNode[Id, V] {
	if body.kind == homSum {
		return body.operands
	}
	return []*homNode[Id, V]{body}
}

// partitionOperands classifies each Fixpoint operand relative to the
// variable named by o, per §4.6.
func (c *Context[Id, V]) partitionOperands(operands []*homNode[Id, V], o *Order[Id]) (f, l *homNode[Id, V], g []*homNode[Id, V]) {
	variable := o.Identifier()
	var fOps []*homNode[Id, V]
	var lOps []*homNode[Id, V]
	var gOps []*homNode[Id, V]

	for _, op := range operands {
		switch {
		case op.kind == homId:
			fOps = append(fOps, op)
		case op.kind == homInductive && op.inductive.Skip(variable):
			fOps = append(fOps, op)
		case op.kind == homValuesFunction && any(op.variable) != any(variable):
			fOps = append(fOps, op)
		case op.kind == homLocal && any(op.variable) == any(variable):
			lOps = append(lOps, c.rewrite(op.body, o.Nested()))
		default:
			gOps = append(gOps, c.rewrite(op, o))
		}
	}

	switch len(fOps) {
	case 0:
		f = nil
	case 1:
		f = fOps[0]
	default:
		f = &homNode[Id, V]{kind: homSum, operands: fOps}
	}
	switch len(lOps) {
	case 0:
		l = nil
	case 1:
		l = lOps[0]
	default:
		l = &homNode[Id, V]{kind: homSum, operands: lOps}
	}
	return f, l, gOps
}
