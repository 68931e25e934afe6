// Copyright © 2020 The Pea Authors under an MIT-style license.

package subtype

import (
	"github.com/eaburns/flow/types"
)

// ExtractRecord returns the record type readable from t, or nil.
// Nominal types are expanded.
// A union of records is read as an open record of the fields common to every disjunct,
// and an intersection of records has the fields of all of them.
func (op *Operator) ExtractRecord(t types.Type) (*types.Record, error) {
	switch t := t.(type) {
	case *types.Record:
		return t, nil
	case *types.Nominal:
		d, err := op.resolveContractive(t.Name)
		if err != nil {
			return nil, err
		}
		return op.ExtractRecord(d.Type)
	case *types.Union:
		var recs []*types.Record
		for _, e := range t.Elems {
			r, err := op.ExtractRecord(e)
			if err != nil || r == nil {
				return nil, err
			}
			recs = append(recs, r)
		}
		return joinRecords(recs), nil
	case *types.Intersection:
		var recs []*types.Record
		for _, e := range t.Elems {
			if _, ok := e.(*types.Negation); ok {
				continue
			}
			r, err := op.ExtractRecord(e)
			if err != nil || r == nil {
				return nil, err
			}
			recs = append(recs, r)
		}
		if len(recs) == 0 {
			return nil, nil
		}
		return meetRecords(recs), nil
	default:
		return nil, nil
	}
}

func joinRecords(recs []*types.Record) *types.Record {
	if len(recs) == 0 {
		return nil
	}
	join := &types.Record{Open: recs[0].Open}
	for _, f := range recs[0].Fields {
		ts := []types.Type{f.Type}
		for _, r := range recs[1:] {
			t := r.Field(f.Name)
			if t == nil {
				break
			}
			ts = append(ts, t)
		}
		if len(ts) < len(recs) {
			join.Open = true
			continue
		}
		join.Fields = append(join.Fields, types.Field{Name: f.Name, Type: types.Or(ts...)})
	}
	for _, r := range recs[1:] {
		if r.Open || len(r.Fields) != len(join.Fields) {
			join.Open = true
		}
	}
	return join
}

func meetRecords(recs []*types.Record) *types.Record {
	meet := &types.Record{Open: true}
	for _, r := range recs {
		meet.Open = meet.Open && r.Open
		for _, f := range r.Fields {
			prev := meet.Field(f.Name)
			if prev == nil {
				meet.Fields = append(meet.Fields, f)
				continue
			}
			for i := range meet.Fields {
				if meet.Fields[i].Name == f.Name {
					meet.Fields[i].Type = types.And(prev, f.Type)
				}
			}
		}
	}
	return meet
}

// ExtractArray returns the array type readable from t, or nil.
func (op *Operator) ExtractArray(t types.Type) (*types.Array, error) {
	switch t := t.(type) {
	case *types.Array:
		return t, nil
	case *types.Nominal:
		d, err := op.resolveContractive(t.Name)
		if err != nil {
			return nil, err
		}
		return op.ExtractArray(d.Type)
	case *types.Union, *types.Intersection:
		elems, ok, err := op.extractElems(t, func(e types.Type) (types.Type, error) {
			a, err := op.ExtractArray(e)
			if a == nil {
				return nil, err
			}
			return a.Elem, nil
		})
		if err != nil || !ok {
			return nil, err
		}
		if _, isUnion := t.(*types.Union); isUnion {
			return &types.Array{Elem: types.Or(elems...)}, nil
		}
		return &types.Array{Elem: types.And(elems...)}, nil
	default:
		return nil, nil
	}
}

// ExtractReference returns the reference type readable from t, or nil.
// The references of a union or intersection must have the same lifetime.
func (op *Operator) ExtractReference(t types.Type) (*types.Reference, error) {
	switch t := t.(type) {
	case *types.Reference:
		return t, nil
	case *types.Nominal:
		d, err := op.resolveContractive(t.Name)
		if err != nil {
			return nil, err
		}
		return op.ExtractReference(d.Type)
	case *types.Union, *types.Intersection:
		lifetime := ""
		elems, ok, err := op.extractElems(t, func(e types.Type) (types.Type, error) {
			r, err := op.ExtractReference(e)
			if r == nil {
				return nil, err
			}
			if lifetime != "" && r.Lifetime != lifetime {
				return nil, nil
			}
			lifetime = r.Lifetime
			return r.Elem, nil
		})
		if err != nil || !ok {
			return nil, err
		}
		if _, isUnion := t.(*types.Union); isUnion {
			return &types.Reference{Elem: types.Or(elems...), Lifetime: lifetime}, nil
		}
		return &types.Reference{Elem: types.And(elems...), Lifetime: lifetime}, nil
	default:
		return nil, nil
	}
}

// extractElems applies f to the operands of a union or intersection.
// Negated operands of an intersection are skipped.
// ok is false if f returns nil for any other operand.
func (op *Operator) extractElems(t types.Type, f func(types.Type) (types.Type, error)) ([]types.Type, bool, error) {
	var operands []types.Type
	switch t := t.(type) {
	case *types.Union:
		operands = t.Elems
	case *types.Intersection:
		for _, e := range t.Elems {
			if _, ok := e.(*types.Negation); !ok {
				operands = append(operands, e)
			}
		}
	}
	if len(operands) == 0 {
		return nil, false, nil
	}
	var elems []types.Type
	for _, o := range operands {
		e, err := f(o)
		if err != nil || e == nil {
			return nil, false, err
		}
		elems = append(elems, e)
	}
	return elems, true, nil
}

// ExtractCallable returns the callable type readable from t, or nil.
func (op *Operator) ExtractCallable(t types.Type) (*types.Callable, error) {
	switch t := t.(type) {
	case *types.Callable:
		return t, nil
	case *types.Nominal:
		d, err := op.resolveContractive(t.Name)
		if err != nil {
			return nil, err
		}
		return op.ExtractCallable(d.Type)
	case *types.Union:
		if len(t.Elems) == 1 {
			return op.ExtractCallable(t.Elems[0])
		}
		return nil, nil
	case *types.Intersection:
		for _, e := range t.Elems {
			if c, err := op.ExtractCallable(e); err != nil || c != nil {
				return c, err
			}
		}
		return nil, nil
	default:
		return nil, nil
	}
}
