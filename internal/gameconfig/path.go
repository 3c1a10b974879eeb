package gameconfig

// PathStep addresses one level of a nested value tree: a named struct field
// or a vector index. The interactive editor builds these instead of parsing
// delimited path strings.
type PathStep struct {
	Field   string
	Index   int
	IsIndex bool
}

// FieldStep addresses a struct field by name.
func FieldStep(name string) PathStep {
	return PathStep{Field: name}
}

// IndexStep addresses a vector element by position.
func IndexStep(i int) PathStep {
	return PathStep{Index: i, IsIndex: true}
}

// SetAtPath replaces the sub-variant reached by walking the given steps.
// An empty path replaces the whole variant. Steps that do not match the
// value's actual shape fail with a SchemaError; nothing is mutated on error
// except subtrees already descended into, which only change on full success
// of their own subpath.
func (v *Variant) SetAtPath(steps []PathStep, replacement Variant) error {
	if len(steps) == 0 {
		*v = replacement
		return nil
	}
	step := steps[0]
	if step.IsIndex {
		if v.Quantity != QuantityVector {
			return schemaErrorf("index step on a %s variant", v.Quantity)
		}
		if step.Index < 0 || step.Index >= len(v.Values) {
			return schemaErrorf("index %d out of range (vector has %d elements)", step.Index, len(v.Values))
		}
		elem := Scalar(v.Values[step.Index])
		if err := elem.SetAtPath(steps[1:], replacement); err != nil {
			return err
		}
		if elem.Quantity != QuantityScalar {
			return schemaErrorf("vector element %d cannot become a vector", step.Index)
		}
		v.Values[step.Index] = elem.Value
		return nil
	}
	if v.Quantity != QuantityScalar || v.Value.Kind != KindStruct {
		return schemaErrorf("field step %q on a non-struct value", step.Field)
	}
	for i := range v.Value.Fields {
		if v.Value.Fields[i].Name == step.Field {
			return v.Value.Fields[i].Value.SetAtPath(steps[1:], replacement)
		}
	}
	return schemaErrorf("struct has no field %q", step.Field)
}

// GetAtPath returns the sub-variant reached by walking the given steps.
func (v Variant) GetAtPath(steps []PathStep) (Variant, error) {
	if len(steps) == 0 {
		return v, nil
	}
	step := steps[0]
	if step.IsIndex {
		if v.Quantity != QuantityVector {
			return Variant{}, schemaErrorf("index step on a %s variant", v.Quantity)
		}
		if step.Index < 0 || step.Index >= len(v.Values) {
			return Variant{}, schemaErrorf("index %d out of range (vector has %d elements)", step.Index, len(v.Values))
		}
		return Scalar(v.Values[step.Index]).GetAtPath(steps[1:])
	}
	if v.Quantity != QuantityScalar || v.Value.Kind != KindStruct {
		return Variant{}, schemaErrorf("field step %q on a non-struct value", step.Field)
	}
	for _, field := range v.Value.Fields {
		if field.Name == step.Field {
			return field.Value.GetAtPath(steps[1:])
		}
	}
	return Variant{}, schemaErrorf("struct has no field %q", step.Field)
}
