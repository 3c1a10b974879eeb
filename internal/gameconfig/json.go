package gameconfig

import (
	"encoding/json"
	"fmt"
)

// Values and variants serialize to externally tagged JSON so the files stay
// self-describing: {"scalar":{"integer":5}}, {"vector":[{"string":"a"}]}.
// This is what lets a profile round-trip through disk without consulting the
// schema for type information.

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindBool:
		return json.Marshal(map[string]bool{"bool": v.Bool})
	case KindInteger:
		return json.Marshal(map[string]int64{"integer": v.Int})
	case KindFloat:
		return json.Marshal(map[string]float32{"float": v.Float})
	case KindString:
		return json.Marshal(map[string]string{"string": v.Str})
	case KindEnum:
		return json.Marshal(map[string]EnumRef{"enum": v.Enum})
	case KindStruct:
		return json.Marshal(map[string][]StructFieldValue{"struct": v.Fields})
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %s", v.Kind)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("value object must have exactly one tag, got %d", len(raw))
	}
	for tag, payload := range raw {
		switch tag {
		case "bool":
			v.Kind = KindBool
			return json.Unmarshal(payload, &v.Bool)
		case "integer":
			v.Kind = KindInteger
			return json.Unmarshal(payload, &v.Int)
		case "float":
			v.Kind = KindFloat
			return json.Unmarshal(payload, &v.Float)
		case "string":
			v.Kind = KindString
			return json.Unmarshal(payload, &v.Str)
		case "enum":
			v.Kind = KindEnum
			return json.Unmarshal(payload, &v.Enum)
		case "struct":
			v.Kind = KindStruct
			return json.Unmarshal(payload, &v.Fields)
		default:
			return fmt.Errorf("unknown value tag %q", tag)
		}
	}
	return nil
}

func (v Variant) MarshalJSON() ([]byte, error) {
	if v.Quantity == QuantityVector {
		values := v.Values
		if values == nil {
			values = []Value{}
		}
		return json.Marshal(map[string][]Value{"vector": values})
	}
	return json.Marshal(map[string]Value{"scalar": v.Value})
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("variant object must have exactly one tag, got %d", len(raw))
	}
	for tag, payload := range raw {
		switch tag {
		case "scalar":
			v.Quantity = QuantityScalar
			v.Values = nil
			return json.Unmarshal(payload, &v.Value)
		case "vector":
			v.Quantity = QuantityVector
			v.Value = Value{}
			return json.Unmarshal(payload, &v.Values)
		default:
			return fmt.Errorf("unknown variant tag %q", tag)
		}
	}
	return nil
}
