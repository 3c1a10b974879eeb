package gameconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// EnumRef is an enum-typed value: the enumeration it belongs to plus the
// selected entry value.
type EnumRef struct {
	Name  string `json:"enum_name"`
	Value string `json:"value"`
}

// StructFieldValue is one named field of a struct value. Order matches the
// declaring struct type and is preserved through serialization.
type StructFieldValue struct {
	Name  string  `json:"name"`
	Value Variant `json:"value"`
}

// FieldType returns the schema field declaration this field value conforms to.
func (f StructFieldValue) FieldType() StructField {
	return StructField{Name: f.Name, ValueType: f.Value.ValueType()}
}

// Value is a single typed configuration value. Exactly one payload field is
// meaningful, selected by Kind.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Float  float32
	Str    string
	Enum   EnumRef
	Fields []StructFieldValue // Kind == KindStruct
}

// NewBool and friends wrap raw data into typed values.
func NewBool(v bool) Value     { return Value{Kind: KindBool, Bool: v} }
func NewInteger(v int64) Value { return Value{Kind: KindInteger, Int: v} }
func NewFloat(v float32) Value { return Value{Kind: KindFloat, Float: v} }
func NewString(v string) Value { return Value{Kind: KindString, Str: v} }
func NewEnum(name, value string) Value {
	return Value{Kind: KindEnum, Enum: EnumRef{Name: name, Value: value}}
}
func NewStruct(fields []StructFieldValue) Value {
	return Value{Kind: KindStruct, Fields: fields}
}

// BaseType derives the base type this value carries.
func (v Value) BaseType() BaseType {
	switch v.Kind {
	case KindEnum:
		return EnumBase(v.Enum.Name)
	case KindStruct:
		fields := make([]StructField, 0, len(v.Fields))
		for _, field := range v.Fields {
			fields = append(fields, field.FieldType())
		}
		return StructBase(fields)
	default:
		return BaseType{Kind: v.Kind}
	}
}

// String renders the value in the game's textual form. Struct values format
// as parenthesized field lists with string and enum payloads quoted.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.Float), 'f', -1, 32)
	case KindString:
		return v.Str
	case KindEnum:
		return v.Enum.Value
	case KindStruct:
		var sb strings.Builder
		sb.WriteByte('(')
		for i, field := range v.Fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeStructField(&sb, field)
		}
		sb.WriteByte(')')
		return sb.String()
	default:
		return ""
	}
}

func writeStructField(sb *strings.Builder, field StructFieldValue) {
	switch field.Value.Quantity {
	case QuantityVector:
		sb.WriteString(field.Name)
		sb.WriteString("=(")
		for i, value := range field.Value.Values {
			if i > 0 {
				sb.WriteByte(',')
			}
			switch value.Kind {
			case KindString, KindEnum:
				fmt.Fprintf(sb, "%q", value.String())
			default:
				sb.WriteString(value.String())
			}
		}
		sb.WriteByte(')')
	default:
		switch field.Value.Value.Kind {
		case KindString, KindEnum:
			fmt.Fprintf(sb, "%s=%q", field.Name, field.Value.Value.String())
		default:
			fmt.Fprintf(sb, "%s=%s", field.Name, field.Value.Value.String())
		}
	}
}

// ValueFromText parses raw flat text into a typed value. Enum and struct
// values cannot be parsed from flat text; they only arrive programmatically
// or through the structured JSON forms.
func ValueFromText(t ValueType, raw string) (Value, error) {
	switch t.Base.Kind {
	case KindBool:
		b, err := ParseBool(raw)
		if err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case KindInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, &ParseError{Raw: raw, Type: t, Err: err}
		}
		return NewInteger(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return Value{}, &ParseError{Raw: raw, Type: t, Err: err}
		}
		return NewFloat(float32(f)), nil
	case KindString:
		return NewString(raw), nil
	case KindEnum:
		return Value{}, fmt.Errorf("parsing enum %q from text: %w", t.Base.Enum, ErrNotSupported)
	case KindStruct:
		return Value{}, fmt.Errorf("parsing struct from text: %w", ErrNotSupported)
	default:
		return Value{}, fmt.Errorf("parsing %s from text: %w", t.Base, ErrNotSupported)
	}
}

// DefaultValue produces the zero value for a base type. Struct defaults
// recursively default every declared field, in order.
func DefaultValue(base BaseType) Value {
	switch base.Kind {
	case KindBool:
		return NewBool(false)
	case KindInteger:
		return NewInteger(0)
	case KindFloat:
		return NewFloat(0)
	case KindEnum:
		return NewEnum(base.Enum, "")
	case KindStruct:
		fields := make([]StructFieldValue, 0, len(base.Fields))
		for _, field := range base.Fields {
			fields = append(fields, StructFieldValue{
				Name:  field.Name,
				Value: DefaultVariant(field.ValueType),
			})
		}
		return NewStruct(fields)
	default:
		return NewString("")
	}
}

// Equal reports deep equality of two values.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == other.Bool
	case KindInteger:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindString:
		return v.Str == other.Str
	case KindEnum:
		return v.Enum == other.Enum
	case KindStruct:
		if len(v.Fields) != len(other.Fields) {
			return false
		}
		for i, field := range v.Fields {
			if field.Name != other.Fields[i].Name {
				return false
			}
			if !field.Value.Equal(other.Fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ConformsTo checks that the value structurally matches a base type: field
// names, order, and nested types for structs, the enumeration name for enums.
func (v Value) ConformsTo(base BaseType) error {
	if v.Kind != base.Kind {
		return schemaErrorf("value is %s, type wants %s", v.Kind, base.Kind)
	}
	switch base.Kind {
	case KindEnum:
		if v.Enum.Name != base.Enum {
			return schemaErrorf("enum value belongs to %q, type wants %q", v.Enum.Name, base.Enum)
		}
	case KindStruct:
		if len(v.Fields) != len(base.Fields) {
			return schemaErrorf("struct value has %d fields, type wants %d", len(v.Fields), len(base.Fields))
		}
		for i, field := range v.Fields {
			if field.Name != base.Fields[i].Name {
				return schemaErrorf("struct field %d is %q, type wants %q", i, field.Name, base.Fields[i].Name)
			}
			if err := field.Value.ConformsTo(base.Fields[i].ValueType); err != nil {
				return fmt.Errorf("field %q: %w", field.Name, err)
			}
		}
	}
	return nil
}

// Variant wraps a value as either a scalar or a homogeneous vector.
type Variant struct {
	Quantity Quantity
	Value    Value   // Quantity == QuantityScalar
	Values   []Value // Quantity == QuantityVector
}

// Scalar wraps a single value.
func Scalar(v Value) Variant {
	return Variant{Quantity: QuantityScalar, Value: v}
}

// Vector wraps a sequence of values. All elements must share a base type;
// ConformsTo verifies this against a declared schema type.
func Vector(values []Value) Variant {
	return Variant{Quantity: QuantityVector, Values: values}
}

// String renders the variant in the game's textual form. Vectors join on
// commas; vectors of structs additionally wrap the whole list in parens.
func (v Variant) String() string {
	if v.Quantity != QuantityVector {
		return v.Value.String()
	}
	parts := make([]string, 0, len(v.Values))
	for _, value := range v.Values {
		parts = append(parts, value.String())
	}
	joined := strings.Join(parts, ",")
	if len(v.Values) > 0 && v.Values[0].Kind == KindStruct {
		return "(" + joined + ")"
	}
	return joined
}

// ValueType derives the schema type of this variant. An empty vector reports
// a string base type since there is no element to infer from.
func (v Variant) ValueType() ValueType {
	if v.Quantity != QuantityVector {
		return ScalarType(v.Value.BaseType())
	}
	if len(v.Values) == 0 {
		return VectorType(StringBase)
	}
	return VectorType(v.Values[0].BaseType())
}

// VariantFromText parses raw flat text according to a schema type. Vector
// text splits on commas and parses each segment independently; one bad
// segment fails the whole conversion.
func VariantFromText(t ValueType, raw string) (Variant, error) {
	if t.Quantity != QuantityVector {
		value, err := ValueFromText(t, raw)
		if err != nil {
			return Variant{}, err
		}
		return Scalar(value), nil
	}
	segments := strings.Split(raw, ",")
	values := make([]Value, 0, len(segments))
	for _, segment := range segments {
		value, err := ValueFromText(t, segment)
		if err != nil {
			return Variant{}, err
		}
		values = append(values, value)
	}
	return Vector(values), nil
}

// DefaultVariant produces the zero variant for a schema type: the zero value
// for scalars, an empty sequence for vectors.
func DefaultVariant(t ValueType) Variant {
	if t.Quantity == QuantityVector {
		return Vector(nil)
	}
	return Scalar(DefaultValue(t.Base))
}

// Equal reports deep equality of two variants.
func (v Variant) Equal(other Variant) bool {
	if v.Quantity != other.Quantity {
		return false
	}
	if v.Quantity == QuantityVector {
		if len(v.Values) != len(other.Values) {
			return false
		}
		for i, value := range v.Values {
			if !value.Equal(other.Values[i]) {
				return false
			}
		}
		return true
	}
	return v.Value.Equal(other.Value)
}

// ConformsTo checks the variant against a schema type, including element
// homogeneity for vectors.
func (v Variant) ConformsTo(t ValueType) error {
	if v.Quantity != t.Quantity {
		return schemaErrorf("variant is %s, type wants %s", v.Quantity, t.Quantity)
	}
	if v.Quantity == QuantityVector {
		for i, value := range v.Values {
			if err := value.ConformsTo(t.Base); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}
	return v.Value.ConformsTo(t.Base)
}

// TryBool returns the payload of a scalar bool variant.
func (v Variant) TryBool() (bool, bool) {
	if v.Quantity == QuantityScalar && v.Value.Kind == KindBool {
		return v.Value.Bool, true
	}
	return false, false
}

// TryString returns the payload of a scalar string variant.
func (v Variant) TryString() (string, bool) {
	if v.Quantity == QuantityScalar && v.Value.Kind == KindString {
		return v.Value.Str, true
	}
	return "", false
}

// TryInt returns the payload of a scalar integer variant.
func (v Variant) TryInt() (int64, bool) {
	if v.Quantity == QuantityScalar && v.Value.Kind == KindInteger {
		return v.Value.Int, true
	}
	return 0, false
}
