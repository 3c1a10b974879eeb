package gameconfig

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Quantity describes whether a setting holds a single value or a sequence.
type Quantity string

const (
	QuantityScalar Quantity = "scalar"
	QuantityVector Quantity = "vector"
)

// String returns the display form used in the metadata editor
func (q Quantity) String() string {
	switch q {
	case QuantityVector:
		return "Vector"
	default:
		return "Scalar"
	}
}

// InferQuantity guesses the quantity of a raw value: values wrapped in
// brackets are treated as vectors
func InferQuantity(raw string) Quantity {
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		return QuantityVector
	}
	return QuantityScalar
}

// ValueKind identifies the primitive shape of a setting value.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindInteger
	KindFloat
	KindString
	KindEnum
	KindStruct
)

var kindNames = map[ValueKind]string{
	KindBool:    "bool",
	KindInteger: "integer",
	KindFloat:   "float",
	KindString:  "string",
	KindEnum:    "enum",
	KindStruct:  "struct",
}

var kindsByName = map[string]ValueKind{
	"bool":    KindBool,
	"integer": KindInteger,
	"float":   KindFloat,
	"string":  KindString,
	"enum":    KindEnum,
	"struct":  KindStruct,
}

func (k ValueKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// StructField declares one named field of a struct base type. Field order is
// significant and preserved.
type StructField struct {
	Name      string    `json:"name"`
	ValueType ValueType `json:"value_type"`
}

// BaseType is the underlying type of a setting: a primitive, a named
// enumeration, or a struct with an ordered field list.
type BaseType struct {
	Kind   ValueKind
	Enum   string        // Kind == KindEnum
	Fields []StructField // Kind == KindStruct
}

// BoolBase and friends are shorthands for the primitive base types.
var (
	BoolBase    = BaseType{Kind: KindBool}
	IntegerBase = BaseType{Kind: KindInteger}
	FloatBase   = BaseType{Kind: KindFloat}
	StringBase  = BaseType{Kind: KindString}
)

// EnumBase builds a base type referencing the named enumeration.
func EnumBase(name string) BaseType {
	return BaseType{Kind: KindEnum, Enum: name}
}

// StructBase builds a struct base type from an ordered field list.
func StructBase(fields []StructField) BaseType {
	return BaseType{Kind: KindStruct, Fields: fields}
}

func (b BaseType) String() string {
	switch b.Kind {
	case KindEnum:
		return b.Enum
	case KindStruct:
		return "Struct"
	case KindBool:
		return "Bool"
	case KindFloat:
		return "Float"
	case KindInteger:
		return "Integer"
	default:
		return "String"
	}
}

// Equal reports structural equality, including nested struct field lists.
func (b BaseType) Equal(other BaseType) bool {
	if b.Kind != other.Kind || b.Enum != other.Enum {
		return false
	}
	if len(b.Fields) != len(other.Fields) {
		return false
	}
	for i, field := range b.Fields {
		if field.Name != other.Fields[i].Name {
			return false
		}
		if !field.ValueType.Equal(other.Fields[i].ValueType) {
			return false
		}
	}
	return true
}

type baseTypeJSON struct {
	Type   string        `json:"type"`
	Enum   string        `json:"enum,omitempty"`
	Fields []StructField `json:"fields,omitempty"`
}

// ValueType is the full schema type of a setting.
type ValueType struct {
	Quantity Quantity
	Base     BaseType
}

func (t ValueType) String() string {
	return fmt.Sprintf("%s<%s>", t.Quantity, t.Base)
}

// Equal reports structural equality of two value types.
func (t ValueType) Equal(other ValueType) bool {
	return t.Quantity == other.Quantity && t.Base.Equal(other.Base)
}

// MarshalJSON flattens the quantity and base type into one object so the
// metadata files stay hand-editable.
func (t ValueType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Quantity Quantity      `json:"quantity"`
		Type     string        `json:"type"`
		Enum     string        `json:"enum,omitempty"`
		Fields   []StructField `json:"fields,omitempty"`
	}{t.Quantity, t.Base.Kind.String(), t.Base.Enum, t.Base.Fields})
}

func (t *ValueType) UnmarshalJSON(data []byte) error {
	var raw struct {
		Quantity Quantity `json:"quantity"`
		baseTypeJSON
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, ok := kindsByName[raw.Type]
	if !ok {
		return fmt.Errorf("unknown value type %q", raw.Type)
	}
	if raw.Quantity == "" {
		raw.Quantity = QuantityScalar
	}
	if raw.Quantity != QuantityScalar && raw.Quantity != QuantityVector {
		return fmt.Errorf("unknown quantity %q", raw.Quantity)
	}
	if kind == KindEnum && raw.Enum == "" {
		return fmt.Errorf("enum value type is missing the enumeration name")
	}
	t.Quantity = raw.Quantity
	t.Base = BaseType{Kind: kind, Enum: raw.Enum, Fields: raw.Fields}
	return nil
}

// ScalarType is a shorthand for a scalar value type.
func ScalarType(base BaseType) ValueType {
	return ValueType{Quantity: QuantityScalar, Base: base}
}

// VectorType is a shorthand for a vector value type.
func VectorType(base BaseType) ValueType {
	return ValueType{Quantity: QuantityVector, Base: base}
}

// ParseBool parses the game's boolean literals case-insensitively.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &ParseError{Raw: raw, Type: ScalarType(BoolBase)}
}

// InferBaseType guesses the base type of a raw value for auto-import. It
// tries integer, then float, then bool, and falls back to string. This is a
// heuristic only; entries created from it are flagged autogenerated.
func InferBaseType(raw string) BaseType {
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntegerBase
	}
	if _, err := strconv.ParseFloat(raw, 32); err == nil {
		return FloatBase
	}
	if _, err := ParseBool(raw); err == nil {
		return BoolBase
	}
	return StringBase
}

// InferValueType guesses the full type of a raw value for auto-import.
func InferValueType(raw string) ValueType {
	return ValueType{
		Quantity: InferQuantity(raw),
		Base:     InferBaseType(raw),
	}
}
