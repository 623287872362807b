package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ValueKind tags the shape carried by an AnswerValue
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueString
	ValueNumber
	ValueList
)

// AnswerValue is either nothing, a scalar (string or number) or a list of strings.
// The zero value is ValueNone.
type AnswerValue struct {
	kind ValueKind
	str  string
	num  float64
	list []string
}

// StringValue wraps a string answer.
func StringValue(s string) AnswerValue { return AnswerValue{kind: ValueString, str: s} }

// NumberValue wraps a numeric answer (ratings).
func NumberValue(n float64) AnswerValue { return AnswerValue{kind: ValueNumber, num: n} }

// ListValue wraps a multi-choice selection.
func ListValue(items ...string) AnswerValue {
	return AnswerValue{kind: ValueList, list: append([]string{}, items...)}
}

func (v AnswerValue) Kind() ValueKind { return v.kind }

// List returns a copy of the elements when v is a list.
func (v AnswerValue) List() ([]string, bool) {
	if v.kind != ValueList {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

// String is the bucketing/filtering form: numbers in shortest decimal form,
// lists joined with "," and none as "".
func (v AnswerValue) String() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueList:
		return strings.Join(v.list, ",")
	}
	return ""
}

// Render is the export form: lists joined with ", ".
func (v AnswerValue) Render() string {
	if v.kind == ValueList {
		return strings.Join(v.list, ", ")
	}
	return v.String()
}

// Truthy reports whether v counts as an answer for text sampling and required checks.
func (v AnswerValue) Truthy() bool {
	switch v.kind {
	case ValueString:
		return v.str != ""
	case ValueNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case ValueList:
		return len(v.list) > 0
	}
	return false
}

func (v AnswerValue) raw() interface{} {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return v.num
	case ValueList:
		if v.list == nil {
			return []string{}
		}
		return v.list
	}
	return nil
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw())
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = AnswerValue{}
	case string:
		*v = StringValue(x)
	case bool:
		*v = StringValue(strconv.FormatBool(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return fmt.Errorf("answer value %q: %w", x, err)
		}
		*v = NumberValue(f)
	case []interface{}:
		items := make([]string, 0, len(x))
		for _, el := range x {
			items = append(items, scalarString(el))
		}
		*v = AnswerValue{kind: ValueList, list: items}
	default:
		return fmt.Errorf("unsupported answer value: %s", string(data))
	}
	return nil
}

func scalarString(el interface{}) string {
	switch e := el.(type) {
	case nil:
		return ""
	case string:
		return e
	case bool:
		return strconv.FormatBool(e)
	case json.Number:
		if f, err := e.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return e.String()
	}
	b, _ := json.Marshal(el)
	return string(b)
}

func (v AnswerValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if v.kind == ValueNone {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(v.raw())
}

func (v *AnswerValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*v = AnswerValue{}
	case bsontype.String:
		*v = StringValue(rv.StringValue())
	case bsontype.Boolean:
		*v = StringValue(strconv.FormatBool(rv.Boolean()))
	case bsontype.Double:
		*v = NumberValue(rv.Double())
	case bsontype.Int32:
		*v = NumberValue(float64(rv.Int32()))
	case bsontype.Int64:
		*v = NumberValue(float64(rv.Int64()))
	case bsontype.Array:
		vals, err := rv.Array().Values()
		if err != nil {
			return err
		}
		items := make([]string, 0, len(vals))
		for _, el := range vals {
			items = append(items, bsonScalarString(el))
		}
		*v = AnswerValue{kind: ValueList, list: items}
	default:
		return fmt.Errorf("unsupported answer value bson type %s", t)
	}
	return nil
}

func bsonScalarString(rv bson.RawValue) string {
	switch rv.Type {
	case bsontype.String:
		return rv.StringValue()
	case bsontype.Double:
		return strconv.FormatFloat(rv.Double(), 'f', -1, 64)
	case bsontype.Int32:
		return strconv.FormatInt(int64(rv.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(rv.Int64(), 10)
	case bsontype.Boolean:
		return strconv.FormatBool(rv.Boolean())
	case bsontype.Null, bsontype.Undefined:
		return ""
	}
	return rv.String()
}
