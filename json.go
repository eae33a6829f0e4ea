package calculus

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// JSON Serialization
// ============================================================

var opsByName = map[string]Op{
	"add": OpAdd,
	"sub": OpSub,
	"mul": OpMul,
	"div": OpDiv,
	"pow": OpPow,
}

// Encode converts e into its JSON object form. Numbers are encoded as
// strings so NaN and infinities survive the round trip.
func Encode(e Expr) (map[string]interface{}, error) {
	switch v := e.(type) {
	case Number:
		return map[string]interface{}{"type": "num", "value": strconv.FormatFloat(v.Value, 'g', -1, 64)}, nil
	case Variable:
		return map[string]interface{}{"type": "var", "name": v.Name}, nil
	case BinaryOp:
		if v.Op.name() == "" {
			return nil, unknownShape("encode", v)
		}
		l, err := Encode(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := Encode(v.Right)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"type": v.Op.name(), "left": l, "right": r}, nil
	case Call:
		args := make([]interface{}, len(v.Args))
		for i, a := range v.Args {
			m, err := Encode(a)
			if err != nil {
				return nil, err
			}
			args[i] = m
		}
		return map[string]interface{}{"type": "call", "name": v.Name, "args": args}, nil
	}
	return nil, unknownShape("encode", e)
}

// ToJSON encodes e as a JSON string.
func ToJSON(e Expr) (string, error) {
	m, err := Encode(e)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// ParseJSON decodes a JSON document produced by ToJSON.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}
	return FromJSON(m)
}

// FromJSON rebuilds an expression from its decoded JSON object form.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		switch val := data["value"].(type) {
		case float64:
			return Num(val), nil
		case string:
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid num value: %s", val)
			}
			return Num(f), nil
		case nil:
			return nil, fmt.Errorf("num: missing 'value'")
		}
		return nil, fmt.Errorf("num: 'value' must be a string or a number")

	case "var":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return Var(name), nil

	case "add", "sub", "mul", "div", "pow":
		l, err := subObj("left")
		if err != nil {
			return nil, err
		}
		r, err := subObj("right")
		if err != nil {
			return nil, err
		}
		return BinaryOp{Op: opsByName[typ], Left: l, Right: r}, nil

	case "call":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		raw, ok := data["args"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("call: %q must be an array", "args")
		}
		args := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("call: args[%d] must be an object", i)
			}
			a, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("call: args[%d]: %w", i, err)
			}
			args[i] = a
		}
		return Call{Name: name, Args: args}, nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
