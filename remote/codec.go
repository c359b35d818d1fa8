// Package remote runs registered Go operations inside every task of a
// parallel launch. A call is encoded into a single code line that the
// launched binary recognizes on its command line, decodes and dispatches.
package remote

import (
	"bytes"
	"encoding/base64"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// CodePrefix starts every encoded call, followed by three '.'-separated
// segments: op, args and kwargs.
const CodePrefix = "squirm:1:"

var encoding = base64.RawURLEncoding

// Invocation is a decoded call.
type Invocation struct {
	Op     string
	Args   Args
	Kwargs map[string]interface{}
}

// EncodeCall serializes op, args and kwargs independently and embeds them in
// one code line. Empty args and kwargs give empty segments.
// The result only contains characters that are safe inside shell quotes.
func EncodeCall(op string, args []interface{}, kwargs map[string]interface{}) (string, error) {
	if op == "" {
		return "", &SerializationError{Part: "op", Err: errors.New("empty operation name")}
	}
	opPart, err := encodePart("op", op)
	if err != nil {
		return "", err
	}
	var argsPart, kwargsPart string
	if len(args) > 0 {
		if argsPart, err = encodePart("args", args); err != nil {
			return "", err
		}
		// Launched tasks must be able to read back whatever we send.
		if err = decodePart("args", argsPart, &[]interface{}{}); err != nil {
			return "", err
		}
	}
	if len(kwargs) > 0 {
		if kwargsPart, err = encodePart("kwargs", kwargs); err != nil {
			return "", err
		}
		if err = decodePart("kwargs", kwargsPart, &map[string]interface{}{}); err != nil {
			return "", err
		}
	}
	return CodePrefix + opPart + "." + argsPart + "." + kwargsPart, nil
}

func encodePart(part string, v interface{}) (string, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return "", &SerializationError{Part: part, Err: err}
	}
	return encoding.EncodeToString(b), nil
}

// IsCall reports whether code looks like an encoded call.
func IsCall(code string) bool {
	return strings.HasPrefix(code, CodePrefix)
}

// DecodeCall is the inverse of EncodeCall. Integers come back as int64,
// floats as float64 and arrays as []interface{}. Maps whose keys are all
// strings come back as map[string]interface{}, any other map as
// map[interface{}]interface{}.
func DecodeCall(code string) (*Invocation, error) {
	if !IsCall(code) {
		return nil, &SerializationError{Part: "code", Err: errors.Errorf("missing %q prefix", CodePrefix)}
	}
	parts := strings.Split(strings.TrimPrefix(code, CodePrefix), ".")
	if len(parts) != 3 {
		return nil, &SerializationError{Part: "code", Err: errors.Errorf("want 3 segments, got %d", len(parts))}
	}

	inv := &Invocation{}
	if err := decodePart("op", parts[0], &inv.Op); err != nil {
		return nil, err
	}
	if inv.Op == "" {
		return nil, &SerializationError{Part: "op", Err: errors.New("empty operation name")}
	}
	if parts[1] != "" {
		var args []interface{}
		if err := decodePart("args", parts[1], &args); err != nil {
			return nil, err
		}
		inv.Args = normalizeSlice(args)
	}
	if parts[2] != "" {
		var kwargs map[string]interface{}
		if err := decodePart("kwargs", parts[2], &kwargs); err != nil {
			return nil, err
		}
		inv.Kwargs = normalizeMap(kwargs)
	}
	return inv, nil
}

func decodePart(part, segment string, v interface{}) (err error) {
	b, err := encoding.DecodeString(segment)
	if err != nil {
		return &SerializationError{Part: part, Err: err}
	}
	// A map key that decodes to a slice or map can't be hashed.
	defer func() {
		if r := recover(); r != nil {
			err = &SerializationError{Part: part, Err: errors.Errorf("undecodable value: %v", r)}
		}
	}()
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	dec.SetMapDecoder(func(d *msgpack.Decoder) (interface{}, error) {
		return d.DecodeUntypedMap()
	})
	if err := dec.Decode(v); err != nil {
		return &SerializationError{Part: part, Err: err}
	}
	return nil
}

// Collapses msgpack's sized numbers into int64 and float64. Unsigned values
// too large for int64 stay uint64.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t)
		}
		return t
	case float32:
		return float64(t)
	case []interface{}:
		return normalizeSlice(t)
	case map[string]interface{}:
		return normalizeMap(t)
	case map[interface{}]interface{}:
		return normalizeUntypedMap(t)
	default:
		return v
	}
}

func normalizeSlice(s []interface{}) []interface{} {
	for i, v := range s {
		s[i] = normalize(v)
	}
	return s
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		m[k] = normalize(v)
	}
	return m
}

func normalizeUntypedMap(m map[interface{}]interface{}) interface{} {
	out := make(map[interface{}]interface{}, len(m))
	allStrings := true
	for k, v := range m {
		k = normalize(k)
		if _, ok := k.(string); !ok {
			allStrings = false
		}
		out[k] = normalize(v)
	}
	if !allStrings {
		return out
	}
	strs := make(map[string]interface{}, len(out))
	for k, v := range out {
		strs[k.(string)] = v
	}
	return strs
}
