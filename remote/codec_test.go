package remote

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCall(t *testing.T) {
	code, err := EncodeCall("greet",
		[]interface{}{"hello", 3, 2.5, true, []int{1, 2}},
		map[string]interface{}{"name": "world", "times": uint8(2), "ratio": float32(0.5)})
	require.NoError(t, err)
	assert.True(t, IsCall(code))
	assert.NotContains(t, code, "'")
	assert.NotContains(t, code, " ")

	inv, err := DecodeCall(code)
	require.NoError(t, err)
	assert.Equal(t, "greet", inv.Op)
	assert.Equal(t, Args{"hello", int64(3), 2.5, true, []interface{}{int64(1), int64(2)}}, inv.Args)
	assert.Equal(t, map[string]interface{}{"name": "world", "times": int64(2), "ratio": float64(0.5)}, inv.Kwargs)
}

func TestEncodeEmptySegments(t *testing.T) {
	code, err := EncodeCall("noop", nil, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(code, ".."), code)

	inv, err := DecodeCall(code)
	require.NoError(t, err)
	assert.Equal(t, "noop", inv.Op)
	assert.Empty(t, inv.Args)
	assert.Empty(t, inv.Kwargs)
}

func TestEncodeUnserializable(t *testing.T) {
	_, err := EncodeCall("op", []interface{}{make(chan int)}, nil)
	var serr *SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "args", serr.Part)

	_, err = EncodeCall("op", nil, map[string]interface{}{"f": func() {}})
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "kwargs", serr.Part)

	_, err = EncodeCall("", nil, nil)
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "op", serr.Part)
}

func TestDecodeGarbage(t *testing.T) {
	for _, code := range []string{
		"print('hi')",
		CodePrefix,
		CodePrefix + "a.b",
		CodePrefix + "!!!..",
		CodePrefix + "..",
	} {
		_, err := DecodeCall(code)
		var serr *SerializationError
		assert.True(t, errors.As(err, &serr), "%q should fail to decode, got %v", code, err)
	}
}

func TestArgsAccessors(t *testing.T) {
	args := Args{"s", int64(4), 1.5, false}

	s, err := args.String(0)
	assert.NoError(t, err)
	assert.Equal(t, "s", s)

	n, err := args.Int(1)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)

	f, err := args.Float(1)
	assert.NoError(t, err)
	assert.Equal(t, 4.0, f)

	f, err = args.Float(2)
	assert.NoError(t, err)
	assert.Equal(t, 1.5, f)

	b, err := args.Bool(3)
	assert.NoError(t, err)
	assert.False(t, b)

	_, err = args.Int(0)
	assert.Error(t, err)
	_, err = args.String(4)
	assert.Error(t, err)
	_, err = args.Bool(-1)
	assert.Error(t, err)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, ShellQuote("plain"))
	assert.Equal(t, `'it'\''s'`, ShellQuote("it's"))
	assert.Equal(t, `''`, ShellQuote(""))
}

func TestEncodeDecodeNonStringKeys(t *testing.T) {
	code, err := EncodeCall("op",
		[]interface{}{map[int]int8{1: 2}, map[string]interface{}{"k": map[bool]string{true: "yes"}}},
		map[string]interface{}{"byID": map[uint16]string{7: "seven"}})
	require.NoError(t, err)

	inv, err := DecodeCall(code)
	require.NoError(t, err)
	assert.Equal(t, Args{
		map[interface{}]interface{}{int64(1): int64(2)},
		map[string]interface{}{"k": map[interface{}]interface{}{true: "yes"}},
	}, inv.Args)
	assert.Equal(t, map[string]interface{}{"byID": map[interface{}]interface{}{int64(7): "seven"}}, inv.Kwargs)
}

func TestEncodeRejectsUndecodableKeys(t *testing.T) {
	_, err := EncodeCall("op", []interface{}{map[interface{}]int{[2]int{1, 2}: 1}}, nil)
	var serr *SerializationError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.Equal(t, "args", serr.Part)
}
