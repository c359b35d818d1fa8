package remote

import (
	"github.com/pkg/errors"
)

// Args are the positional arguments of a decoded call.
type Args []interface{}

func (a Args) Len() int { return len(a) }

func (a Args) at(i int) (interface{}, error) {
	if i < 0 || i >= len(a) {
		return nil, errors.Errorf("argument %d out of range (have %d)", i, len(a))
	}
	return a[i], nil
}

func (a Args) String(i int) (string, error) {
	v, err := a.at(i)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", errors.Errorf("argument %d is %T, not a string", i, v)
}

func (a Args) Int(i int) (int64, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	}
	return 0, errors.Errorf("argument %d is %T, not an integer", i, v)
}

// Float accepts integers too.
func (a Args) Float(i int) (float64, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	}
	return 0, errors.Errorf("argument %d is %T, not a number", i, v)
}

func (a Args) Bool(i int) (bool, error) {
	v, err := a.at(i)
	if err != nil {
		return false, err
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, errors.Errorf("argument %d is %T, not a bool", i, v)
}
