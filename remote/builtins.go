package remote

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// RegisterBuiltins adds the operations every squirm binary understands:
//
//	echo    prints its args, space separated, then its kwargs sorted by key.
//	expect  succeeds only if kwargs["want"] equals the remaining args, so a
//	        round trip through the codec can be checked from the exit code.
func RegisterBuiltins(reg *Registry) {
	reg.Register("echo", echoTo(os.Stdout))
	reg.Register("expect", expect)
}

func echoTo(w io.Writer) Func {
	return func(args Args, kwargs map[string]interface{}) error {
		words := make([]string, 0, len(args)+len(kwargs))
		for _, a := range args {
			words = append(words, fmt.Sprint(a))
		}
		keys := make([]string, 0, len(kwargs))
		for k := range kwargs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			words = append(words, fmt.Sprintf("%s=%v", k, kwargs[k]))
		}
		_, err := fmt.Fprintln(w, strings.Join(words, " "))
		return err
	}
}

func expect(args Args, kwargs map[string]interface{}) error {
	want, _ := kwargs["want"].([]interface{})
	got := []interface{}(args)
	if len(want) == 0 && len(got) == 0 {
		return nil
	}
	if !reflect.DeepEqual(want, got) {
		return errors.Errorf("unexpected args:\n%s\nwant:\n%s", spew.Sdump(got), spew.Sdump(want))
	}
	return nil
}
