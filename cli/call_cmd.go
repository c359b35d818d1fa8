package cli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scootdev/squirm/remote"
)

type callCmd struct {
	kwargs []string
}

func (c *callCmd) registerFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "call op [args...]",
		Short: "call a registered operation in every task",
		Long: "Each argument and --kwarg value is read as a YAML scalar or flow " +
			"collection, so 3 is an integer, true a bool and [a, 1] a list.",
		Args: cobra.MinimumNArgs(1),
	}
	r.Flags().StringArrayVar(&c.kwargs, "kwarg", nil, "keyword argument as key=value (repeatable)")
	return r
}

func (c *callCmd) run(cl *CLI, cmd *cobra.Command, args []string) error {
	op := args[0]
	values := make([]interface{}, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := parseValue(a)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	kwargs := make(map[string]interface{}, len(c.kwargs))
	for _, kv := range c.kwargs {
		k, raw, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return errors.Errorf("bad --kwarg %q, want key=value", kv)
		}
		v, err := parseValue(raw)
		if err != nil {
			return err
		}
		kwargs[k] = v
	}

	l, err := cl.launcher()
	if err != nil {
		return err
	}
	r := remote.NewRunner(l, cl.registry)
	r.Stat = cl.stat
	return r.Call(cmd.Context(), op, values, kwargs, cl.params(cmd))
}

func parseValue(s string) (interface{}, error) {
	var v interface{}
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse argument %q", s)
	}
	if v == nil {
		return s, nil
	}
	return v, nil
}
