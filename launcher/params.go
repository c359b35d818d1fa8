package launcher

import (
	"fmt"
	"sort"
	"strings"
)

// Key names one launcher-agnostic execution parameter.
type Key string

const (
	TaskCount    Key = "task_count"
	NodeCount    Key = "node_count"
	TasksPerNode Key = "tasks_per_node"
	GPUsPerTask  Key = "gpus_per_task"
)

// Keys lists every recognized parameter in the order flags are emitted.
var Keys = []Key{TaskCount, NodeCount, TasksPerNode, GPUsPerTask}

func (k Key) index() int {
	for i, known := range Keys {
		if k == known {
			return i
		}
	}
	return len(Keys)
}

// Params is an immutable set of execution parameters. A key is present only
// if it was explicitly supplied, so an absent key is not the same as zero.
// The zero value is the empty set.
type Params struct {
	values map[Key]int
}

type ParamOption func(map[Key]int)

// WithParam sets k to v.
func WithParam(k Key, v int) ParamOption {
	return func(m map[Key]int) { m[k] = v }
}

// WithTasks sets the number of parallel tasks to launch.
func WithTasks(n int) ParamOption { return WithParam(TaskCount, n) }

// WithNodes sets the number of nodes to run on.
func WithNodes(n int) ParamOption { return WithParam(NodeCount, n) }

// WithTasksPerNode sets how many tasks run on each node.
func WithTasksPerNode(n int) ParamOption { return WithParam(TasksPerNode, n) }

// WithGPUsPerTask sets the number of GPUs bound to each task.
func WithGPUsPerTask(n int) ParamOption { return WithParam(GPUsPerTask, n) }

func NewParams(opts ...ParamOption) Params {
	values := make(map[Key]int, len(opts))
	for _, opt := range opts {
		opt(values)
	}
	return Params{values: values}
}

func (p Params) Get(k Key) (int, bool) {
	v, ok := p.values[k]
	return v, ok
}

func (p Params) Has(k Key) bool {
	_, ok := p.values[k]
	return ok
}

func (p Params) Len() int {
	return len(p.values)
}

// Keys returns the present keys, recognized ones first in flag order,
// followed by any unrecognized ones sorted by name.
func (p Params) Keys() []Key {
	keys := make([]Key, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ii, ij := keys[i].index(), keys[j].index()
		if ii != ij {
			return ii < ij
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (p Params) String() string {
	parts := make([]string, 0, len(p.values))
	for _, k := range p.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%d", k, p.values[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
