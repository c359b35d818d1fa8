package remote

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	scooterrors "github.com/scootdev/squirm/common/errors"
)

// Func is a remotely callable operation. It runs once in every launched task.
type Func func(args Args, kwargs map[string]interface{}) error

// Registry maps operation names to Funcs. Both the caller and the launched
// binary must register the same names.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Func)}
}

// Register adds fn under name. Like http.Handle, it panics on an empty name,
// a nil fn, or a name that is already taken.
func (r *Registry) Register(name string, fn Func) {
	if name == "" {
		panic("remote: empty operation name")
	}
	if fn == nil {
		panic("remote: nil Func for " + name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[name]; ok {
		panic("remote: operation registered twice: " + name)
	}
	r.ops[name] = fn
}

func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.ops[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch decodes code, looks the op up and calls it exactly once.
func (r *Registry) Dispatch(code string) error {
	_, err := r.dispatch(code)
	return err
}

// dispatch also reports the exit code a process serving code should end with.
func (r *Registry) dispatch(code string) (scooterrors.ExitCode, error) {
	inv, err := DecodeCall(code)
	if err != nil {
		return scooterrors.DecodeFailureExitCode, err
	}
	fn, ok := r.Lookup(inv.Op)
	if !ok {
		return scooterrors.UnknownOperationExitCode, &UnknownOperationError{Op: inv.Op}
	}
	if err := fn(inv.Args, inv.Kwargs); err != nil {
		return scooterrors.OperationFailureExitCode, errors.Wrapf(err, "operation %q failed", inv.Op)
	}
	return scooterrors.SuccessExitCode, nil
}
