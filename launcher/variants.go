package launcher

import (
	"strconv"
)

// Type names one launcher variant.
type Type string

const (
	// Plain mpiexec, the lowest common denominator.
	Basic Type = "basic"
	// Slurm job steps via srun.
	Slurm Type = "slurm"
	// The Livermore wrapper around IBM LSF's jsrun.
	LCLSF Type = "lclsf"
)

// Types in ascending order of preference for auto-detection.
var Types = []Type{Basic, Slurm, LCLSF}

var executables = map[Type]string{
	Basic: "mpiexec",
	Slurm: "srun",
	LCLSF: "lrun",
}

// '<flag> <v>'
func separateFlag(flag string) flagRule {
	return func(v int) []string { return []string{flag, strconv.Itoa(v)} }
}

// '<flag>=<v>'
func joinedFlag(flag string) flagRule {
	return func(v int) []string { return []string{flag + "=" + strconv.Itoa(v)} }
}

var flagTables = map[Type]map[Key]flagRule{
	Basic: {
		TaskCount: separateFlag("-n"),
	},
	Slurm: {
		TaskCount:    separateFlag("-n"),
		NodeCount:    separateFlag("-N"),
		TasksPerNode: joinedFlag("--ntasks-per-node"),
	},
	LCLSF: {
		TaskCount:    separateFlag("-n"),
		NodeCount:    separateFlag("-N"),
		TasksPerNode: separateFlag("-T"),
		GPUsPerTask:  separateFlag("-g"),
	},
}

// ExecutableFor returns the binary name of launcher type t, or "" if t is unknown.
func ExecutableFor(t Type) string {
	return executables[t]
}

// ParseType maps a configured name to a Type. Only the exact names in Types
// are accepted.
func ParseType(name string) (Type, error) {
	t := Type(name)
	if _, ok := executables[t]; !ok {
		return "", &UnknownLauncherError{Name: name}
	}
	return t, nil
}

// NewBasic returns an mpiexec launcher. It only understands TaskCount.
func NewBasic(opts ...Option) Launcher { return newVariant(Basic, opts) }

// NewSlurm returns an srun launcher. It has no GPU binding flag.
func NewSlurm(opts ...Option) Launcher { return newVariant(Slurm, opts) }

// NewLCLSF returns an lrun launcher, which supports every Key.
func NewLCLSF(opts ...Option) Launcher { return newVariant(LCLSF, opts) }

// New returns a launcher of type t.
func New(t Type, opts ...Option) (Launcher, error) {
	if _, ok := executables[t]; !ok {
		return nil, &UnknownLauncherError{Name: string(t)}
	}
	return newVariant(t, opts), nil
}
