package launcher

//go:generate mockgen -destination=mocks/mock_prober.go -package=mocks github.com/scootdev/squirm/launcher Prober

import (
	"os/exec"
)

// Prober answers whether an executable is available to launch.
type Prober interface {
	Present(executable string) bool
}

// PathProber looks executables up on PATH.
type PathProber struct{}

func (PathProber) Present(executable string) bool {
	_, err := exec.LookPath(executable)
	return err == nil
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(executable string) bool

func (f ProberFunc) Present(executable string) bool { return f(executable) }
