package launcher

import (
	log "github.com/sirupsen/logrus"

	"github.com/scootdev/squirm/common/stats"
)

// TypeEnvVar is the environment variable callers conventionally read the
// launcher type from. The selector itself never reads the environment.
const TypeEnvVar = "SQUIRM_EXECUTOR_TYPE"

// Guess scans every launcher type in ascending preference order and returns
// the last one whose executable the prober reports present, so a
// cluster-specific launcher wins over plain mpiexec.
func Guess(prober Prober) (Type, error) {
	var guessed Type
	searched := make([]string, 0, len(Types))
	for _, t := range Types {
		searched = append(searched, executables[t])
		if prober.Present(executables[t]) {
			guessed = t
		}
	}
	if guessed == "" {
		return "", &NoLauncherFoundError{Searched: searched}
	}
	return guessed, nil
}

// Selector resolves which launcher to use.
type Selector struct {
	// Explicit launcher type name; empty means guess.
	Name string
	// Used when guessing. Defaults to PathProber.
	Prober Prober
	// Defaults to a nil receiver.
	Stat stats.StatsReceiver
	// Passed to the constructed launcher.
	Options []Option
}

func NewSelector(name string, prober Prober, opts ...Option) *Selector {
	return &Selector{Name: name, Prober: prober, Options: opts}
}

// Select instantiates the named launcher, or guesses one from the prober and
// logs a warning saying so.
func (s *Selector) Select() (Launcher, error) {
	if s.Name != "" {
		t, err := ParseType(s.Name)
		if err != nil {
			return nil, err
		}
		return New(t, s.Options...)
	}

	prober := s.Prober
	if prober == nil {
		prober = PathProber{}
	}
	stat := s.Stat
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}

	stat.Counter(stats.LauncherGuessCounter).Inc(1)
	t, err := Guess(prober)
	if err != nil {
		stat.Counter(stats.LauncherNotFoundCounter).Inc(1)
		return nil, err
	}
	log.WithFields(
		log.Fields{
			"launcher":   t,
			"executable": executables[t],
		}).Warnf("%s has not been set; guessed launcher type '%s'.", TypeEnvVar, t)
	return New(t, s.Options...)
}
