// Package squirmconfig holds the settings a squirm process reads once at
// startup: an optional YAML file, overridden by the environment.
package squirmconfig

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/scootdev/squirm/launcher"
	"github.com/scootdev/squirm/remote"
	osexecer "github.com/scootdev/squirm/runner/execer/os"
)

const (
	// Names the launcher type; unset means auto-detect, set but empty is an error.
	LauncherEnvVar = launcher.TypeEnvVar
	// Overrides the shell commands are run with.
	ShellEnvVar = "SQUIRM_SHELL"
)

type Config struct {
	// One of basic, slurm, lclsf, or empty to auto-detect.
	Launcher string `yaml:"launcher"`
	// Shell used to interpret launch command lines.
	Shell string `yaml:"shell"`
	// Prefix for running code strings.
	Interpreter []string `yaml:"interpreter"`
	LogLevel    string   `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Shell:       osexecer.DefaultShell,
		Interpreter: append([]string(nil), remote.DefaultInterpreter...),
		LogLevel:    log.InfoLevel.String(),
	}
}

// Load starts from Default, applies the YAML file at path if path is
// non-empty, then the environment as seen through lookupEnv (os.LookupEnv
// when nil), and validates the result.
func Load(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "couldn't read config %s", path)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "couldn't parse config %s", path)
		}
	}

	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	// Set means explicit, even when empty.
	if v, ok := lookupEnv(LauncherEnvVar); ok {
		if _, err := launcher.ParseType(v); err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s", LauncherEnvVar)
		}
		cfg.Launcher = v
	}
	if v, ok := lookupEnv(ShellEnvVar); ok && v != "" {
		cfg.Shell = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	log.WithFields(
		log.Fields{
			"launcher": cfg.Launcher,
			"shell":    cfg.Shell,
			"path":     path,
		}).Debug("Loaded config")
	return cfg, nil
}

// Parse overlays YAML data onto cfg. Fields the data doesn't name keep their values.
func Parse(data []byte, cfg *Config) error {
	return yaml.Unmarshal(data, cfg)
}

func (c Config) Validate() error {
	if c.Launcher != "" {
		if _, err := launcher.ParseType(c.Launcher); err != nil {
			return errors.Wrap(err, "invalid launcher in config")
		}
	}
	if c.Shell == "" {
		return errors.New("shell must not be empty")
	}
	if len(c.Interpreter) == 0 {
		return errors.New("interpreter must not be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log_level in config")
	}
	return nil
}

// Selector returns a launcher selector for the configured type that runs
// commands with the configured shell.
func (c Config) Selector(opts ...launcher.Option) *launcher.Selector {
	opts = append([]launcher.Option{launcher.WithExecer(osexecer.NewShellExecer(c.Shell))}, opts...)
	return launcher.NewSelector(c.Launcher, launcher.PathProber{}, opts...)
}
