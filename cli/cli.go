package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	scooterrors "github.com/scootdev/squirm/common/errors"
	"github.com/scootdev/squirm/common/stats"
	"github.com/scootdev/squirm/config/squirmconfig"
	"github.com/scootdev/squirm/launcher"
	"github.com/scootdev/squirm/remote"
)

// Squirm CLI, one struct per subcommand.
type CLI struct {
	rootCmd *cobra.Command

	configPath   string
	launcherName string
	logLevel     string
	showStats    bool

	tasks        int
	nodes        int
	tasksPerNode int
	gpusPerTask  int

	cfg      squirmconfig.Config
	registry *remote.Registry
	stat     stats.StatsReceiver
	lookup   func(string) (string, bool)
	stdout   io.Writer
	stderr   io.Writer
}

// NewCLI builds the command tree. reg holds the operations 'call' may name;
// the binary must Serve the same registry.
func NewCLI(reg *remote.Registry) *CLI {
	c := &CLI{
		registry: reg,
		stat:     stats.DefaultStatsReceiver(),
		lookup:   os.LookupEnv,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}

	c.rootCmd = &cobra.Command{
		Use:               "squirm",
		Short:             "squirm runs commands in parallel through mpiexec, srun or lrun",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	flags := c.rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "YAML config file")
	flags.StringVar(&c.launcherName, "launcher", "", "launcher type (basic|slurm|lclsf); overrides config and "+squirmconfig.LauncherEnvVar)
	flags.StringVar(&c.logLevel, "log_level", "", "Log everything at this level and above (error|info|debug)")
	flags.BoolVar(&c.showStats, "stats", false, "print launch stats to stderr on exit")
	flags.IntVarP(&c.tasks, "tasks", "n", 0, "number of tasks")
	flags.IntVarP(&c.nodes, "nodes", "N", 0, "number of nodes")
	flags.IntVar(&c.tasksPerNode, "tasks-per-node", 0, "tasks per node")
	flags.IntVarP(&c.gpusPerTask, "gpus-per-task", "g", 0, "GPUs per task")

	c.addCmd(&execCmd{})
	c.addCmd(&runCmd{})
	c.addCmd(&callCmd{})
	c.addCmd(&commandCmd{})
	c.addCmd(&whichCmd{})
	return c
}

func (c *CLI) Exec(ctx context.Context) error {
	err := c.rootCmd.ExecuteContext(ctx)
	if c.showStats {
		fmt.Fprintln(c.stderr, string(c.stat.Render(true)))
	}
	return err
}

// SetArgs replaces os.Args[1:].
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects the CLI's own output. Launched children keep writing
// to the process's stdout and stderr.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.stdout, c.stderr = stdout, stderr
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
}

func (c *CLI) addCmd(cmd command) {
	cobraCmd := cmd.registerFlags()
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.run(c, innerCmd, args)
	}
	c.rootCmd.AddCommand(cobraCmd)
}

type command interface {
	registerFlags() *cobra.Command
	run(cl *CLI, cmd *cobra.Command, args []string) error
}

func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := squirmconfig.Load(c.configPath, c.lookup)
	if err != nil {
		return scooterrors.NewError(err, scooterrors.ConfigurationFailureExitCode)
	}
	if c.launcherName != "" {
		cfg.Launcher = c.launcherName
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return scooterrors.NewError(err, scooterrors.ConfigurationFailureExitCode)
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	c.cfg = cfg
	return nil
}

func (c *CLI) launcher() (launcher.Launcher, error) {
	sel := c.cfg.Selector(launcher.WithStats(c.stat))
	sel.Stat = c.stat
	l, err := sel.Select()
	if err != nil {
		return nil, scooterrors.NewError(err, scooterrors.ConfigurationFailureExitCode)
	}
	return l, nil
}

// params holds only the parameter flags that were given.
func (c *CLI) params(cmd *cobra.Command) launcher.Params {
	var opts []launcher.ParamOption
	flags := cmd.Flags()
	if flags.Changed("tasks") {
		opts = append(opts, launcher.WithTasks(c.tasks))
	}
	if flags.Changed("nodes") {
		opts = append(opts, launcher.WithNodes(c.nodes))
	}
	if flags.Changed("tasks-per-node") {
		opts = append(opts, launcher.WithTasksPerNode(c.tasksPerNode))
	}
	if flags.Changed("gpus-per-task") {
		opts = append(opts, launcher.WithGPUsPerTask(c.gpusPerTask))
	}
	return launcher.NewParams(opts...)
}

// ExitCode is the status a squirm process should exit with after err: the
// child's own code for a failed launch, 128+signal for a child killed by a
// signal, the carried code for an ExitCodeError, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var perr *launcher.ProcessError
	if errors.As(err, &perr) {
		if perr.ExitCode < 0 {
			return 128 - int(perr.ExitCode)
		}
		return int(perr.ExitCode)
	}
	var ecerr *scooterrors.ExitCodeError
	if errors.As(err, &ecerr) {
		return int(ecerr.GetExitCode())
	}
	return int(scooterrors.OperationFailureExitCode)
}
