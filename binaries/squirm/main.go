package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/scootdev/squirm/cli"
	"github.com/scootdev/squirm/common/log/hooks"
	"github.com/scootdev/squirm/remote"
)

// CLI binary to run commands through the cluster's parallel launcher.
//	Supported commands: (see "-h" for all options)
//		exec -- [command]
//		run [code]
//		call [op] [args]
//		command -- [command]
//		which
//	Global flags:
//		--launcher [basic|slurm|lclsf]
//		--config [YAML file]
// 		--log_level [<error|info|debug> level and above should be logged]
//		--stats
//		-n, -N, --tasks-per-node, -g

func main() {
	log.AddHook(hooks.NewContextHook())

	reg := remote.NewRegistry()
	remote.RegisterBuiltins(reg)
	// Launched tasks re-enter here with '-c <code>'.
	if handled, code := remote.Serve(reg, os.Args); handled {
		os.Exit(code)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewCLI(reg).Exec(ctx)
	stop()
	if err != nil {
		log.Error("Error running squirm: ", err)
		os.Exit(cli.ExitCode(err))
	}
}
