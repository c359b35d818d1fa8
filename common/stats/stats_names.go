package stats

/*
This file defines all the metrics being collected. As new metrics are added please follow this pattern.
*/

const (
	/************************* Launcher metrics **************************/
	/*
		the number of commands a launcher tried to execute, scoped by launcher type
	*/
	LauncherExecuteCounter = "launcherExecuteCounter"

	/*
		the number of launched commands that exited with a nonzero status
	*/
	LauncherFailureCounter = "launcherFailureCounter"

	/*
		the number of commands that could not be spawned at all (shell missing, fork failure)
	*/
	LauncherStartErrCounter = "launcherStartErrCounter"

	/*
		the number of build requests rejected because the launcher does not support a parameter
	*/
	LauncherUnsupportedParamCounter = "launcherUnsupportedParamCounter"

	/*
		wall time of a launched command, from spawn until the child exits
	*/
	LauncherExecuteLatency_ms = "launcherExecuteLatency_ms"

	/************************* Selector metrics **************************/
	/*
		the number of times the launcher type was guessed from PATH instead of configured
	*/
	LauncherGuessCounter = "launcherGuessCounter"

	/*
		the number of guesses that found no launcher at all
	*/
	LauncherNotFoundCounter = "launcherNotFoundCounter"

	/************************* Remote invocation metrics **************************/
	/*
		the number of remote calls encoded and launched
	*/
	RemoteCallCounter = "remoteCallCounter"

	/*
		the number of remote calls rejected because an argument could not be serialized
	*/
	RemoteSerializationErrCounter = "remoteSerializationErrCounter"

	/*
		the number of interpreter code strings launched through RunCode
	*/
	RemoteRunCodeCounter = "remoteRunCodeCounter"
)
