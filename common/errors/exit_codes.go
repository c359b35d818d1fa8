package errors

type ExitCode int

const (
	SuccessExitCode ExitCode = 0

	// Generic failure of a remotely invoked operation
	OperationFailureExitCode ExitCode = 1

	// Launcher selection or parameter problems detected before anything was spawned
	ConfigurationFailureExitCode ExitCode = 64

	// Remote invocation entry point
	DecodeFailureExitCode    ExitCode = 70
	UnknownOperationExitCode ExitCode = 71

	CouldNotExecExitCode ExitCode = 110
)
