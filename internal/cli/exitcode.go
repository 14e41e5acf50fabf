package cli

import (
	"github.com/nace/luksctl/internal/workflow"
)

// Process exit codes. Warnings do not change the exit code.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitDevice  = 3
	ExitMount   = 4
	ExitState   = 5
)

var exitCodes = map[workflow.Kind]int{
	workflow.InvalidArgument:          ExitUsage,
	workflow.PermissionDenied:         ExitUsage,
	workflow.AlreadyMounted:           ExitUsage,
	workflow.NotMounted:               ExitUsage,
	workflow.MountPointCreationFailed: ExitUsage,
	workflow.DeviceNotLuks:            ExitDevice,
	workflow.UnlockFailed:             ExitDevice,
	workflow.MountFailed:              ExitMount,
	workflow.UnmountFailed:            ExitMount,
	workflow.StoreUnavailable:         ExitState,
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if code, ok := exitCodes[workflow.KindOf(err)]; ok {
		return code
	}
	return ExitFailure
}
