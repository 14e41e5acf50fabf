package system

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// CommandError is returned when an external command exits unsuccessfully.
// Stderr is kept separately so callers can classify well-known failures.
type CommandError struct {
	Name     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s failed: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s failed: %v\nStderr: %s", e.Name, e.Err, stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Executor handles execution of external commands
type Executor struct {
	log zerolog.Logger
}

// NewExecutor creates a new executor. Commands are traced to log at debug level.
func NewExecutor(log zerolog.Logger) *Executor {
	return &Executor{log: log}
}

// RunOutput executes a command and returns stdout
func (e *Executor) RunOutput(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	return e.RunCmd(cmd)
}

// RunInput executes a command with input written to its stdin.
// The input is never logged.
func (e *Executor) RunInput(input []byte, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(input)
	return e.RunCmd(cmd)
}

// RunCmd executes a prepared command
func (e *Executor) RunCmd(cmd *exec.Cmd) (string, error) {
	e.log.Debug().Str("cmd", cmd.String()).Msg("executing")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		cmdErr := &CommandError{
			Name:     cmd.Args[0],
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		e.log.Debug().Str("cmd", cmd.Args[0]).Int("exit", cmdErr.ExitCode).
			Str("stderr", strings.TrimSpace(cmdErr.Stderr)).Msg("command failed")
		return "", cmdErr
	}

	return stdout.String(), nil
}

// CommandExists checks if a command is available in PATH
func (e *Executor) CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// CheckDependencies verifies required commands are available
func (e *Executor) CheckDependencies(deps []string) error {
	var missing []string
	for _, dep := range deps {
		if !e.CommandExists(dep) {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required commands: %s",
			strings.Join(missing, ", "))
	}
	return nil
}
