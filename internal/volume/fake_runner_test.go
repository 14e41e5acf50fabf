package volume

import (
	"strings"

	"github.com/nace/luksctl/internal/system"
)

type call struct {
	name  string
	args  []string
	input string
}

func (c call) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// fakeRunner answers commands from a table keyed by "name arg1 arg2...".
type fakeRunner struct {
	calls   []call
	outputs map[string]string
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{},
		errs:    map[string]error{},
	}
}

func (r *fakeRunner) RunOutput(name string, args ...string) (string, error) {
	return r.record(call{name: name, args: args})
}

func (r *fakeRunner) RunInput(input []byte, name string, args ...string) (string, error) {
	return r.record(call{name: name, args: args, input: string(input)})
}

func (r *fakeRunner) record(c call) (string, error) {
	r.calls = append(r.calls, c)
	key := c.String()
	if err, ok := r.errs[key]; ok {
		return "", err
	}
	return r.outputs[key], nil
}

func (r *fakeRunner) commands() []string {
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.String())
	}
	return out
}

func exitErr(name string, code int, stderr string) error {
	return &system.CommandError{Name: name, ExitCode: code, Stderr: stderr, Err: errExit}
}

type exitError string

func (e exitError) Error() string { return string(e) }

const errExit = exitError("exit status 1")
