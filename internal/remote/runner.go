// Package remote executes allow-listed command templates on the managed
// host over a single shared SSH connection.
package remote

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ErrNoResult means the command produced nothing usable: a rejected
// argument, a missing connection, a transport failure, or a timeout.
// Callers surface a generic retry prompt to the user and carry on.
var ErrNoResult = errors.New("remote: no result")

// Executor runs one command to completion on the remote host.
type Executor interface {
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)
}

// Runner interpolates sanitized arguments into command templates and runs
// them over the shared connection. The connection carries one command at a
// time, so Run serializes callers.
type Runner struct {
	executor Executor
	timeout  time.Duration
	logger   *slog.Logger

	mu sync.Mutex
}

func NewRunner(executor Executor, timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout < time.Second {
		timeout = 60 * time.Second
	}
	return &Runner{executor: executor, timeout: timeout, logger: logger}
}

type execResult struct {
	stdout []byte
	stderr []byte
	err    error
}

// Run substitutes args into template and executes the result, returning
// the combined, normalized stdout+stderr text. Every argument must pass
// SafeArg; a rejected argument aborts the call with ErrNoResult before
// anything reaches the remote host.
func (r *Runner) Run(ctx context.Context, template string, args map[string]string) (string, error) {
	for name, value := range args {
		if !SafeArg(value) {
			r.logger.Warn("unsafe argument rejected", "arg", name, "value", value)
			return "", ErrNoResult
		}
	}
	command := expand(template, args)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.executor == nil {
		r.logger.Warn("remote connection unavailable", "command", command)
		return "", ErrNoResult
	}

	r.logger.Debug("running remote command", "command", command)
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan execResult, 1)
	go func() {
		stdout, stderr, _, err := r.executor.Exec(command)
		done <- execResult{stdout: stdout, stderr: stderr, err: err}
	}()

	select {
	case <-runCtx.Done():
		r.logger.Warn("remote command expired", "command", command, "timeout", r.timeout)
		return "", ErrNoResult
	case result := <-done:
		if result.err != nil {
			r.logger.Warn("remote command failed", "command", command, "error", result.err)
			return "", ErrNoResult
		}
		// The exit code is deliberately ignored: stderr is part of the
		// combined output and operators want to see remote failures.
		return normalizeOutput(append(result.stdout, result.stderr...)), nil
	}
}

// expand replaces {name} placeholders with their argument values.
func expand(template string, args map[string]string) string {
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for name, value := range args {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// normalizeOutput decodes combined output bytes and rewrites literal
// backslash escapes for newline and tab left over from the transport's
// byte-to-text conversion into real control characters.
func normalizeOutput(raw []byte) string {
	text := string(raw)
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\t`, "\t")
	return text
}
