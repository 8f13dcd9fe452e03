package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeExecutor struct {
	mu       sync.Mutex
	commands []string
	stdout   []byte
	stderr   []byte
	err      error
	delay    time.Duration
}

func (f *fakeExecutor) Exec(cmd string) ([]byte, []byte, int, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.stdout, f.stderr, 0, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunSubstitutesArguments(t *testing.T) {
	executor := &fakeExecutor{stdout: []byte("ok")}
	runner := NewRunner(executor, time.Second, testLogger())

	output, err := runner.Run(context.Background(), "apt-cache show {pkg}", map[string]string{"pkg": "htop"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if output != "ok" {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(executor.commands) != 1 || executor.commands[0] != "apt-cache show htop" {
		t.Fatalf("unexpected command: %v", executor.commands)
	}
}

func TestRunRejectsUnsafeArgument(t *testing.T) {
	executor := &fakeExecutor{}
	runner := NewRunner(executor, time.Second, testLogger())

	_, err := runner.Run(context.Background(), "apt list | grep {pkg}", map[string]string{"pkg": "x; rm -rf /"})
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if len(executor.commands) != 0 {
		t.Fatalf("command must not reach the executor: %v", executor.commands)
	}
}

func TestRunCombinesStdoutAndStderr(t *testing.T) {
	executor := &fakeExecutor{stdout: []byte("listing\n"), stderr: []byte("warning: stale cache\n")}
	runner := NewRunner(executor, time.Second, testLogger())

	output, err := runner.Run(context.Background(), "apt list", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if output != "listing\nwarning: stale cache\n" {
		t.Fatalf("unexpected combined output: %q", output)
	}
}

func TestRunNormalizesEscapes(t *testing.T) {
	executor := &fakeExecutor{stdout: []byte(`first\nsecond\tcolumn`)}
	runner := NewRunner(executor, time.Second, testLogger())

	output, err := runner.Run(context.Background(), "uptime", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if output != "first\nsecond\tcolumn" {
		t.Fatalf("escapes not normalized: %q", output)
	}
}

func TestRunTransportFailure(t *testing.T) {
	executor := &fakeExecutor{err: errors.New("connection lost")}
	runner := NewRunner(executor, time.Second, testLogger())

	if _, err := runner.Run(context.Background(), "uptime", nil); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestRunWithoutConnection(t *testing.T) {
	runner := NewRunner(nil, time.Second, testLogger())
	if _, err := runner.Run(context.Background(), "uptime", nil); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	executor := &fakeExecutor{stdout: []byte("late"), delay: 200 * time.Millisecond}
	runner := NewRunner(executor, time.Second, testLogger())
	runner.timeout = 20 * time.Millisecond

	if _, err := runner.Run(context.Background(), "uptime", nil); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult on expiry, got %v", err)
	}
}

func TestRunSerializesAccess(t *testing.T) {
	executor := &fakeExecutor{stdout: []byte("ok"), delay: 10 * time.Millisecond}
	runner := NewRunner(executor, time.Second, testLogger())

	var group sync.WaitGroup
	for i := 0; i < 8; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			if _, err := runner.Run(context.Background(), "uptime", nil); err != nil {
				t.Errorf("run: %v", err)
			}
		}()
	}
	group.Wait()

	if len(executor.commands) != 8 {
		t.Fatalf("expected 8 executions, got %d", len(executor.commands))
	}
}
