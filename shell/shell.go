// Package shell runs user supplied commands through sh -c.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"istat/logging"
)

// Spawn starts command in the background and returns once it is running.
// Failures are logged, never returned to the caller's event loop.
func Spawn(command string) {
	logging.DebugLog.Printf("exec: command --> %s <--", command)
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Start(); err != nil {
		logging.ErrorLog.Printf("fail: command --> %s <-- %v", command, err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logging.WarnLog.Printf("exit: command --> %s <-- %v", command, err)
		}
	}()
}

// Output runs command with env added to the process environment and returns
// its trimmed stdout. A non-zero exit is not an error; the output is still
// returned.
func Output(ctx context.Context, command string, env map[string]string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err := cmd.Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return "", fmt.Errorf("run %q: %w", command, err)
		}
		logging.DebugLog.Printf("exit: command --> %s <-- %v", command, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Succeeds reports whether command exits zero.
func Succeeds(ctx context.Context, name string, args ...string) bool {
	return exec.CommandContext(ctx, name, args...).Run() == nil
}
