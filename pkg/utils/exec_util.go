package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

// CommandTimeout bounds every RunCommand call.
const CommandTimeout = 10 * time.Second

// RunCommand runs a command with CommandTimeout and returns its combined output.
func RunCommand(name string, args ...string) (string, error) {
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	hideWindow(cmd)
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start command %s: %w", name, err)
	}
	err := cmd.Wait()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logger.Log.Warn("Command timeout", "command", name, "args", args)
		return out.String(), fmt.Errorf("command %s timed out", name)
	}
	return out.String(), err
}
