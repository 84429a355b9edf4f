package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ms584/Q-Net/internal/circuit"
	"github.com/ms584/Q-Net/internal/ir"
)

// ShotsEnv is the environment variable carrying the shot count to a
// Command executor's program.
const ShotsEnv = "QNET_SHOTS"

// Command runs an external program as the executor.
//
// The program receives the circuit as OpenQASM 2.0 on stdin and the shot
// count in $QNET_SHOTS. It must print a single JSON object on stdout:
//
//	{"counts": {"100": 250, "101": 262, ...}}
//
// Keys may separate registers with spaces, as cloud SDKs commonly do.
// A non-zero exit status is a failure; stderr is included in the error.
type Command struct {
	Path    string
	Args    []string
	Timeout time.Duration

	// Label names the executor in logs and run history. Defaults to the
	// program's base name.
	Label string
}

type commandOutput struct {
	Counts map[string]int64 `json:"counts"`
}

// Name implements Executor.
func (e *Command) Name() string {
	if e.Label != "" {
		return e.Label
	}
	return "command/" + baseName(e.Path)
}

// Execute implements Executor.
func (e *Command) Execute(ctx context.Context, c *ir.Circuit, shots int64) (ir.Counts, error) {
	if e.Path == "" {
		return nil, fmt.Errorf("command executor has no program configured")
	}
	src, err := circuit.QASM(c)
	if err != nil {
		return nil, err
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.Path, e.Args...)
	cmd.Stdin = strings.NewReader(src)
	cmd.Env = append(os.Environ(), ShotsEnv+"="+strconv.FormatInt(shots, 10))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("executor command starting", "path", e.Path, "args", e.Args, "shots", shots)
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("run %s: %w", e.Path, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("run %s: %w: %s", e.Path, err, msg)
		}
		return nil, fmt.Errorf("run %s: %w", e.Path, err)
	}
	slog.Debug("executor command finished", "path", e.Path, "elapsed", time.Since(start))

	var out commandOutput
	dec := json.NewDecoder(&stdout)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s output: %w", e.Path, err)
	}
	if out.Counts == nil {
		return nil, fmt.Errorf("%s output has no counts", e.Path)
	}
	return ir.Counts(out.Counts), nil
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
