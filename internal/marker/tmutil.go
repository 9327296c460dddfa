package marker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Aman-CERP/tmbliss/internal/errors"
)

// tmutilTimeout bounds a single tmutil invocation.
const tmutilTimeout = 30 * time.Second

// CommandRunner runs an external command and returns its combined stderr on
// failure.
type CommandRunner func(ctx context.Context, name string, args ...string) (stderr string, err error)

// execRunner is the CommandRunner backed by os/exec.
func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// TMUtilStore sets and clears marks through the tmutil command line tool and
// reads them through another Store (normally the xattr store, which sees the
// same attribute tmutil writes).
type TMUtilStore struct {
	check Store
	bin   string
	run   CommandRunner
}

var _ Store = (*TMUtilStore)(nil)

// TMUtilOption configures a TMUtilStore.
type TMUtilOption func(*TMUtilStore)

// WithRunner replaces the command runner.
func WithRunner(run CommandRunner) TMUtilOption {
	return func(s *TMUtilStore) { s.run = run }
}

// WithBinary overrides the tmutil executable.
func WithBinary(bin string) TMUtilOption {
	return func(s *TMUtilStore) { s.bin = bin }
}

// NewTMUtilStore creates a store that answers IsExcluded with check.
func NewTMUtilStore(check Store, opts ...TMUtilOption) *TMUtilStore {
	s := &TMUtilStore{check: check, bin: "tmutil", run: execRunner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsExcluded implements Store.
func (s *TMUtilStore) IsExcluded(path string) (bool, error) {
	return s.check.IsExcluded(path)
}

// AddExclusion implements Store.
func (s *TMUtilStore) AddExclusion(path string) error {
	return s.invoke("addexclusion", path)
}

// RemoveExclusion implements Store.
func (s *TMUtilStore) RemoveExclusion(path string) error {
	return s.invoke("removeexclusion", path)
}

func (s *TMUtilStore) invoke(verb, path string) error {
	if err := checkExists(path); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), tmutilTimeout)
	defer cancel()

	stderr, err := s.run(ctx, s.bin, verb, path)
	if err == nil {
		return nil
	}
	return classifyToolFailure(path, stderr, fmt.Errorf("%s %s: %w", s.bin, verb, err))
}

// classifyToolFailure maps tmutil's diagnostic text onto the store error kinds.
func classifyToolFailure(path, stderr string, cause error) error {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "no such file"), strings.Contains(msg, "does not exist"):
		return errors.PathNotFound(path, cause)
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "not permitted"):
		return errors.PathInaccessible(path, cause)
	}

	status := strings.TrimSpace(stderr)
	if status == "" {
		status = cause.Error()
	}
	return errors.MarkerUnknown(path, status, cause)
}
