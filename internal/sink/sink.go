// Package sink writes sampler rows to an append-only text file.
package sink

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/The-Promised-Neverland/sysdata/internal/snapshot"
)

// ErrSinkUnavailable is returned when the output file cannot be created.
var ErrSinkUnavailable = errors.New("sink unavailable")

// Separator joins the values of a row.
const Separator = ", "

// CSV is a row file owned by a single writer. The header is written once, on Create.
type CSV struct {
	path string
	file *os.File
	w    *bufio.Writer
	rows int
}

// Create truncates or creates path, creating its parent directory, and writes
// the header row.
func Create(path string) (*CSV, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	c := &CSV{path: path, file: f, w: bufio.NewWriter(f)}
	if err := c.writeLine(snapshot.Header()); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: write header: %w", ErrSinkUnavailable, err)
	}
	return c, nil
}

// Append writes one row for s and flushes it to the file.
func (c *CSV) Append(s snapshot.Snapshot) error {
	if err := c.writeLine(snapshot.Row(s)); err != nil {
		return fmt.Errorf("append row to %s: %w", c.path, err)
	}
	c.rows++
	return nil
}

func (c *CSV) Path() string { return c.path }

// Rows reports how many data rows were appended.
func (c *CSV) Rows() int { return c.rows }

func (c *CSV) Close() error {
	if c.file == nil {
		return nil
	}
	flushErr := c.w.Flush()
	closeErr := c.file.Close()
	c.file = nil
	return errors.Join(flushErr, closeErr)
}

func (c *CSV) writeLine(values []string) error {
	if c.file == nil {
		return os.ErrClosed
	}
	if _, err := c.w.WriteString(strings.Join(values, Separator)); err != nil {
		return err
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return err
	}
	return c.w.Flush()
}
