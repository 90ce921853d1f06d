// Package source provides the ways a sampler obtains snapshot text.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/The-Promised-Neverland/sysdata/internal/producer"
)

const (
	// Builtin selects the in-process producer.
	Builtin = "builtin"
	// DefaultProcPath is where the kernel module publishes its snapshot.
	DefaultProcPath = "/proc/read_system_data"
)

// ErrSnapshotUnavailable wraps every failure to obtain a snapshot.
var ErrSnapshotUnavailable = errors.New("snapshot unavailable")

// Source yields one snapshot text per call. The caller closes the reader.
type Source interface {
	Snapshot(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// New picks a Source from ref: "builtin" or "" for the in-process producer,
// an http(s) URL for a remote text interface, anything else as a file path.
func New(ref string, p *producer.Producer) (Source, error) {
	switch {
	case ref == "" || ref == Builtin:
		if p == nil {
			return nil, fmt.Errorf("builtin source needs a producer")
		}
		return &Producer{producer: p}, nil
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		return NewHTTP(ref, 10*time.Second), nil
	default:
		return &File{Path: ref}, nil
	}
}

// Producer renders snapshots in process.
type Producer struct {
	producer *producer.Producer
}

func NewProducer(p *producer.Producer) *Producer {
	return &Producer{producer: p}
}

func (s *Producer) Snapshot(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	return io.NopCloser(strings.NewReader(s.producer.Render(ctx))), nil
}

func (s *Producer) String() string { return Builtin }

// File reads a snapshot file such as a proc entry.
type File struct {
	Path string
}

func (s *File) Snapshot(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	return f, nil
}

func (s *File) String() string { return s.Path }

// HTTP fetches a snapshot from a text interface server.
type HTTP struct {
	URL    string
	client *http.Client
}

func NewHTTP(url string, timeout time.Duration) *HTTP {
	return &HTTP{URL: url, client: &http.Client{Timeout: timeout}}
}

func (s *HTTP) Snapshot(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	req.Header.Set("Accept", "text/plain")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", ErrSnapshotUnavailable, s.URL, resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTP) String() string { return s.URL }
