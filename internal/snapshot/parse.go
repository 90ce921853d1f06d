package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

// Parse reads snapshot text from r. Lines are matched by label only, so their
// order does not matter and the last occurrence of a label wins. Lines with an
// unknown label or an unparsable value, whatever their length, are skipped and
// the affected field stays zero. The only error returned comes from reading r.
func Parse(r io.Reader) (Snapshot, error) {
	var s Snapshot
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if !parseLine(&s, line) && strings.TrimSpace(line) != "" {
				logger.Log.Debug("Skipping snapshot line", "bytes", len(line))
			}
		}
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
		}
	}
}

// ParseString is Parse over an in-memory snapshot text.
func ParseString(text string) Snapshot {
	s, _ := Parse(strings.NewReader(text))
	return s
}

// parseLine applies one line to s and reports whether it matched a field.
func parseLine(s *Snapshot, line string) bool {
	label, raw, ok := strings.Cut(line, ":")
	if !ok {
		return false
	}
	f, ok := byLabel[strings.TrimSpace(label)]
	if !ok {
		return false
	}
	return f.set(s, f.value(raw)) == nil
}
