package producer

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readUint parses the first field of a single-value sysfs file.
func readUint(path string) (uint64, error) {
	v, err := readField(path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return n, nil
}

func readInt(path string) (int64, error) {
	v, err := readField(path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return n, nil
}

func readField(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("%s is empty", path)
	}
	return fields[0], nil
}
