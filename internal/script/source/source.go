// Package source reads script text into program lines.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrSource wraps every read failure.
var ErrSource = errors.New("cannot read script")

const byteOrderMark = "\ufeff"

// Read splits r into lines without their line endings. A final line
// without a newline is kept; a trailing newline does not add an empty line.
func Read(r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)
	var lines []string

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if len(lines) == 0 {
				line = strings.TrimPrefix(line, byteOrderMark)
			}
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSource, err)
		}
	}
}

// File reads the script at path.
func File(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	defer func() { _ = file.Close() }()

	return Read(file)
}
