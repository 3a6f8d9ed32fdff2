package urls

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrNoURLs = errors.New("no URLs provided")

// Parse reads one URL per line. Surrounding whitespace is trimmed; blank lines
// and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]string, error) {
	var list []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading url list: %w", err)
	}

	return list, nil
}

// LoadFile parses the URL list stored at path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening url list: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Collect returns the URLs from file, if set, followed by args. It fails with
// ErrNoURLs when both are empty.
func Collect(file string, args []string) ([]string, error) {
	var list []string

	if file != "" {
		fromFile, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		list = append(list, fromFile...)
	}

	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			list = append(list, arg)
		}
	}

	if len(list) == 0 {
		return nil, ErrNoURLs
	}

	return list, nil
}
