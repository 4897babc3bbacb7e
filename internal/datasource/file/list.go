package file

import (
	"bufio"
	"os"
	"strings"
)

// ReadList reads a text file line by line and returns the non-empty,
// non-comment lines in order. Lines that are empty or start with '#' after
// trimming whitespace are skipped, so list files (movie IDs to classify,
// genre names) can carry comments and blank separators.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
