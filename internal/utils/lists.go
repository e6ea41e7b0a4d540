package utils

import (
	"bufio"
	"os"
	"strings"
)

// ReadListFile reads one value per line, skipping blank lines and # comments.
// Values are trimmed and de-duplicated, keeping file order.
func ReadListFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParseCommaSeparatedAll(lines), nil
}
