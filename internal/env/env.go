// Package env reads flat KEY=VALUE environment configuration files.
//
// The format is the conventional .env dialect: one assignment per line,
// blank lines and '#' comments ignored, an optional 'export ' prefix, and
// values optionally wrapped in single or double quotes. This is the single
// place the raw configuration enters the process; everything downstream
// works from the immutable config.Config built from the returned map.
package env

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile reads and parses the environment configuration file at path.
func LoadFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open environment file: %w", err)
	}
	defer f.Close()

	vars, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse environment file %s: %w", path, err)
	}
	return vars, nil
}

// Parse reads KEY=VALUE assignments from r. Later assignments to the same
// key override earlier ones.
func Parse(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("line %d: not a KEY=VALUE assignment: %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNo)
		}
		vars[key] = unquote(strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// unquote strips one level of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
