package system

import (
	"fmt"
	"strings"
)

// ParseOptionList splits a comma separated mount option string, trimming
// blanks and dropping empty entries.
func ParseOptionList(s string) []string {
	var opts []string
	for _, opt := range strings.Split(s, ",") {
		opt = strings.TrimSpace(opt)
		if opt != "" {
			opts = append(opts, opt)
		}
	}
	return opts
}

// OptionName returns the part of a mount option before '='.
func OptionName(opt string) string {
	name, _, _ := strings.Cut(opt, "=")
	return name
}

// ParseSingleLine extracts the only non-empty line of command output.
// Format: "<value>\n"
func ParseSingleLine(output string) (string, error) {
	var value string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if value != "" {
			return "", fmt.Errorf("unexpected multi-line output: %q", output)
		}
		value = line
	}
	if value == "" {
		return "", fmt.Errorf("empty output")
	}
	return value, nil
}

// FormatSize formats bytes to human readable format
func FormatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
