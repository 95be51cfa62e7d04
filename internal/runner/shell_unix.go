//go:build !windows

package runner

import "strings"

func defaultShell() (string, []string) {
	return "/bin/sh", []string{"-c"}
}

func quoteDir(dir string) string {
	return "'" + strings.ReplaceAll(dir, "'", `'\''`) + "'"
}
