//go:build windows

package runner

func defaultShell() (string, []string) {
	return "cmd", []string{"/C"}
}

func quoteDir(dir string) string {
	return `/d "` + dir + `"`
}
