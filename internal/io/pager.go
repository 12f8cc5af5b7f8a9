package io

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/shlex"
)

const defaultPager = "less -R"

// Pager returns a writer hooked up to a pager (default: less -R) when stdout
// is a terminal. Falls back to stdout when paging is disabled or the pager
// cannot run. The returned cleanup must be called once writing is done.
func Pager(noPager bool) (w io.Writer, cleanup func() error) {
	cleanup = func() error { return nil }

	if noPager || !IsTerminal() {
		return os.Stdout, cleanup
	}

	command := os.Getenv("PAGER")
	if command == "" {
		command = defaultPager
	}

	parts, err := shlex.Split(command)
	if err != nil || len(parts) == 0 {
		return os.Stdout, cleanup
	}

	path, err := exec.LookPath(parts[0])
	if err != nil {
		return os.Stdout, cleanup
	}

	args := parts[1:]
	if isLess(path) && !hasRawFlag(args) {
		// Keep ANSI styling readable under less.
		args = append(args, "-R")
	}

	cmd := exec.Command(path, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return os.Stdout, cleanup
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return os.Stdout, cleanup
	}

	var once sync.Once
	var cleanupErr error

	cleanup = func() error {
		once.Do(func() {
			closeErr := stdin.Close()
			if waitErr := cmd.Wait(); waitErr != nil {
				cleanupErr = waitErr
				return
			}
			cleanupErr = closeErr
		})
		return cleanupErr
	}

	return stdin, cleanup
}

func isLess(path string) bool {
	base := filepath.Base(path)
	return base == "less" || base == "less.exe"
}

func hasRawFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-R" || arg == "--RAW-CONTROL-CHARS" || strings.HasPrefix(arg, "--RAW-CONTROL-CHARS=") {
			return true
		}
	}
	return false
}
