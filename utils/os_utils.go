package utils

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

func WaitTerminate() <-chan os.Signal {
	c := make(chan os.Signal, 3)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	return c
}

// RedirectFile points the descriptor of from at to, so writes that bypass
// the logger (panics, runtime errors) land in the same file.
func RedirectFile(from, to *os.File) error {
	if err := unix.Dup2(int(to.Fd()), int(from.Fd())); err != nil {
		return fmt.Errorf("redirect %s to %s: %w", from.Name(), to.Name(), err)
	}
	return nil
}

// OpenLogFile opens path for appending, creating it if needed.
func OpenLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
