package deps

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// CheckDirectory verifies a directory exists and the process can read,
// write, and traverse it.
func CheckDirectory(name, path string) Status {
	status := Status{Name: name, Command: path}
	info, err := os.Stat(path)
	if err != nil {
		status.Detail = fmt.Sprintf("stat %s: %v", path, err)
		return status
	}
	if !info.IsDir() {
		status.Detail = fmt.Sprintf("%s is not a directory", path)
		return status
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		status.Detail = fmt.Sprintf("access %s: %v", path, err)
		return status
	}
	status.Available = true
	return status
}
