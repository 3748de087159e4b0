//go:build linux

package exec

import (
	"os/exec"
	"syscall"
)

// setPlatformProcAttrs makes the kernel kill the snippet process if the
// backend itself dies, so no orphaned interpreters outlive a crash.
func setPlatformProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGKILL,
	}
}
