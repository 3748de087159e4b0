//go:build !linux

package exec

import "os/exec"

func setPlatformProcAttrs(cmd *exec.Cmd) {}
