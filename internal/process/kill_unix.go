//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup sends SIGKILL to the process group led by pid.
func KillProcessGroup(pid int) {
	// Best effort: callers also kill the leader directly.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Isolate starts cmd in its own process group and makes context
// cancellation kill the whole group, so helpers spawned by pandoc or the
// browser do not outlive it.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
}
