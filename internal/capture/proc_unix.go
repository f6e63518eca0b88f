//go:build unix

// ===== internal/capture/proc_unix.go =====
package capture

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup starts the tool in its own process group so terminal
// signals reach only us and the whole group can be signalled on shutdown.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
