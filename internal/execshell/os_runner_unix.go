//go:build unix

package execshell

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	unixShellPathConstant        = "/bin/sh"
	unixShellCommandFlagConstant = "-c"
)

func shellInvocation(script string) (string, []string) {
	return unixShellPathConstant, []string{unixShellCommandFlagConstant, script}
}

// configureProcessGroup places the shell in its own process group so a
// timeout kills the whole tree, including test runners the shell spawned.
func configureProcessGroup(osCommand *exec.Cmd) {
	if osCommand.SysProcAttr == nil {
		osCommand.SysProcAttr = &syscall.SysProcAttr{}
	}
	osCommand.SysProcAttr.Setpgid = true
	osCommand.Cancel = func() error {
		if osCommand.Process == nil {
			return nil
		}
		killError := unix.Kill(-osCommand.Process.Pid, unix.SIGKILL)
		if errors.Is(killError, unix.ESRCH) {
			return os.ErrProcessDone
		}
		return killError
	}
}
