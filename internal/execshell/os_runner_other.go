//go:build !unix

package execshell

import "os/exec"

const (
	windowsShellPathConstant        = "cmd"
	windowsShellCommandFlagConstant = "/C"
)

func shellInvocation(script string) (string, []string) {
	return windowsShellPathConstant, []string{windowsShellCommandFlagConstant, script}
}

func configureProcessGroup(*exec.Cmd) {}
