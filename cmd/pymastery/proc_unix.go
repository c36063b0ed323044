//go:build unix

package main

import (
	"os/exec"
	"syscall"
)

// configureDaemonProcess puts the daemon in its own process group so it
// outlives the terminal that started it.
func configureDaemonProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
