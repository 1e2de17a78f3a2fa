//go:build windows

package sysreq

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

const powerShellCommand = "powershell"

// preference lists backends in probing order. PowerShell ships with every
// Windows install, so it wins over curl.
var preference = []Backend{Wget, PowerShell, Curl}

func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
