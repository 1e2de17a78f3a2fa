//go:build !windows

package sysreq

import "os/exec"

const powerShellCommand = "pwsh"

// preference lists backends in probing order.
var preference = []Backend{Wget, Curl, PowerShell}

func hideWindow(*exec.Cmd) {}
