//go:build !windows

// Package process terminates browser process trees left behind by a render.
package process

import "syscall"

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID). Non-positive PIDs are ignored since
// -0 would target the caller's own group.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; launcher.Cleanup() then waits for the exit
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
