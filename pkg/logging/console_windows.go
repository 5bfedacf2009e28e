//go:build windows

package logging

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableVirtualTerminal lets the console writer's ANSI colours render in
// cmd.exe and older PowerShell hosts.
func enableVirtualTerminal() {
	h := windows.Handle(os.Stderr.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return
	}
	_ = windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
