//go:build !windows

package logging

func enableVirtualTerminal() {}
