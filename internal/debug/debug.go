//go:build !debug

// Package debug logs internal events when built with -tags debug.
package debug

func Printf(msg string, args ...any) {}
