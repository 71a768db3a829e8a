//go:build !dev

package main

// DevFlag carries no flags unless built with the dev tag.
type DevFlag struct{}

func (*DevFlag) StartProfiling() error { return nil }

func (*DevFlag) StopProfiling() error { return nil }
