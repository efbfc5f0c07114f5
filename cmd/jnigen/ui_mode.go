package main

import (
	"fmt"
	"os"
	"strings"
)

// progressDisplay is the --ui setting of generate.
type progressDisplay uint8

const (
	displayAuto progressDisplay = iota
	displayTUI
	displayPlain
)

var progressDisplayNames = map[string]progressDisplay{
	"":     displayAuto,
	"auto": displayAuto,
	"on":   displayTUI,
	"off":  displayPlain,
}

func parseProgressDisplay(value string) (progressDisplay, error) {
	d, ok := progressDisplayNames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return displayAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return d, nil
}

// interactive reports whether the bubbletea view replaces plain output.
// --quiet wins over --ui on; auto follows stdout.
func (d progressDisplay) interactive(quiet bool) bool {
	if quiet {
		return false
	}
	switch d {
	case displayTUI:
		return true
	case displayPlain:
		return false
	}
	return isTerminal(os.Stdout)
}
