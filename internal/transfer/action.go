package transfer

import (
	"fmt"
	"strings"
)

type Direction int

const (
	Download Direction = iota
	Upload
)

func (d Direction) String() string {
	if d == Upload {
		return "upload"
	}
	return "download"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "download", "get":
		return Download, nil
	case "upload", "put":
		return Upload, nil
	}
	return Download, fmt.Errorf("unknown direction: %s", s)
}

// Action decides what happens to items that already exist at the destination.
type Action int

const (
	// Callback asks the user when anything at the destination would be touched.
	Callback Action = iota
	Overwrite
	Resume
	Rename
	Skip
	// RenameExisting moves the item already at the destination aside,
	// then transfers under the same name.
	RenameExisting
)

var actionNames = [...]string{"ask", "overwrite", "resume", "rename", "skip", "rename-existing"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "callback" {
		return Callback, nil
	}
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return Callback, fmt.Errorf("unknown transfer action: %s", s)
}
