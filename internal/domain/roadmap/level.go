package roadmap

import (
	"fmt"
	"strings"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Levels lists the difficulty tiers in display order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ParseLevel accepts the canonical names case-insensitively.
func ParseLevel(raw string) (Level, error) {
	for _, l := range Levels {
		if strings.EqualFold(strings.TrimSpace(raw), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", raw)
}

type NodeStatus string

const (
	StatusNotStarted NodeStatus = "not-started"
	StatusInProgress NodeStatus = "in-progress"
	StatusCompleted  NodeStatus = "completed"
	StatusSkipped    NodeStatus = "skipped"
)

func (s NodeStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

func ParseNodeStatus(raw string) (NodeStatus, error) {
	s := NodeStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown node status %q", raw)
	}
	return s, nil
}

// StatusOf returns the recorded status for nodeID; absent means not started.
func StatusOf(statuses map[string]NodeStatus, nodeID string) NodeStatus {
	if s, ok := statuses[nodeID]; ok && s.Valid() {
		return s
	}
	return StatusNotStarted
}
