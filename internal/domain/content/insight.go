package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// InsightVersion identifies which generator output shape produced an
// Insight. Clients receive the stable Insight regardless of version.
type InsightVersion int

const (
	InsightV1Version InsightVersion = 1
	InsightV2Version InsightVersion = 2
)

// InsightV1 is the original single-advice shape.
type InsightV1 struct {
	Insight          string `json:"insight"`
	Resources        string `json:"resources"`
	DurationEstimate string `json:"durationEstimate"`
}

// InsightV2 splits the advice into concept, tip and pitfall.
type InsightV2 struct {
	KeyConcept       string `json:"keyConcept"`
	PracticalTip     string `json:"practicalTip"`
	CommonPitfall    string `json:"commonPitfall"`
	Resources        string `json:"resources"`
	DurationEstimate string `json:"durationEstimate"`
}

// Insight is what the rest of the system works with. Text fields are
// Markdown.
type Insight struct {
	Version          InsightVersion `json:"version"`
	KeyConcept       string         `json:"keyConcept"`
	PracticalTip     string         `json:"practicalTip,omitempty"`
	CommonPitfall    string         `json:"commonPitfall,omitempty"`
	Resources        string         `json:"resources"`
	DurationEstimate string         `json:"durationEstimate"`
}

var ErrUnknownInsightShape = errors.New("unrecognized insight payload")

func (v InsightV1) Normalize() Insight {
	return Insight{
		Version:          InsightV1Version,
		KeyConcept:       strings.TrimSpace(v.Insight),
		Resources:        strings.TrimSpace(v.Resources),
		DurationEstimate: strings.TrimSpace(v.DurationEstimate),
	}
}

func (v InsightV2) Normalize() Insight {
	return Insight{
		Version:          InsightV2Version,
		KeyConcept:       strings.TrimSpace(v.KeyConcept),
		PracticalTip:     strings.TrimSpace(v.PracticalTip),
		CommonPitfall:    strings.TrimSpace(v.CommonPitfall),
		Resources:        strings.TrimSpace(v.Resources),
		DurationEstimate: strings.TrimSpace(v.DurationEstimate),
	}
}

// DecodeInsight detects the payload version by its fields and adapts it.
// A V2 payload may spell the duration as "duration".
func DecodeInsight(raw json.RawMessage) (Insight, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Insight{}, fmt.Errorf("decode insight: %w", err)
	}
	switch {
	case has(keys, "keyConcept"):
		var v2 struct {
			InsightV2
			Duration string `json:"duration"`
		}
		if err := json.Unmarshal(raw, &v2); err != nil {
			return Insight{}, fmt.Errorf("decode insight v2: %w", err)
		}
		if v2.DurationEstimate == "" {
			v2.DurationEstimate = v2.Duration
		}
		return v2.InsightV2.Normalize(), nil
	case has(keys, "insight"):
		var v1 InsightV1
		if err := json.Unmarshal(raw, &v1); err != nil {
			return Insight{}, fmt.Errorf("decode insight v1: %w", err)
		}
		return v1.Normalize(), nil
	}
	return Insight{}, ErrUnknownInsightShape
}

func has(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

// FollowUpAnswer is a Markdown answer to a learner's question about a node.
type FollowUpAnswer struct {
	Answer string `json:"answer"`
}
