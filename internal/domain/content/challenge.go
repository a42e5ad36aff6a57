package content

import (
	"errors"
	"strings"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

// ChallengeRequest has two accepted forms: a bare topic with a level, or a
// roadmap context with the next topic and the time the learner has.
type ChallengeRequest struct {
	Topic string        `json:"topic,omitempty"`
	Level roadmap.Level `json:"level,omitempty"`

	RoadmapTitle   string `json:"roadmapTitle,omitempty"`
	NextTopic      string `json:"nextTopic,omitempty"`
	TimePreference string `json:"timePreference,omitempty"`
}

var ErrEmptyChallengeRequest = errors.New("challenge request needs a topic or a next topic")

// DefaultTimePreference is used when the roadmap form omits it.
const DefaultTimePreference = "about 15 minutes"

// InRoadmapContext reports whether the request uses the roadmap form.
func (r ChallengeRequest) InRoadmapContext() bool {
	return strings.TrimSpace(r.NextTopic) != ""
}

// Normalize trims fields, fills defaults and rejects empty requests.
func (r ChallengeRequest) Normalize() (ChallengeRequest, error) {
	r.Topic = strings.TrimSpace(r.Topic)
	r.RoadmapTitle = strings.TrimSpace(r.RoadmapTitle)
	r.NextTopic = strings.TrimSpace(r.NextTopic)
	r.TimePreference = strings.TrimSpace(r.TimePreference)

	if r.InRoadmapContext() {
		if r.TimePreference == "" {
			r.TimePreference = DefaultTimePreference
		}
		return r, nil
	}
	if r.Topic == "" {
		return r, ErrEmptyChallengeRequest
	}
	if !r.Level.Valid() {
		r.Level = roadmap.LevelBeginner
	}
	return r, nil
}

type Challenge struct {
	Challenge     string `json:"challenge"`
	EstimatedTime string `json:"estimatedTime"`
}
