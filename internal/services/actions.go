package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/yungbote/roadmap-backend/internal/domain/content"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// RecentRoadmapsLimit is how many roadmaps the dashboard shows.
const RecentRoadmapsLimit = 3

type DashboardView struct {
	Stats          *DashboardStats          `json:"stats"`
	RecentRoadmaps []*roadmap.StoredRoadmap `json:"recentRoadmaps"`
}

// DailyChallenge is a challenge plus the topic it was drawn from.
type DailyChallenge struct {
	content.Challenge
	Topic     string        `json:"topic"`
	Level     roadmap.Level `json:"level"`
	RoadmapID string        `json:"roadmapId,omitempty"`
}

// Actions is the application boundary. Every method takes the caller
// explicitly (nil for guests) and returns errors as *apierr.Error.
type Actions struct {
	log   *logger.Logger
	gen   ContentGenerator
	tiers *RoadmapTiers
	pick  func(n int) int
}

func NewActions(baseLog *logger.Logger, gen ContentGenerator, tiers *RoadmapTiers) *Actions {
	return &Actions{
		log:   baseLog.With("service", "Actions"),
		gen:   gen,
		tiers: tiers,
		pick:  rand.IntN,
	}
}

func (a *Actions) store() RoadmapStore { return a.tiers.Remote() }

// fail converts err for the boundary and logs server-side failures.
func (a *Actions) fail(op string, err error) error {
	ae := ToAPIError(err)
	if ae.Status >= 500 {
		a.log.Error(op+" failed", "status", ae.Status, "code", ae.Code, "error", err)
	} else {
		a.log.Debug(op+" rejected", "status", ae.Status, "code", ae.Code, "error", err)
	}
	return ae
}

// GenerateRoadmapForUser saves the roadmap for an authenticated caller.
// Guests get a transient roadmap (no owner, no createdAt), kept in the
// guest tier when guestID is set.
func (a *Actions) GenerateRoadmapForUser(ctx context.Context, caller *Caller, guestID, query string) (*roadmap.StoredRoadmap, error) {
	query = strings.TrimSpace(query)
	tree, err := a.gen.GenerateRoadmap(ctx, query)
	if err != nil {
		return nil, a.fail("generate roadmap", err)
	}
	if caller != nil {
		stored, err := a.store().Save(ctx, caller.UserID, *tree, query)
		if err != nil {
			return nil, a.fail("save roadmap", err)
		}
		return stored, nil
	}
	if guestID == "" {
		return (roadmap.LocalSnapshot{Roadmap: *tree, Query: query}).Stored(), nil
	}
	stored, err := a.tiers.SaveLocal(ctx, guestID, *tree, query)
	if err != nil {
		// The roadmap itself is fine; the guest tier is best effort.
		a.log.Warn("guest roadmap not kept", "guest_id", guestID, "error", err)
		return (roadmap.LocalSnapshot{Roadmap: *tree, Query: query}).Stored(), nil
	}
	return stored, nil
}

// FetchRoadmap returns an owned roadmap. A missing roadmap and one owned by
// someone else are reported identically.
func (a *Actions) FetchRoadmap(ctx context.Context, caller *Caller, id string) (*roadmap.StoredRoadmap, error) {
	if caller == nil {
		return nil, a.fail("fetch roadmap", ErrUnauthorized)
	}
	r, err := a.ownedRoadmap(ctx, caller, id)
	if err != nil {
		return nil, a.fail("fetch roadmap", err)
	}
	return r, nil
}

func (a *Actions) ownedRoadmap(ctx context.Context, caller *Caller, id string) (*roadmap.StoredRoadmap, error) {
	r, err := a.store().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != caller.UserID {
		return nil, fmt.Errorf("roadmap %s: %w", id, ErrForbidden)
	}
	return r, nil
}

// UpdateStatus requires a caller who owns the roadmap, and a node id that
// is one of its topics. Guests use UpdateGuestStatus.
func (a *Actions) UpdateStatus(ctx context.Context, caller *Caller, roadmapID, nodeID, status string) error {
	if caller == nil {
		return a.fail("update status", ErrUnauthorized)
	}
	st, err := roadmap.ParseNodeStatus(status)
	if err != nil {
		return a.fail("update status", invalidArg("Unknown status.", err))
	}
	r, err := a.ownedRoadmap(ctx, caller, roadmapID)
	if err != nil {
		return a.fail("update status", err)
	}
	if !r.HasNode(nodeID) {
		return a.fail("update status", invalidArg("That topic is not part of this roadmap.", fmt.Errorf("unknown node %q", nodeID)))
	}
	if err := a.store().UpdateNodeStatus(ctx, r.ID, nodeID, st); err != nil {
		return a.fail("update status", err)
	}
	return nil
}

func (a *Actions) History(ctx context.Context, caller *Caller) ([]*roadmap.StoredRoadmap, error) {
	if caller == nil {
		return nil, a.fail("history", ErrUnauthorized)
	}
	list, err := a.store().ListByOwner(ctx, caller.UserID, 0)
	if err != nil {
		return nil, a.fail("history", err)
	}
	return list, nil
}

func (a *Actions) Dashboard(ctx context.Context, caller *Caller) (*DashboardView, error) {
	if caller == nil {
		return nil, a.fail("dashboard", ErrUnauthorized)
	}
	list, err := a.store().ListByOwner(ctx, caller.UserID, 0)
	if err != nil {
		return nil, a.fail("dashboard", err)
	}
	stats, err := a.store().DashboardStats(ctx, caller.UserID, list)
	if err != nil {
		return nil, a.fail("dashboard", err)
	}
	recent := list
	if len(recent) > RecentRoadmapsLimit {
		recent = recent[:RecentRoadmapsLimit]
	}
	return &DashboardView{Stats: stats, RecentRoadmaps: recent}, nil
}

func (a *Actions) Insight(ctx context.Context, nodeContent string) (*content.Insight, error) {
	out, err := a.gen.GenerateInsight(ctx, nodeContent)
	if err != nil {
		return nil, a.fail("insight", err)
	}
	return out, nil
}

func (a *Actions) FollowUp(ctx context.Context, nodeContent, question string) (*content.FollowUpAnswer, error) {
	out, err := a.gen.AnswerFollowUp(ctx, nodeContent, question)
	if err != nil {
		return nil, a.fail("follow up", err)
	}
	return out, nil
}

func (a *Actions) Challenge(ctx context.Context, req content.ChallengeRequest) (*content.Challenge, error) {
	out, err := a.gen.GenerateChallenge(ctx, req)
	if err != nil {
		return nil, a.fail("challenge", err)
	}
	return out, nil
}

// Fallback topics for the daily challenge.
var (
	guestChallengeTopic    = content.ChallengeRequest{Topic: "Learning something new", Level: roadmap.LevelBeginner}
	noGoalChallengeTopic   = content.ChallengeRequest{Topic: "Setting a new learning goal", Level: roadmap.LevelBeginner}
	recoveryChallengeTopic = content.ChallengeRequest{Topic: "Creative thinking", Level: roadmap.LevelIntermediate}
)

// DailyChallenge draws a topic from a random roadmap of the caller,
// preferring topics not yet completed or skipped.
func (a *Actions) DailyChallenge(ctx context.Context, caller *Caller) (*DailyChallenge, error) {
	req, roadmapID, err := a.dailyTopic(ctx, caller)
	if err != nil {
		a.log.Warn("daily challenge topic lookup failed", "error", err)
		req, roadmapID = recoveryChallengeTopic, ""
	}
	ch, err := a.gen.GenerateChallenge(ctx, req)
	if err != nil {
		return nil, a.fail("daily challenge", err)
	}
	return &DailyChallenge{Challenge: *ch, Topic: req.Topic, Level: req.Level, RoadmapID: roadmapID}, nil
}

func (a *Actions) dailyTopic(ctx context.Context, caller *Caller) (content.ChallengeRequest, string, error) {
	if caller == nil {
		return guestChallengeTopic, "", nil
	}
	list, err := a.store().ListByOwner(ctx, caller.UserID, 0)
	if err != nil {
		return content.ChallengeRequest{}, "", err
	}
	if len(list) == 0 {
		return noGoalChallengeTopic, "", nil
	}
	r := list[a.pick(len(list))]
	if len(r.Children) == 0 {
		topic := r.Query
		if strings.TrimSpace(topic) == "" {
			topic = "Learning"
		}
		return content.ChallengeRequest{Topic: topic, Level: roadmap.LevelIntermediate}, r.ID, nil
	}
	var open []roadmap.Node
	for _, c := range r.Children {
		switch roadmap.StatusOf(r.NodeStatuses, c.ID) {
		case roadmap.StatusCompleted, roadmap.StatusSkipped:
		default:
			open = append(open, c)
		}
	}
	if len(open) == 0 {
		open = r.Children
	}
	n := open[a.pick(len(open))]
	return content.ChallengeRequest{Topic: n.Title, Level: n.Level}, r.ID, nil
}

func (a *Actions) GuestHistory(ctx context.Context, guestID string) ([]roadmap.HistoryEntry, error) {
	if guestID == "" {
		return []roadmap.HistoryEntry{}, nil
	}
	out, err := a.tiers.LocalHistory(ctx, guestID)
	if err != nil {
		return nil, a.fail("guest history", err)
	}
	return out, nil
}

func (a *Actions) GuestRoadmap(ctx context.Context, guestID, roadmapID string) (*roadmap.StoredRoadmap, error) {
	if guestID == "" {
		return nil, a.fail("guest roadmap", ErrNotFound)
	}
	out, err := a.tiers.GetLocal(ctx, guestID, roadmapID)
	if err != nil {
		return nil, a.fail("guest roadmap", err)
	}
	return out, nil
}

func (a *Actions) UpdateGuestStatus(ctx context.Context, guestID, roadmapID, nodeID, status string) error {
	if guestID == "" {
		return a.fail("guest status", ErrNotFound)
	}
	st, err := roadmap.ParseNodeStatus(status)
	if err != nil {
		return a.fail("guest status", invalidArg("Unknown status.", err))
	}
	if err := a.tiers.SetLocalStatus(ctx, guestID, roadmapID, nodeID, st); err != nil {
		return a.fail("guest status", err)
	}
	return nil
}

// Adopt promotes guest roadmaps into the caller's account.
func (a *Actions) Adopt(ctx context.Context, caller *Caller, guestID string, uploaded []roadmap.LocalSnapshot) (*AdoptResult, error) {
	if caller == nil {
		return nil, a.fail("adopt", ErrUnauthorized)
	}
	for i, s := range uploaded {
		if strings.TrimSpace(s.Roadmap.Title) == "" || len(s.Roadmap.Children) == 0 {
			return nil, a.fail("adopt", invalidArg("One of the uploaded roadmaps is malformed.", fmt.Errorf("snapshot %d", i)))
		}
	}
	res, err := a.tiers.Adopt(ctx, caller, guestID, uploaded)
	if err != nil {
		return nil, a.fail("adopt", err)
	}
	return res, nil
}
