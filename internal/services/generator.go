package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/roadmap-backend/internal/domain/content"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/llm"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/platform/promptstyle"
)

type GeneratorConfig struct {
	MinPerLevel    int
	MaxPerLevel    int
	InsightVersion content.InsightVersion

	RoadmapMaxTokens int
	ContentMaxTokens int
	Temperature      float64
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MinPerLevel:      3,
		MaxPerLevel:      5,
		InsightVersion:   content.InsightV2Version,
		RoadmapMaxTokens: 2048,
		ContentMaxTokens: 1024,
		Temperature:      0.7,
	}
}

func (c GeneratorConfig) normalized() GeneratorConfig {
	def := DefaultGeneratorConfig()
	if c.MinPerLevel <= 0 {
		c.MinPerLevel = def.MinPerLevel
	}
	if c.MaxPerLevel < c.MinPerLevel {
		c.MaxPerLevel = c.MinPerLevel
	}
	if c.InsightVersion != content.InsightV1Version {
		c.InsightVersion = content.InsightV2Version
	}
	if c.RoadmapMaxTokens <= 0 {
		c.RoadmapMaxTokens = def.RoadmapMaxTokens
	}
	if c.ContentMaxTokens <= 0 {
		c.ContentMaxTokens = def.ContentMaxTokens
	}
	return c
}

// ContentGenerator produces roadmaps and per-topic learning content.
// Failures are ErrGenerationFailed, ErrRateLimited (which also matches
// ErrGenerationFailed), ErrNotConfigured or an invalid-argument error.
type ContentGenerator interface {
	GenerateRoadmap(ctx context.Context, query string) (*roadmap.Node, error)
	GenerateInsight(ctx context.Context, nodeContent string) (*content.Insight, error)
	AnswerFollowUp(ctx context.Context, nodeContent, question string) (*content.FollowUpAnswer, error)
	GenerateChallenge(ctx context.Context, req content.ChallengeRequest) (*content.Challenge, error)
}

type contentGenerator struct {
	provider llm.Provider
	cfg      GeneratorConfig
	log      *logger.Logger
}

func NewContentGenerator(provider llm.Provider, cfg GeneratorConfig, baseLog *logger.Logger) ContentGenerator {
	return &contentGenerator{
		provider: provider,
		cfg:      cfg.normalized(),
		log:      baseLog.With("service", "ContentGenerator"),
	}
}

type roadmapOutput struct {
	Title    string        `json:"title"`
	Level    string        `json:"level"`
	Children []topicOutput `json:"children"`
}

type topicOutput struct {
	Title    string        `json:"title"`
	Level    string        `json:"level"`
	Children []topicOutput `json:"children,omitempty"`
}

func (g *contentGenerator) GenerateRoadmap(ctx context.Context, query string) (*roadmap.Node, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidArg("Tell us what you want to learn.", nil)
	}
	ctx = llm.WithPurpose(ctx, "roadmap")

	req := llm.Request{
		System:      promptstyle.ApplySystem(roadmapSystemPrompt, "json"),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildRoadmapUserMessage(query, g.cfg.MinPerLevel, g.cfg.MaxPerLevel)}},
		Schema:      RoadmapSchema,
		MaxTokens:   g.cfg.RoadmapMaxTokens,
		Temperature: g.cfg.Temperature,
	}
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, generationError("roadmap", err)
	}

	var out roadmapOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, generationError("roadmap", fmt.Errorf("parse response: %w", err))
	}
	node, err := g.shapeRoadmap(out)
	if err != nil {
		return nil, generationError("roadmap", err)
	}
	return node, nil
}

// shapeRoadmap turns model output into a flat, level-ordered tree with fresh
// ids. Nested sub-topics are dropped. Buckets above the maximum are cut;
// buckets below the minimum are kept and logged.
func (g *contentGenerator) shapeRoadmap(out roadmapOutput) (*roadmap.Node, error) {
	title := strings.TrimSpace(out.Title)
	if title == "" {
		return nil, roadmap.ErrEmptyTitle
	}
	buckets := make(map[roadmap.Level][]roadmap.Node, len(roadmap.Levels))
	for i, c := range out.Children {
		lvl, err := roadmap.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("topic %d: %w", i, err)
		}
		t := strings.TrimSpace(c.Title)
		if t == "" {
			return nil, fmt.Errorf("topic %d: %w", i, roadmap.ErrEmptyTitle)
		}
		buckets[lvl] = append(buckets[lvl], roadmap.Node{Title: t, Level: lvl})
	}

	root := &roadmap.Node{Title: title, Level: roadmap.LevelBeginner}
	for _, lvl := range roadmap.Levels {
		topics := buckets[lvl]
		if len(topics) > g.cfg.MaxPerLevel {
			g.log.Debug("truncating roadmap level", "level", lvl, "count", len(topics), "max", g.cfg.MaxPerLevel)
			topics = topics[:g.cfg.MaxPerLevel]
		}
		if len(topics) < g.cfg.MinPerLevel {
			g.log.Warn("roadmap level below minimum", "level", lvl, "count", len(topics), "min", g.cfg.MinPerLevel)
		}
		root.Children = append(root.Children, topics...)
	}
	root.AssignIDs()
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return root, nil
}

func (g *contentGenerator) GenerateInsight(ctx context.Context, nodeContent string) (*content.Insight, error) {
	nodeContent = strings.TrimSpace(nodeContent)
	if nodeContent == "" {
		return nil, invalidArg("Pick a topic first.", nil)
	}
	ctx = llm.WithPurpose(ctx, "insight")

	schema := InsightV2Schema
	if g.cfg.InsightVersion == content.InsightV1Version {
		schema = InsightV1Schema
	}
	req := llm.Request{
		System:      promptstyle.ApplySystem(insightSystemPrompt, "json"),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildInsightUserMessage(nodeContent, g.cfg.InsightVersion)}},
		Schema:      schema,
		MaxTokens:   g.cfg.ContentMaxTokens,
		Temperature: g.cfg.Temperature,
	}
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, generationError("insight", err)
	}
	insight, err := content.DecodeInsight(resp.Content)
	if err != nil {
		return nil, generationError("insight", err)
	}
	if insight.KeyConcept == "" {
		return nil, generationError("insight", errors.New("empty insight"))
	}
	return &insight, nil
}

func (g *contentGenerator) AnswerFollowUp(ctx context.Context, nodeContent, question string) (*content.FollowUpAnswer, error) {
	nodeContent = strings.TrimSpace(nodeContent)
	question = strings.TrimSpace(question)
	if nodeContent == "" || question == "" {
		return nil, invalidArg("Ask a question about a topic.", nil)
	}
	ctx = llm.WithPurpose(ctx, "follow_up")

	req := llm.Request{
		System:      promptstyle.ApplySystem(followUpSystemPrompt, "markdown"),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildFollowUpUserMessage(nodeContent, question)}},
		Schema:      FollowUpSchema,
		MaxTokens:   g.cfg.ContentMaxTokens,
		Temperature: g.cfg.Temperature,
	}
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, generationError("follow_up", err)
	}
	var out content.FollowUpAnswer
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, generationError("follow_up", fmt.Errorf("parse response: %w", err))
	}
	out.Answer = strings.TrimSpace(out.Answer)
	if out.Answer == "" {
		return nil, generationError("follow_up", errors.New("empty answer"))
	}
	return &out, nil
}

func (g *contentGenerator) GenerateChallenge(ctx context.Context, in content.ChallengeRequest) (*content.Challenge, error) {
	req, err := in.Normalize()
	if err != nil {
		return nil, invalidArg("Tell us which topic to practice.", err)
	}
	ctx = llm.WithPurpose(ctx, "challenge")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      promptstyle.ApplySystem(challengeSystemPrompt, "json"),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildChallengeUserMessage(req)}},
		Schema:      ChallengeSchema,
		MaxTokens:   g.cfg.ContentMaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, generationError("challenge", err)
	}
	var out content.Challenge
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, generationError("challenge", fmt.Errorf("parse response: %w", err))
	}
	out.Challenge = strings.TrimSpace(out.Challenge)
	out.EstimatedTime = strings.TrimSpace(out.EstimatedTime)
	if out.Challenge == "" {
		return nil, generationError("challenge", errors.New("empty challenge"))
	}
	return &out, nil
}

// generationError classifies a provider failure. Rate limiting is a kind of
// generation failure, so it matches both sentinels.
func generationError(op string, err error) error {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return fmt.Errorf("%s: %w: %w", op, ErrNotConfigured, err)
	case llm.IsRateLimited(err):
		return fmt.Errorf("%s: %w: %w: %w", op, ErrGenerationFailed, ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrGenerationFailed, err)
}
