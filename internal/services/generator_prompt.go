package services

import (
	"fmt"
	"strings"

	"github.com/yungbote/roadmap-backend/internal/domain/content"
)

const roadmapSystemPrompt = `Generate a structured, high-level learning roadmap for the topic the user gives.

Rules:
- Give the roadmap a clear, engaging title for the overall topic. The root level is always "Beginner".
- Break the roadmap into three difficulty levels: Beginner, Intermediate and Advanced.
- Return the topics as one flat "children" list; tag every topic with exactly one level.
- Keep it a high-level overview of the main stages of learning. Do not nest topics.
- Do not include "id" fields; they are assigned automatically.`

const insightSystemPrompt = `Give expert learning advice about a single roadmap topic.

Rules:
- Be specific to the topic and the stated level.
- Resources are a Markdown bulleted list of 2-3 specific, high-quality resources.
- The duration estimate is realistic for a learner at that level (e.g. "1-2 weeks", "8-10 hours").`

const followUpSystemPrompt = `Answer a learner's follow-up question about the topic they are studying.

Rules:
- Be helpful, concise, encouraging and clear.
- Answer in the context of the learning topic.
- Use Markdown where it helps readability, for example lists or code snippets.`

const challengeSystemPrompt = `Create a "Today's Challenge": one small, concrete, actionable practice task.

Rules:
- The task must be completable in the time available.
- Do not just say "learn about X". Give a specific action.

Example:
Roadmap: Mastering UI/UX Design
Next topic: Color Theory Basics
Time available: 15 minutes
Output: {"challenge": "Find a website you love and identify its primary, secondary, and accent colors. Note them down.", "estimatedTime": "10-15 minutes"}`

func buildRoadmapUserMessage(query string, minPer, maxPer int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user wants to learn: %s\n", query)
	fmt.Fprintf(&b, "Topics per level: %d-%d\n", minPer, maxPer)
	return b.String()
}

func buildInsightUserMessage(nodeContent string, version content.InsightVersion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Roadmap node: %s\n", nodeContent)
	if version == content.InsightV1Version {
		b.WriteString("Provide an insight, resources and a duration estimate.")
	} else {
		b.WriteString("Provide the key concept, a practical tip, a common pitfall, resources and a duration estimate.")
	}
	return b.String()
}

func buildFollowUpUserMessage(nodeContent, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Currently studying: %s\n", nodeContent)
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

func buildChallengeUserMessage(req content.ChallengeRequest) string {
	var b strings.Builder
	if req.InRoadmapContext() {
		if req.RoadmapTitle != "" {
			fmt.Fprintf(&b, "Roadmap: %s\n", req.RoadmapTitle)
		}
		fmt.Fprintf(&b, "Next topic: %s\n", req.NextTopic)
		fmt.Fprintf(&b, "Time available: %s\n", req.TimePreference)
		return b.String()
	}
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Level: %s\n", req.Level)
	return b.String()
}
