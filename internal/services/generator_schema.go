package services

import "github.com/yungbote/roadmap-backend/internal/platform/llm"

var levelEnum = []any{"Beginner", "Intermediate", "Advanced"}

// RoadmapSchema constrains the roadmap generator. Ids are never requested;
// they are assigned after validation.
var RoadmapSchema = &llm.Schema{
	Name:        "learning-roadmap",
	Description: "A learning roadmap: a title and a flat list of topics tagged by difficulty level",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Clear, engaging title for the overall roadmap",
			},
			"level": map[string]any{
				"type":        "string",
				"description": "Always Beginner for the root",
				"enum":        levelEnum,
			},
			"children": map[string]any{
				"type":        "array",
				"description": "Core topics across the three difficulty levels",
				"minItems":    1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Short topic label (2-6 words)",
						},
						"level": map[string]any{
							"type": "string",
							"enum": levelEnum,
						},
					},
					"required": []any{"title", "level"},
				},
			},
		},
		"required": []any{"title", "level", "children"},
	},
}

// InsightV1Schema is the original single-advice insight shape.
var InsightV1Schema = &llm.Schema{
	Name:        "node-insight-v1",
	Description: "An expert insight about a roadmap topic with resources and a duration estimate",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"insight": map[string]any{
				"type":        "string",
				"description": "A concise expert insight: key advice, a pitfall to avoid or a mental model",
			},
			"resources": map[string]any{
				"type":        "string",
				"description": "Markdown bulleted list of 2-3 specific learning resources",
			},
			"durationEstimate": map[string]any{
				"type":        "string",
				"description": "Realistic time to learn the topic for a beginner, e.g. \"1-2 weeks\"",
			},
		},
		"required":             []any{"insight", "resources", "durationEstimate"},
		"additionalProperties": false,
	},
}

// InsightV2Schema splits the advice into concept, tip and pitfall.
var InsightV2Schema = &llm.Schema{
	Name:        "node-insight-v2",
	Description: "Structured advice about a roadmap topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keyConcept": map[string]any{
				"type":        "string",
				"description": "The single most important idea to grasp (1-2 sentences)",
			},
			"practicalTip": map[string]any{
				"type":        "string",
				"description": "One actionable tip for practicing the topic",
			},
			"commonPitfall": map[string]any{
				"type":        "string",
				"description": "A mistake learners commonly make and how to avoid it",
			},
			"resources": map[string]any{
				"type":        "string",
				"description": "Markdown bulleted list of 2-3 specific learning resources",
			},
			"durationEstimate": map[string]any{
				"type":        "string",
				"description": "Realistic time to learn the topic, e.g. \"8-10 hours\"",
			},
		},
		"required":             []any{"keyConcept", "practicalTip", "commonPitfall", "resources", "durationEstimate"},
		"additionalProperties": false,
	},
}

var FollowUpSchema = &llm.Schema{
	Name:        "follow-up-answer",
	Description: "An answer to a learner's question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "Helpful, concise Markdown answer",
			},
		},
		"required":             []any{"answer"},
		"additionalProperties": false,
	},
}

var ChallengeSchema = &llm.Schema{
	Name:        "practice-challenge",
	Description: "A small, concrete practice task",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"challenge": map[string]any{
				"type":        "string",
				"description": "A specific, actionable task; never just \"learn about X\"",
			},
			"estimatedTime": map[string]any{
				"type":        "string",
				"description": "How long the task takes, e.g. \"10-15 minutes\"",
			},
		},
		"required":             []any{"challenge", "estimatedTime"},
		"additionalProperties": false,
	},
}
