package ai

import "contentpilot-backend/internal/domains/credential"

// Task is a logical generation task. The mapping to a concrete
// provider+model is static; workspaces influence it only through key
// presence (BYOK), never through custom routing.
type Task string

const (
	TaskTopicResearch  Task = "topic_research"
	TaskPostGeneration Task = "post_generation"
	TaskPostRewrite    Task = "post_rewrite"
	TaskCriticReview   Task = "critic_review"
	TaskVisualConcepts Task = "visual_concepts"
	TaskSlidePrompts   Task = "slide_prompts"

	// TaskImageRender has no route in taskRoutes: image calls go through
	// GenerateImage. The constant exists for usage bookkeeping.
	TaskImageRender Task = "image_render"
)

type route struct {
	provider credential.Provider
	model    string
	// jsonMode is off for providers where schema-constrained generation is
	// unreliable on large inputs; their output goes through the free-text
	// parse path instead.
	jsonMode bool
}

// taskRoutes: first entry is the primary, the rest form the fallback chain
// tried in order after transport failure. Chain order is fixed per task;
// no circuit breaking.
var taskRoutes = map[Task][]route{
	TaskTopicResearch: {
		{credential.ProviderGemini, "gemini-2.0-flash", false},
		{credential.ProviderOpenAI, "gpt-4o-mini", true},
	},
	TaskPostGeneration: {
		{credential.ProviderOpenAI, "gpt-4o", true},
		{credential.ProviderAnthropic, "claude-sonnet-4-20250514", false},
	},
	TaskPostRewrite: {
		{credential.ProviderOpenAI, "gpt-4o-mini", true},
		{credential.ProviderAnthropic, "claude-sonnet-4-20250514", false},
	},
	TaskCriticReview: {
		// Critic prompts carry whole campaigns; free text is the reliable
		// path on inputs that size.
		{credential.ProviderAnthropic, "claude-sonnet-4-20250514", false},
		{credential.ProviderOpenAI, "gpt-4o", true},
	},
	TaskVisualConcepts: {
		{credential.ProviderOpenAI, "gpt-4o", true},
		{credential.ProviderGemini, "gemini-2.0-flash", false},
	},
	TaskSlidePrompts: {
		{credential.ProviderOpenAI, "gpt-4o", true},
		{credential.ProviderAnthropic, "claude-sonnet-4-20250514", false},
	},
}

// imageModel is the single image-rendering model.
const imageModel = "dall-e-3"
