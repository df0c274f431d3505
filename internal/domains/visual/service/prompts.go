package service

import (
	"fmt"
	"strings"

	contentmodel "contentpilot-backend/internal/domains/content/model"
	"contentpilot-backend/internal/domains/visual"
)

const conceptsSystemPrompt = `You are an art director for social media visuals.
Respond with JSON only: {"concepts": [{"headline": "...", "style": "...", "description": "..."}]}.
Return at most 5 distinct visual directions.`

func conceptsUserPrompt(post *contentmodel.Post, current *contentmodel.PostVersion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Propose visual concepts for a %s-of-funnel post. Objective: %s.\n", post.Stage, post.Objective)
	if current != nil {
		fmt.Fprintf(&b, "The copy it accompanies:\nHook: %s\nBody: %s\n", current.Hook, current.Body)
	}
	return b.String()
}

const slidePromptsSystemPrompt = `You write image generation prompts for carousel slides.
Respond with JSON only: {"prompts": ["..."]}.
One prompt per slide, consistent style across all of them.`

func slidePromptsUserPrompt(concept *visual.Concept, slideCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d image prompts for a carousel.\n", slideCount)
	fmt.Fprintf(&b, "Concept headline: %s\nStyle: %s\nDescription: %s", concept.Headline, concept.Style, concept.Description)
	return b.String()
}

func singleImagePrompt(concept *visual.Concept) string {
	return fmt.Sprintf("%s. Style: %s. %s", concept.Headline, concept.Style, concept.Description)
}
