package service

import (
	"fmt"
	"strings"

	"contentpilot-backend/internal/domains/content/model"
)

const researchSystemPrompt = `You are a social media content strategist.
Respond with JSON only: {"topics": [{"title": "...", "summary": "...", "keywords": ["..."]}]}.
Return at most 10 topics.`

func researchUserPrompt(niche, audience string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest content topics for the niche: %s.\n", niche)
	if audience != "" {
		fmt.Fprintf(&b, "Target audience: %s.\n", audience)
	}
	b.WriteString("Each topic should work as a week-long social media campaign.")
	return b.String()
}

const draftSystemPrompt = `You are a social media copywriter.
Respond with JSON only: {"hook": "...", "body": "...", "cta": "..."}.
The hook is the first line, the body carries the message, the cta closes.`

func draftUserPrompt(topic *model.Topic, post *model.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a social media post about: %s.\n", topic.Title)
	if topic.Summary != "" {
		fmt.Fprintf(&b, "Topic context: %s\n", topic.Summary)
	}
	fmt.Fprintf(&b, "Funnel stage: %s. Objective: %s.\n", post.Stage, post.Objective)
	b.WriteString(stageGuidance(post.Stage))
	return b.String()
}

func rewriteUserPrompt(base *model.PostVersion, instruction string) string {
	var b strings.Builder
	b.WriteString("Rewrite this post according to the instruction.\n\n")
	fmt.Fprintf(&b, "Hook: %s\nBody: %s\nCTA: %s\n\n", base.Hook, base.Body, base.CTA)
	fmt.Fprintf(&b, "Instruction: %s", instruction)
	return b.String()
}

const criticSystemPrompt = `You are a strict content quality reviewer.
Respond with JSON only: {"verdict": "pass"|"revise"|"reject", "findings": [{"category": "...", "severity": "low"|"medium"|"high", "note": "..."}]}.
Flag weak hooks, unclear value, missing CTAs and off-objective copy.`

func criticUserPrompt(post *model.Post, version *model.PostVersion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review this %s-of-funnel post. Objective: %s.\n\n", post.Stage, post.Objective)
	fmt.Fprintf(&b, "Hook: %s\nBody: %s\nCTA: %s", version.Hook, version.Body, version.CTA)
	return b.String()
}

func stageGuidance(stage model.FunnelStage) string {
	switch stage {
	case model.StageTop:
		return "Optimize for reach: broad appeal, no hard sell."
	case model.StageMiddle:
		return "Build trust: demonstrate expertise, invite engagement."
	case model.StageBottom:
		return "Drive action: concrete offer, clear call to action."
	default:
		return ""
	}
}
