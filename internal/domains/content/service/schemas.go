package service

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Outputs the AI tasks must produce. Each implements the schema contract:
// Validate rejects structurally bad payloads, Trim cuts arrays down to the
// declared maximum instead of failing the call.

const (
	maxTopicIdeas = 10
	maxFindings   = 10
)

type topicIdea struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

func (t topicIdea) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&t.Summary, validation.Required, validation.Length(3, 2000)),
	)
}

type topicIdeasOutput struct {
	Topics []topicIdea `json:"topics"`
}

func (o *topicIdeasOutput) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Topics, validation.Required, validation.Length(1, 0)),
	)
}

func (o *topicIdeasOutput) Trim() {
	if len(o.Topics) > maxTopicIdeas {
		o.Topics = o.Topics[:maxTopicIdeas]
	}
	for i := range o.Topics {
		if len(o.Topics[i].Keywords) > 10 {
			o.Topics[i].Keywords = o.Topics[i].Keywords[:10]
		}
	}
}

type postDraftOutput struct {
	Hook string `json:"hook"`
	Body string `json:"body"`
	CTA  string `json:"cta"`
}

func (o *postDraftOutput) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Hook, validation.Required),
		validation.Field(&o.Body, validation.Required),
	)
}

func (o *postDraftOutput) Trim() {}

type criticFinding struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Note     string `json:"note"`
}

func (f criticFinding) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Category, validation.Required),
		validation.Field(&f.Severity, validation.Required, validation.In("low", "medium", "high")),
		validation.Field(&f.Note, validation.Required),
	)
}

type criticOutput struct {
	Verdict  string          `json:"verdict"`
	Findings []criticFinding `json:"findings"`
}

func (o *criticOutput) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Verdict, validation.Required, validation.In("pass", "revise", "reject")),
	)
}

func (o *criticOutput) Trim() {
	if len(o.Findings) > maxFindings {
		o.Findings = o.Findings[:maxFindings]
	}
}
