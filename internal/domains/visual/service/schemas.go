package service

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxConcepts = 5
	maxSlides   = 10
)

type conceptIdea struct {
	Headline    string `json:"headline"`
	Style       string `json:"style"`
	Description string `json:"description"`
}

func (c conceptIdea) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Headline, validation.Required),
		validation.Field(&c.Style, validation.Required),
		validation.Field(&c.Description, validation.Required),
	)
}

type conceptsOutput struct {
	Concepts []conceptIdea `json:"concepts"`
}

func (o *conceptsOutput) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Concepts, validation.Required, validation.Length(1, 0)),
	)
}

func (o *conceptsOutput) Trim() {
	if len(o.Concepts) > maxConcepts {
		o.Concepts = o.Concepts[:maxConcepts]
	}
}

type slidePromptsOutput struct {
	Prompts []string `json:"prompts"`
}

func (o *slidePromptsOutput) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Prompts, validation.Required, validation.Length(1, 0)),
	)
}

func (o *slidePromptsOutput) Trim() {
	if len(o.Prompts) > maxSlides {
		o.Prompts = o.Prompts[:maxSlides]
	}
}
