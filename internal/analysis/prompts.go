package analysis

import (
	"encoding/json"
	"fmt"

	"journeylens/internal/extract"
	"journeylens/internal/signals"
	"journeylens/pkg/llm"
)

// promptSignals is the grounding payload embedded in every user prompt:
// compact, ordered, and limited so the model sees real content without
// drowning in it.
type promptSignals struct {
	URL           string          `json:"url"`
	Goal          string          `json:"goal,omitempty"`
	Title         string          `json:"title,omitempty"`
	TextSample    string          `json:"textSample"`
	ContentBlocks []extract.Block `json:"contentBlocks"`
	SiteFacts     signals.Facts   `json:"siteFacts"`
	Support       signals.Support `json:"support"`
	AllowedCTAs   []string        `json:"allowedCtas,omitempty"`
	FormFields    []string        `json:"formFields,omitempty"`
}

func (s promptSignals) render(maxBlocks, maxText int) string {
	trimmed := s
	if len(trimmed.ContentBlocks) > maxBlocks {
		trimmed.ContentBlocks = trimmed.ContentBlocks[:maxBlocks]
	}
	trimmed.TextSample = extract.Truncate(trimmed.TextSample, maxText)
	data, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

const experienceSystem = `You are a CRO/UX analyst. You receive structured signals from a website plus an optional business goal. Infer likely visitor microbehaviors, sources of friction, and targeted persuasion nudges. Return ONLY strict JSON with keys: items (list), timeline (list). No markdown, prose, or comments.

Output contract:
- items: array of objects with fields: behavior, explanation, nudge, priority (1-10), friction?, frictionScore? (1-10)
- timeline: 8-10 ordered stages, each with: index, stage, section?, observed, items (1-5 item objects)

Hard rules:
1) Ground everything in the provided signals; a stage's 'observed' must use the actual section content.
2) Atomic items only: one behavior per item. Split compound ideas into separate items.
3) No duplicates across items or stages.
4) Place items only in stages whose section actually matches them.
5) Cite CTAs ONLY with exact labels from allowedCtas; otherwise say 'the CTA'.
6) Do not recommend adding things the signals show already exist.
7) frictionScore 1-10 (10 highest), justified by the content.
8) priority 1-10 (10 most impactful); sort items by descending priority.
9) Timeline stages must map to real sections in content order.`

func experienceMessages(sig promptSignals) []llm.Message {
	user := fmt.Sprintf(`Analyze these signals and produce a concise CRO report. Produce 6-12 items capturing the most impactful microbehaviors, then a timeline of 8-10 stages reusing those items per stage.

Signals:
%s`, sig.render(20, 2000))
	return []llm.Message{
		{Role: "system", Content: experienceSystem},
		{Role: "user", Content: user},
	}
}

const journeySystem = `You are a user experience and conversion funnel analyst. You receive structured signals from a website and must map the user journey from landing to conversion. Return ONLY strict JSON with keys: journey_steps (list), journey_insights (object). No markdown, prose, or comments.

Output contract:
- journey_steps: array of objects with step_number, step_name, description, content_elements, user_actions, conversion_indicators, friction_points, optimization_suggestions
- journey_insights: object with conversion_funnel_type, primary_goal, journey_complexity (Simple/Medium/Complex), key_moments_of_truth, optimization_priorities

Hard rules:
1) Only create steps for content that actually exists in the signals.
2) Use exact text, headings, CTA labels (allowedCtas) and form field names (formFields).
3) Step order must follow the actual content order.
4) No generic templates; every step must be specific to this website.`

func journeyMessages(sig promptSignals) []llm.Message {
	user := fmt.Sprintf(`Create a user journey map grounded entirely in the scraped content below. If content for a step does not exist, do not create the step.

Signals:
%s`, sig.render(30, 4000))
	return []llm.Message{
		{Role: "system", Content: journeySystem},
		{Role: "user", Content: user},
	}
}

const actionsSystem = `You are a conversion path analyst. Map the complete realistic path a user takes from landing to the stated goal, including scrolls, reads, clicks, form fills, selections, and confirmation. Return ONLY strict JSON with keys: action_sequence (array), interaction_details (object). No markdown, prose, or comments.

Output contract:
- action_sequence: array of objects with step_number, action_type (view/read/click/fill/scroll/hover/submit/navigate), action_description, content_target, friction_level (1-5), success_indicators, failure_points
- interaction_details: object with total_steps, critical_path_steps, optional_steps, drop_off_risks (objects with step_number, risk_description), optimization_sequence

Hard rules:
1) Base every action on actual scraped content: exact headings, exact CTA labels from allowedCtas, exact field names from formFields.
2) One specific action per step; break complex actions into micro-steps.
3) Include realistic browsing behavior before the CTA and the complete post-CTA flow through confirmation.
4) Mark the steps essential for conversion as critical path.`

func actionsMessages(sig promptSignals) []llm.Message {
	user := fmt.Sprintf(`Create a granular step-by-step action sequence from landing to goal achievement, thinking like a real user moving through this site.

Signals:
%s`, sig.render(25, 3000))
	return []llm.Message{
		{Role: "system", Content: actionsSystem},
		{Role: "user", Content: user},
	}
}
