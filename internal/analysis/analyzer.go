// Package analysis orchestrates crawling, extraction, and the LLM into the
// three audit reports: experience, journey, and granular actions.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"journeylens/internal/crawl"
	"journeylens/internal/extract"
	"journeylens/internal/normalize"
	"journeylens/internal/signals"
	"journeylens/pkg/llm"
	"journeylens/pkg/logging"
)

const (
	perPageTextCap = 4000
	corpusTextCap  = 12000
)

type Analyzer struct {
	crawler  *crawl.Crawler
	provider llm.Provider
	logger   logging.Logger
}

type Option func(*Analyzer)

func WithLogger(l logging.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

func New(crawler *crawl.Crawler, provider llm.Provider, opts ...Option) *Analyzer {
	a := &Analyzer{crawler: crawler, provider: provider}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// corpus is everything gathered from the crawl that grounds a prompt.
type corpus struct {
	title       string
	textSample  string
	fullText    string
	htmlPages   []string
	blocks      []extract.Block
	allowedCTAs []string
	formFields  []string
	facts       signals.Facts
	support     signals.Support
	graph       *crawl.SiteGraph
}

// gather crawls the site and folds every reachable page into one corpus.
func (a *Analyzer) gather(ctx context.Context, req Request) (*corpus, error) {
	graph, err := a.crawler.Enhanced(ctx, req.URL, req.MaxPages, req.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("analysis: crawl %s: %w", req.URL, err)
	}

	c := &corpus{graph: graph}
	var texts []string
	for _, node := range graph.PageList() {
		if node.HTML == "" {
			continue
		}
		c.htmlPages = append(c.htmlPages, node.HTML)
		text := extract.Text(node.HTML)
		texts = append(texts, text)
		if c.title == "" {
			c.title = node.Title
		}
		blocks := extract.Blocks(node.HTML)
		for i := range blocks {
			if blocks[i].Heading == "" {
				blocks[i].Heading = "Block from " + node.URL
			}
		}
		c.blocks = append(c.blocks, blocks...)
	}

	var samples []string
	for _, t := range texts {
		samples = append(samples, extract.Truncate(t, perPageTextCap))
	}
	c.textSample = extract.Truncate(strings.Join(samples, "\n\n"), corpusTextCap)
	c.fullText = strings.Join(texts, "\n")
	c.facts = signals.SiteFacts(c.fullText, c.blocks)
	c.support = signals.Supporting(c.htmlPages, c.blocks)

	seenCTA := make(map[string]bool)
	seenField := make(map[string]bool)
	for _, b := range c.blocks {
		for _, label := range b.CTAs {
			if label != "" && !seenCTA[label] {
				seenCTA[label] = true
				c.allowedCTAs = append(c.allowedCTAs, label)
			}
		}
		for _, form := range b.Forms {
			for _, field := range strings.Split(form.Fields, ",") {
				field = strings.TrimSpace(field)
				if field != "" && !seenField[field] {
					seenField[field] = true
					c.formFields = append(c.formFields, field)
				}
			}
		}
	}

	return c, nil
}

func (c *corpus) promptSignals(req Request) promptSignals {
	return promptSignals{
		URL:           req.URL,
		Goal:          req.Goal,
		Title:         c.title,
		TextSample:    c.textSample,
		ContentBlocks: c.blocks,
		SiteFacts:     c.facts,
		Support:       c.support,
		AllowedCTAs:   c.allowedCTAs,
		FormFields:    c.formFields,
	}
}

// Experience runs the microbehavior audit. An empty page corpus yields a
// structurally valid empty report rather than an error.
func (a *Analyzer) Experience(ctx context.Context, req Request) (*ExperienceReport, error) {
	c, err := a.gather(ctx, req)
	if err != nil {
		return nil, err
	}
	report := &ExperienceReport{
		URL:      req.URL,
		Goal:     req.Goal,
		Items:    []normalize.Item{},
		Timeline: []normalize.Stage{},
	}
	if len(c.blocks) == 0 {
		a.warnEmpty(req.URL)
		return report, nil
	}

	out, err := a.provider.Complete(ctx, experienceMessages(c.promptSignals(req)))
	if err != nil {
		return nil, fmt.Errorf("analysis: experience completion: %w", err)
	}
	data := normalize.ExtractJSON(out)
	if normalize.IsRaw(data) && a.logger != nil {
		a.logger.WithField("url", req.URL).Warn("Experience response was not valid JSON")
	}

	itemsRaw := asMaps(firstOf(data, "items", "hypothesized_microbehaviors"))
	report.Items = normalize.Items(itemsRaw, c.allowedCTAs)

	for _, st := range asMaps(data["timeline"]) {
		idx := len(report.Timeline) + 1
		stage := normalize.Stage{
			Index:    idx,
			Stage:    asString(st["stage"]),
			Section:  asString(st["section"]),
			Observed: asString(st["observed"]),
			Items:    normalize.Items(asMaps(st["items"]), c.allowedCTAs),
		}
		if stage.Stage == "" {
			stage.Stage = fmt.Sprintf("Stage %d", idx)
		}
		report.Timeline = append(report.Timeline, stage)
	}
	report.Timeline = normalize.BackfillTimeline(report.Timeline)

	return report, nil
}

// Journey maps the conversion funnel. LLM-produced steps are trusted after
// normalization; deterministic CTA-derived steps are used only when the model
// returns no usable steps at all.
func (a *Analyzer) Journey(ctx context.Context, req Request) (*JourneyReport, error) {
	c, err := a.gather(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(c.blocks) == 0 {
		a.warnEmpty(req.URL)
		return &JourneyReport{
			URL:                    req.URL,
			JourneySteps:           []JourneyStep{},
			ConversionFunnelType:   "Unknown - No Content",
			PrimaryGoal:            "Unknown - No Content",
			JourneyComplexity:      "Unknown",
			KeyMomentsOfTruth:      []string{"No content could be extracted"},
			OptimizationPriorities: []string{"Ensure the site serves crawlable content"},
		}, nil
	}

	out, err := a.provider.Complete(ctx, journeyMessages(c.promptSignals(req)))
	if err != nil {
		return nil, fmt.Errorf("analysis: journey completion: %w", err)
	}
	data := normalize.ExtractJSON(out)

	report := &JourneyReport{URL: req.URL}
	for _, raw := range asMaps(data["journey_steps"]) {
		name := asString(raw["step_name"])
		if name == "" {
			continue
		}
		report.JourneySteps = append(report.JourneySteps, JourneyStep{
			StepNumber:              len(report.JourneySteps) + 1,
			StepName:                name,
			Description:             asString(raw["description"]),
			ContentElements:         asStrings(raw["content_elements"]),
			UserActions:             asStrings(raw["user_actions"]),
			ConversionIndicators:    asStrings(raw["conversion_indicators"]),
			FrictionPoints:          asStrings(raw["friction_points"]),
			OptimizationSuggestions: asStrings(raw["optimization_suggestions"]),
		})
	}
	if len(report.JourneySteps) == 0 {
		report.JourneySteps = fallbackJourneySteps(c)
	}
	report.TotalSteps = len(report.JourneySteps)

	insights := asMap(data["journey_insights"])
	report.ConversionFunnelType = defaultString(asString(insights["conversion_funnel_type"]), "Content-driven funnel")
	report.PrimaryGoal = defaultString(asString(insights["primary_goal"]), inferPrimaryGoal(c))
	report.JourneyComplexity = defaultString(asString(insights["journey_complexity"]), complexityFor(len(report.JourneySteps)))
	report.KeyMomentsOfTruth = asStrings(insights["key_moments_of_truth"])
	report.OptimizationPriorities = asStrings(insights["optimization_priorities"])

	return report, nil
}

// Actions produces the granular action-by-action conversion path.
func (a *Analyzer) Actions(ctx context.Context, req Request) (*ActionReport, error) {
	c, err := a.gather(ctx, req)
	if err != nil {
		return nil, err
	}
	report := &ActionReport{URL: req.URL, Goal: req.Goal, ActionSequence: []ActionStep{}}
	if len(c.blocks) == 0 {
		a.warnEmpty(req.URL)
		return report, nil
	}

	out, err := a.provider.Complete(ctx, actionsMessages(c.promptSignals(req)))
	if err != nil {
		return nil, fmt.Errorf("analysis: actions completion: %w", err)
	}
	data := normalize.ExtractJSON(out)

	for _, raw := range asMaps(data["action_sequence"]) {
		desc := asString(raw["action_description"])
		if desc == "" {
			continue
		}
		report.ActionSequence = append(report.ActionSequence, ActionStep{
			StepNumber:        len(report.ActionSequence) + 1,
			ActionType:        defaultString(asString(raw["action_type"]), "view"),
			ActionDescription: desc,
			ContentTarget:     asString(raw["content_target"]),
			FrictionLevel:     clampInt(asInt(raw["friction_level"], 1), 1, 5),
			SuccessIndicators: asStrings(raw["success_indicators"]),
			FailurePoints:     asStrings(raw["failure_points"]),
		})
	}

	details := asMap(data["interaction_details"])
	report.InteractionDetails = InteractionDetails{
		TotalSteps:           len(report.ActionSequence),
		CriticalPathSteps:    asInts(details["critical_path_steps"]),
		OptionalSteps:        asInts(details["optional_steps"]),
		OptimizationSequence: asStrings(details["optimization_sequence"]),
	}
	for _, raw := range asMaps(details["drop_off_risks"]) {
		report.InteractionDetails.DropOffRisks = append(report.InteractionDetails.DropOffRisks, DropOffRisk{
			StepNumber:      asInt(raw["step_number"], 0),
			RiskDescription: asString(raw["risk_description"]),
		})
	}

	return report, nil
}

// fallbackJourneySteps derives a minimal deterministic journey from the
// ranked blocks when the model produced no steps: land on the top block,
// then one step per CTA encountered.
func fallbackJourneySteps(c *corpus) []JourneyStep {
	var steps []JourneyStep
	if len(c.blocks) > 0 {
		top := c.blocks[0]
		steps = append(steps, JourneyStep{
			StepNumber:      1,
			StepName:        "Land on " + defaultString(top.Heading, "the page"),
			Description:     extract.Truncate(top.Snippet, 200),
			ContentElements: []string{top.Heading},
			UserActions:     []string{"Read the opening section"},
		})
	}
	for _, label := range c.allowedCTAs {
		steps = append(steps, JourneyStep{
			StepNumber:  len(steps) + 1,
			StepName:    fmt.Sprintf("Click %q", label),
			Description: fmt.Sprintf("User activates the %q call to action.", label),
			UserActions: []string{"Click " + label},
		})
		if len(steps) >= 9 {
			break
		}
	}
	return steps
}

func inferPrimaryGoal(c *corpus) string {
	if len(c.allowedCTAs) > 0 {
		return c.allowedCTAs[0]
	}
	if c.facts.HasForm {
		return "Form submission"
	}
	return "Unknown"
}

func complexityFor(steps int) string {
	switch {
	case steps <= 4:
		return "Simple"
	case steps <= 8:
		return "Medium"
	default:
		return "Complex"
	}
}

func (a *Analyzer) warnEmpty(url string) {
	if a.logger != nil {
		a.logger.WithField("url", url).Warn("No content blocks extracted from any page")
	}
}
