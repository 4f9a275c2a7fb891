package analysis

import "journeylens/internal/normalize"

// Request bounds an analysis run. Handlers validate and cap the fields before
// the analyzer sees them.
type Request struct {
	URL      string `json:"url"`
	Goal     string `json:"goal,omitempty"`
	MaxPages int    `json:"max_pages"`
	MaxDepth int    `json:"max_depth"`
}

// ExperienceReport is the microbehavior audit: atomic items sorted by
// priority plus a staged timeline mapping them to page sections.
type ExperienceReport struct {
	URL      string            `json:"url"`
	Goal     string            `json:"goal,omitempty"`
	Items    []normalize.Item  `json:"items"`
	Timeline []normalize.Stage `json:"timeline"`
}

// JourneyStep is one stage of the conversion journey, grounded in content
// actually found on the site.
type JourneyStep struct {
	StepNumber              int      `json:"step_number"`
	StepName                string   `json:"step_name"`
	Description             string   `json:"description"`
	ContentElements         []string `json:"content_elements"`
	UserActions             []string `json:"user_actions"`
	ConversionIndicators    []string `json:"conversion_indicators"`
	FrictionPoints          []string `json:"friction_points"`
	OptimizationSuggestions []string `json:"optimization_suggestions"`
}

type JourneyReport struct {
	URL                    string        `json:"url"`
	JourneySteps           []JourneyStep `json:"journey_steps"`
	TotalSteps             int           `json:"total_steps"`
	ConversionFunnelType   string        `json:"conversion_funnel_type"`
	PrimaryGoal            string        `json:"primary_goal"`
	JourneyComplexity      string        `json:"journey_complexity"`
	KeyMomentsOfTruth      []string      `json:"key_moments_of_truth"`
	OptimizationPriorities []string      `json:"optimization_priorities"`
}

// ActionStep is a single granular user action on the conversion path.
type ActionStep struct {
	StepNumber        int      `json:"step_number"`
	ActionType        string   `json:"action_type"`
	ActionDescription string   `json:"action_description"`
	ContentTarget     string   `json:"content_target"`
	FrictionLevel     int      `json:"friction_level"`
	SuccessIndicators []string `json:"success_indicators"`
	FailurePoints     []string `json:"failure_points"`
}

type DropOffRisk struct {
	StepNumber      int    `json:"step_number"`
	RiskDescription string `json:"risk_description"`
}

type InteractionDetails struct {
	TotalSteps           int           `json:"total_steps"`
	CriticalPathSteps    []int         `json:"critical_path_steps"`
	OptionalSteps        []int         `json:"optional_steps"`
	DropOffRisks         []DropOffRisk `json:"drop_off_risks"`
	OptimizationSequence []string      `json:"optimization_sequence"`
}

type ActionReport struct {
	URL                string             `json:"url"`
	Goal               string             `json:"goal,omitempty"`
	ActionSequence     []ActionStep       `json:"action_sequence"`
	InteractionDetails InteractionDetails `json:"interaction_details"`
}
