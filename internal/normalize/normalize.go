// Package normalize makes LLM output deterministic: it recovers JSON from
// noisy wrapping, splits compound behaviors into atomic items, clamps scores,
// rewrites hallucinated CTA references, and deduplicates.
package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

const fallbackPriority = 5

var (
	fenceOpen    = regexp.MustCompile("(?i)^```(json)?")
	atomicSplit  = regexp.MustCompile(`(?i)\s*(?:\band\b|\bthen\b|&|;|→|->)\s*`)
	bookACall    = regexp.MustCompile(`(?i)book[^\w]*a[^\w]*call`)
	keyStrip     = regexp.MustCompile(`[^a-z0-9\s]`)
	spaceCollaps = regexp.MustCompile(`\s+`)
)

// ExtractJSON recovers a JSON object from model output that may be wrapped in
// code fences or prose. When no parseable object can be found, the original
// text is preserved under a "raw" key so callers never lose the response.
func ExtractJSON(text string) map[string]any {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(fenceOpen.ReplaceAllString(cleaned, ""))
		if strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimSpace(cleaned[:len(cleaned)-3])
		}
	}
	if !(strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}")) {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start != -1 && end > start {
			cleaned = cleaned[start : end+1]
		}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil || out == nil {
		return map[string]any{"raw": cleaned}
	}
	return out
}

// IsRaw reports whether ExtractJSON failed to parse and fell back to the
// raw-text wrapper.
func IsRaw(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	_, ok := m["raw"]
	return ok
}

// Item is one atomic observed-or-hypothesized user behavior with its scoring.
type Item struct {
	Behavior      string `json:"behavior"`
	Explanation   string `json:"explanation,omitempty"`
	Nudge         string `json:"nudge,omitempty"`
	Priority      int    `json:"priority"`
	Friction      string `json:"friction,omitempty"`
	FrictionScore int    `json:"frictionScore"`
	Section       string `json:"section,omitempty"`
}

// Items converts raw LLM item maps into normalized atomic Items. Compound
// behaviors are split on conjunctions, each part inheriting the parent's
// fields. When allowedCTAs is non-nil, "book a call" phrasing that matches no
// real CTA label is softened to "the CTA". Duplicates by (normalized
// behavior, section) are dropped, first occurrence winning.
func Items(raw []map[string]any, allowedCTAs []string) []Item {
	var normalized []Item
	for _, entry := range raw {
		behavior := strings.TrimSpace(stringField(entry, "behavior"))
		if behavior == "" {
			behavior = strings.TrimSpace(stringField(entry, "action"))
		}
		if behavior == "" {
			continue
		}
		for _, part := range SplitAtomic(behavior) {
			item := Item{
				Behavior:    part,
				Explanation: strings.TrimSpace(stringField(entry, "explanation")),
				Nudge:       strings.TrimSpace(stringField(entry, "nudge")),
				Priority:    clamp(coerceInt(entry["priority"], fallbackPriority), 1, 10),
				Friction:    strings.TrimSpace(stringField(entry, "friction")),
				Section:     strings.TrimSpace(stringField(entry, "section")),
			}
			if fs, ok := tryInt(entry["frictionScore"]); ok {
				item.FrictionScore = clamp(fs, 1, 10)
			} else {
				item.FrictionScore = InferFrictionScore(item)
			}
			if allowedCTAs != nil {
				softenCTA(&item, allowedCTAs)
			}
			normalized = append(normalized, item)
		}
	}

	seen := make(map[string]bool)
	var deduped []Item
	for _, item := range normalized {
		key := normalizeKey(item.Behavior) + "\x00" + item.Section
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, item)
	}
	return deduped
}

// SplitAtomic breaks a compound behavior description into its atomic parts.
func SplitAtomic(text string) []string {
	var out []string
	for _, part := range atomicSplit.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InferFrictionScore estimates a friction score for items the model scored
// inconsistently: it starts from the item's priority and raises it when the
// surrounding text mentions hard blockers or confusion.
func InferFrictionScore(item Item) int {
	score := item.Priority
	if score == 0 {
		score = fallbackPriority
	}
	s := strings.ToLower(item.Behavior + " " + item.Explanation + " " + item.Friction)
	for _, k := range []string{"blocker", "error", "fail", "stuck", "mandatory", "payment"} {
		if strings.Contains(s, k) {
			if score < 8 {
				score = 8
			}
			break
		}
	}
	for _, k := range []string{"confus", "hesitat", "unclear", "inconsist"} {
		if strings.Contains(s, k) {
			if score < 6 {
				score = 6
			}
			break
		}
	}
	return clamp(score, 1, 10)
}

// softenCTA rewrites "book a call" references to "the CTA" when no allowed
// label actually appears in the behavior text.
func softenCTA(item *Item, allowedCTAs []string) {
	lower := strings.ToLower(item.Behavior)
	mentioned := false
	for _, token := range []string{"book a call", "book", "call"} {
		if strings.Contains(lower, token) {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return
	}
	for _, label := range allowedCTAs {
		if label != "" && strings.Contains(lower, strings.ToLower(label)) {
			return
		}
	}
	item.Behavior = bookACall.ReplaceAllString(item.Behavior, "the CTA")
	if item.Nudge != "" {
		item.Nudge = bookACall.ReplaceAllString(item.Nudge, "the CTA")
	}
}

func normalizeKey(text string) string {
	t := spaceCollaps.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
	return keyStrip.ReplaceAllString(t, "")
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func coerceInt(v any, fallback int) int {
	if n, ok := tryInt(v); ok {
		return n
	}
	return fallback
}

func tryInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func clamp(v, lower, upper int) int {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
