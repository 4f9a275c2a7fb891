package normalize

const minStageItems = 2

// Stage is one step of the experience timeline.
type Stage struct {
	Index    int    `json:"index"`
	Stage    string `json:"stage"`
	Section  string `json:"section,omitempty"`
	Observed string `json:"observed,omitempty"`
	Items    []Item `json:"items"`
}

// BackfillTimeline evens out sparse stages: items beyond two per stage are
// pooled in order and redistributed to stages with fewer than two, then
// indices are reassigned 1..N. The stage order itself never changes.
func BackfillTimeline(stages []Stage) []Stage {
	var pool []Item
	for i := range stages {
		if len(stages[i].Items) > minStageItems {
			pool = append(pool, stages[i].Items[minStageItems:]...)
			stages[i].Items = stages[i].Items[:minStageItems]
		}
	}
	for i := range stages {
		for len(stages[i].Items) < minStageItems && len(pool) > 0 {
			stages[i].Items = append(stages[i].Items, pool[0])
			pool = pool[1:]
		}
	}
	for i := range stages {
		stages[i].Index = i + 1
	}
	return stages
}
