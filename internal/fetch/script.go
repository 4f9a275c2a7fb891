package fetch

// Interactions aggregates the behavioural counters collected by the tracker
// script while a page is open in the browser.
type Interactions struct {
	Clicks         int     `json:"clicks"`
	Scrolls        int     `json:"scrolls"`
	Hovers         int     `json:"hovers"`
	Inputs         int     `json:"inputs"`
	RageClicks     int     `json:"rageClicks"`
	MaxScrollDepth float64 `json:"maxScrollDepth"`
}

// EventCount is the total number of recorded events across all kinds.
func (i *Interactions) EventCount() int {
	if i == nil {
		return 0
	}
	return i.Clicks + i.Scrolls + i.Hovers + i.Inputs
}

// trackerScript is injected before every document loads. It records clicks,
// scroll depth, hovers on interactive elements, input events, and rage
// clicks (3+ clicks on the same target within a second) under a window
// global the fetcher reads back after the page settles.
const trackerScript = `(() => {
	const state = {
		clicks: 0,
		scrolls: 0,
		hovers: 0,
		inputs: 0,
		rageClicks: 0,
		maxScrollDepth: 0,
	};
	window.__journeylens = state;

	let lastClickTarget = null;
	let lastClickTime = 0;
	let burst = 0;

	document.addEventListener('click', (e) => {
		state.clicks++;
		const now = Date.now();
		if (e.target === lastClickTarget && now - lastClickTime < 1000) {
			burst++;
			if (burst >= 3) {
				state.rageClicks++;
				burst = 0;
			}
		} else {
			burst = 1;
		}
		lastClickTarget = e.target;
		lastClickTime = now;
	}, true);

	window.addEventListener('scroll', () => {
		state.scrolls++;
		const doc = document.documentElement;
		const scrollable = doc.scrollHeight - window.innerHeight;
		if (scrollable > 0) {
			const depth = (window.scrollY / scrollable) * 100;
			if (depth > state.maxScrollDepth) {
				state.maxScrollDepth = Math.min(depth, 100);
			}
		}
	}, { passive: true });

	document.addEventListener('mouseover', (e) => {
		const t = e.target;
		if (t && t.matches && t.matches('a, button, input, select, textarea, [role="button"]')) {
			state.hovers++;
		}
	}, true);

	document.addEventListener('input', () => {
		state.inputs++;
	}, true);
})();`
