package fetch

import "strings"

// spaMarkers are attribute fragments that betray a client-side framework
// shell even when the raw document is otherwise plausible.
var spaMarkers = []string{
	"ng-app",
	"data-reactroot",
	`id="root"`,
	`id="app"`,
}

// NeedsRendering reports whether a raw HTML document is likely a JavaScript
// shell whose real content only appears after rendering. It operates on the
// raw string without parsing so it stays cheap enough to run on every page.
func NeedsRendering(html string) bool {
	if len(html) < 5000 {
		return true
	}
	if strings.Contains(html, "<body></body>") || strings.Contains(html, "<body><div></div></body>") {
		return true
	}
	scriptCount := strings.Count(html, "<script")
	divCount := strings.Count(html, "<div")
	if scriptCount > 0 && divCount < 5 {
		return true
	}
	for _, marker := range spaMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}
