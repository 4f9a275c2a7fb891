package extract

import (
	"strings"
	"testing"
)

var articleHTML = `<html><head>
<title>Acme Consulting</title>
<meta name="description" content="Consulting for growing teams">
</head><body>
<nav><a href="/">Home</a><a href="/pricing">Pricing</a></nav>
<article>
<h1>How we work</h1>
<p>` + loremWords + `</p>
<p>` + loremWords + `</p>
</article>
<section><p>Read a customer testimonial and our five star rating.</p></section>
<form action="/contact"><input name="email"><input type="submit" value="Get Quote"></form>
</body></html>`

var loremWords = strings.Repeat("practical advice for teams shipping software every single week ", 10)

func TestStructured(t *testing.T) {
	got := Structured(articleHTML, "https://acme.example/how")
	if got.Title != "Acme Consulting" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.MetaDescription != "Consulting for growing teams" {
		t.Errorf("MetaDescription = %q", got.MetaDescription)
	}
	if got.WordCount == 0 {
		t.Error("expected non-zero word count")
	}
	if got.FormCount != 1 {
		t.Errorf("FormCount = %d, want 1", got.FormCount)
	}
	if got.LinkCount != 2 {
		t.Errorf("LinkCount = %d, want 2", got.LinkCount)
	}
	if !strings.Contains(got.Markdown, "practical advice") {
		t.Errorf("Markdown missing article text: %q", Truncate(got.Markdown, 120))
	}
}

func TestStructuredTrustSignals(t *testing.T) {
	got := Structured(articleHTML, "https://acme.example/how")
	if !contains(got.TrustSignals, "testimonial") || !contains(got.TrustSignals, "rating") {
		t.Errorf("TrustSignals = %v, want testimonial and rating", got.TrustSignals)
	}
}

func TestStructuredClickables(t *testing.T) {
	got := Structured(articleHTML, "https://acme.example/how")
	var labels []string
	for _, c := range got.Clickables {
		labels = append(labels, c.Label)
	}
	for _, want := range []string{"Home", "Pricing", "Get Quote"} {
		if !contains(labels, want) {
			t.Errorf("Clickables labels = %v, missing %q", labels, want)
		}
	}
}

func TestStructuredNeverErrors(t *testing.T) {
	for _, html := range []string{"", "not html at all", "<html><body></body></html>"} {
		got := Structured(html, "https://example.com")
		if got == nil {
			t.Fatalf("Structured(%q) returned nil", html)
		}
	}
}
