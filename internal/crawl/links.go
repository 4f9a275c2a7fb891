package crawl

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const maxLinksPerPage = 200

// extractLinks parses HTML and returns unique same-host links resolved
// against baseURL. Fragments are stripped; query strings are kept because
// they often distinguish real pages.
func extractLinks(rawHTML, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(links) >= maxLinksPerPage {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				canonical, ok := normalizeLink(base, attr.Val)
				if !ok {
					continue
				}
				if !seen[canonical] {
					seen[canonical] = true
					links = append(links, canonical)
					if len(links) >= maxLinksPerPage {
						return
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return links
}

// normalizeLink resolves href against base and reports whether it points at
// another page on the same host.
func normalizeLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !sameHost(base, resolved) {
		return "", false
	}
	resolved.Fragment = ""
	if resolved.Path == "" {
		resolved.Path = "/"
	}
	return resolved.String(), true
}

// sameHost requires an exact host match. Subdomains are different sites.
func sameHost(a, b *url.URL) bool {
	return strings.EqualFold(a.Host, b.Host)
}
