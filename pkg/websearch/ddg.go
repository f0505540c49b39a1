package websearch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"periplo/pkg/request"
)

// Result is one web search hit.
type Result struct {
	URL     string
	Title   string
	Snippet string
}

// DDGClient searches the DuckDuckGo HTML endpoint. It is the default
// engine: no key, no quota.
type DDGClient struct {
	request  *request.Client
	Endpoint string
}

// NewDDGClient creates a client against the given HTML search endpoint.
func NewDDGClient(r *request.Client, endpoint string) *DDGClient {
	if endpoint == "" {
		endpoint = "https://html.duckduckgo.com/html/"
	}
	return &DDGClient{request: r, Endpoint: endpoint}
}

// Search runs a query and returns up to maxResults hits.
func (c *DDGClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	u := c.Endpoint + "?q=" + url.QueryEscape(query)

	body, err := c.request.Get(ctx, u, "")
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}

	results := parseResults(body, maxResults)
	return results, nil
}

// parseResults walks the result page looking for result__a anchors and
// their result__snippet siblings.
func parseResults(body []byte, maxResults int) []Result {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}

	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.A && hasClass(n, "result__a") {
			href := attr(n, "href")
			title := strings.TrimSpace(nodeText(n))
			real := decodeRedirect(href)
			if real != "" && len(title) >= 5 {
				results = append(results, Result{
					URL:     real,
					Title:   title,
					Snippet: findSnippet(n),
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

// decodeRedirect unwraps DuckDuckGo's uddg= redirect links.
func decodeRedirect(href string) string {
	if href == "" {
		return ""
	}
	if idx := strings.Index(href, "uddg="); idx >= 0 {
		enc := href[idx+len("uddg="):]
		if amp := strings.Index(enc, "&"); amp >= 0 {
			enc = enc[:amp]
		}
		if decoded, err := url.QueryUnescape(enc); err == nil && strings.HasPrefix(decoded, "http") {
			return decoded
		}
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}

// findSnippet looks for the result__snippet element following the
// title anchor inside the same result block.
func findSnippet(anchor *html.Node) string {
	for parent := anchor.Parent; parent != nil; parent = parent.Parent {
		if parent.DataAtom == atom.Body {
			break
		}
		if snippet := findClass(parent, "result__snippet"); snippet != nil {
			return strings.TrimSpace(nodeText(snippet))
		}
	}
	return ""
}

func findClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findClass(c, class); res != nil {
			return res
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && strings.Contains(a.Val, class) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
