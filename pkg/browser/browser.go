// Package browser exposes the browser automation backend as a small
// capability contract plus a Playwright MCP session that implements it.
package browser

import "context"

// Tools is the capability contract the research pipeline depends on. Any
// automation backend with this shape can substitute for the default
// Playwright MCP session.
type Tools interface {
	// Navigate loads a URL in the browser.
	Navigate(ctx context.Context, url string) error
	// Snapshot returns a structural text capture of the current page.
	Snapshot(ctx context.Context) (string, error)
	// Evaluate runs a script in the page and returns its textual result.
	Evaluate(ctx context.Context, expression string) (string, error)
	// Screenshot captures the current page as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
}
