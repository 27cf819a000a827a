package presentations

import (
	"github.com/goliatone/go-slug"
	urlkit "github.com/goliatone/go-urlkit"
)

const (
	shareGroup     = "public"
	shareRoute     = "presentation"
	shareRouteSlug = "presentation_slug"
)

// ShareLinker builds shareable presentation URLs from a urlkit route
// manager. An empty base URL yields host-relative links.
type ShareLinker struct {
	manager *urlkit.RouteManager
}

// NewShareLinker constructs a linker rooted at baseURL.
func NewShareLinker(baseURL string) *ShareLinker {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    shareGroup,
				BaseURL: baseURL,
				Paths: map[string]string{
					shareRoute:     "/presentations/:id",
					shareRouteSlug: "/presentations/:id/:slug",
				},
			},
		},
	})
	return &ShareLinker{manager: manager}
}

// ShareURL returns the public link for a presentation, appending a slug of
// the title when one can be derived.
func (l *ShareLinker) ShareURL(record *Presentation) string {
	route := shareRoute
	builder := l.manager.Group(shareGroup)

	normalized, err := slug.Normalize(record.Title)
	withSlug := err == nil && normalized != ""
	if withSlug {
		route = shareRouteSlug
	}

	b := builder.Builder(route)
	b.WithParam("id", record.ID.String())
	if withSlug {
		b.WithParam("slug", normalized)
	}

	url, err := b.Build()
	if err != nil {
		return "/presentations/" + record.ID.String()
	}
	return url
}
