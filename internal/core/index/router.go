package index

import (
	"strings"

	"github.com/pogodigest/pogodigest/internal/core/domain"
)

var (
	balanceKeywords = []string{"balance", "nerf", "buff", "move update", "rebalance", "gbl"}
	featureKeywords = []string{"feature", "now available", "introducing", "coming soon"}
	wikiKeywords    = []string{"guide", "tips", "how to", "best", "wiki"}
)

// RouteDomain picks the domain to answer a free-text query from when the
// caller does not name one. Keyword routing with events as the default.
func RouteDomain(query string) domain.Domain {
	q := strings.ToLower(query)
	for _, k := range balanceKeywords {
		if strings.Contains(q, k) {
			return domain.DomainBalance
		}
	}
	for _, k := range featureKeywords {
		if strings.Contains(q, k) {
			return domain.DomainFeatures
		}
	}
	for _, k := range wikiKeywords {
		if strings.Contains(q, k) {
			return domain.DomainWiki
		}
	}
	return domain.DomainEvents
}
