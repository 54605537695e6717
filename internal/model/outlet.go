package model

import "strings"

// Outlet identifies one of the four reference news organisations used for
// cross-referencing
type Outlet string

const (
	OutletBBC      Outlet = "bbc"
	OutletCNN      Outlet = "cnn"
	OutletABC      Outlet = "abc"
	OutletGuardian Outlet = "guardian"
)

// ReferenceOutlets lists the outlets in the order they are reported
var ReferenceOutlets = []Outlet{OutletBBC, OutletCNN, OutletABC, OutletGuardian}

// Name is the display name of the outlet
func (o Outlet) Name() string {
	switch o {
	case OutletBBC:
		return "BBC"
	case OutletCNN:
		return "CNN"
	case OutletABC:
		return "ABC News"
	case OutletGuardian:
		return "The Guardian"
	default:
		return string(o)
	}
}

// Domains are the hostnames an outlet publishes under
func (o Outlet) Domains() []string {
	switch o {
	case OutletBBC:
		return []string{"bbc.com", "bbc.co.uk"}
	case OutletCNN:
		return []string{"cnn.com"}
	case OutletABC:
		return []string{"abcnews.go.com"}
	case OutletGuardian:
		return []string{"theguardian.com", "guardian.co.uk"}
	default:
		return nil
	}
}

// Owns reports whether an article URL or source name belongs to the outlet
func (o Outlet) Owns(articleURL, sourceName string) bool {
	lowerURL := strings.ToLower(articleURL)
	for _, d := range o.Domains() {
		if strings.Contains(lowerURL, d) {
			return true
		}
	}
	key := string(o)
	return sourceName != "" && strings.Contains(strings.ToLower(sourceName), key)
}

// IsOutletURL reports whether the URL is published by any reference outlet
func IsOutletURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, o := range ReferenceOutlets {
		// bbc.co.uk and guardian.co.uk are search-only aliases
		if strings.Contains(lower, o.Domains()[0]) {
			return true
		}
	}
	return false
}
