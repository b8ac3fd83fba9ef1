// Package seo generates SEO fallbacks for migrated content and fills in the
// schema.org defaults each content type is expected to carry.
package seo

import (
	"net/url"
	"strings"

	"github.com/polything/go-wpmigrate/content"
)

// DefaultSiteURL is the production domain canonical URLs are built against.
const DefaultSiteURL = "https://polything.co.uk"

// Paths maps content types to their public URL prefix. Pages live at the root.
type Paths struct {
	Project string
	Post    string
	Page    string
}

// PathFor returns the public path of slug for content type t.
func (p Paths) PathFor(t content.Type, slug string) string {
	prefix := ""
	switch t {
	case content.TypeProject:
		prefix = p.Project
	case content.TypePost:
		prefix = p.Post
	case content.TypePage:
		prefix = p.Page
	}
	prefix = strings.TrimRight(prefix, "/")
	return prefix + "/" + strings.Trim(slug, "/")
}

// RoutePaths are the routes the site serves content from.
func RoutePaths() Paths {
	return Paths{Project: "/work", Post: "/blog"}
}

// BreadcrumbPaths are the section paths used by generated breadcrumbs and the
// content validator's canonical fallback. Projects sit under /projects here,
// unlike the /work route.
func BreadcrumbPaths() Paths {
	return Paths{Project: "/projects", Post: "/blog"}
}

// CanonicalURL joins siteURL and the public path of rec.
func CanonicalURL(siteURL string, paths Paths, rec content.Record) string {
	base := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	return base + paths.PathFor(rec.Type, rec.Slug)
}

// IsValidURL reports whether value parses as an absolute URL.
func IsValidURL(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" {
		return false
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return parsed.Host != ""
	}
	return true
}
