// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"net/url"
	"strings"
)

// Deep-link carriers for invite slugs. Three forms are in the wild:
//
//	scheme://i/{slug}
//	https://{host}/i/{slug}
//	https://{host}/v2?i={slug}
//
// Slugs may contain the '*' chunk separator, which URL parsing leaves
// intact in paths and percent-encodes in query values; SlugFromLink
// handles both.

// AppLink wraps a slug in the custom-scheme carrier.
func AppLink(scheme, slug string) string {
	return scheme + "://i/" + slug
}

// WebLink wraps a slug in the https path carrier.
func WebLink(host, slug string) string {
	return "https://" + host + "/i/" + slug
}

// WebLinkV2 wraps a slug in the https query carrier.
func WebLinkV2(host, slug string) string {
	return "https://" + host + "/v2?i=" + url.QueryEscape(slug)
}

// SlugFromLink extracts the invite slug from any of the deep-link
// carriers. Returns false when raw is not a recognizable invite link;
// callers then try the text as a bare slug.
func SlugFromLink(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		return "", false
	}

	// Query carrier: https://{host}/v2?i={slug}.
	if slug := parsed.Query().Get("i"); slug != "" {
		return slug, true
	}

	// Path carrier: https://{host}/i/{slug}.
	if slug, found := strings.CutPrefix(parsed.Path, "/i/"); found && slug != "" {
		return slug, true
	}

	// Custom-scheme carrier: scheme://i/{slug} parses with host "i"
	// and the slug as the path.
	if parsed.Host == "i" {
		if slug := strings.TrimPrefix(parsed.Path, "/"); slug != "" {
			return slug, true
		}
	}

	return "", false
}
