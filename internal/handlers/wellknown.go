// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import "net/http"

// WellKnown serves the app-association files that let the iOS and
// Android apps claim /r/* share links as universal/app links.
type WellKnown struct {
	appleAppID         string // "TEAMID.bundle.id"
	androidPackage     string
	androidFingerprint string // SHA-256 signing cert fingerprint
}

// NewWellKnown creates the .well-known handler group. Empty values
// disable the corresponding file with a 404.
func NewWellKnown(appleAppID, androidPackage, androidFingerprint string) *WellKnown {
	return &WellKnown{
		appleAppID:         appleAppID,
		androidPackage:     androidPackage,
		androidFingerprint: androidFingerprint,
	}
}

// AppleAppSiteAssociation handles GET /.well-known/apple-app-site-association.
func (h *WellKnown) AppleAppSiteAssociation(w http.ResponseWriter, r *http.Request) {
	if h.appleAppID == "" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applinks": map[string]any{
			"apps": []string{},
			"details": []map[string]any{
				{
					"appID": h.appleAppID,
					"paths": []string{"/r/*"},
				},
			},
		},
	})
}

// AssetLinks handles GET /.well-known/assetlinks.json.
func (h *WellKnown) AssetLinks(w http.ResponseWriter, r *http.Request) {
	if h.androidPackage == "" || h.androidFingerprint == "" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, []map[string]any{
		{
			"relation": []string{"delegate_permission/common.handle_all_urls"},
			"target": map[string]any{
				"namespace":                "android_app",
				"package_name":             h.androidPackage,
				"sha256_cert_fingerprints": []string{h.androidFingerprint},
			},
		},
	})
}
