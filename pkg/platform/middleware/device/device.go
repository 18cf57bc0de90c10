// Package device classifies the calling device from its User-Agent. The
// native wallet handover behaves differently on mobile shells, so handlers
// and audit events want a readable device descriptor, not the raw header.
package device

import (
	"net/http"

	"github.com/mssola/useragent"

	"walletgate/pkg/requestcontext"
)

// Describe renders a User-Agent as "browser version on os", or "unknown"
// when the header is empty or unparseable.
func Describe(rawUA string) string {
	if rawUA == "" {
		return "unknown"
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	if name == "" {
		return "unknown"
	}
	desc := name
	if version != "" {
		desc += " " + version
	}
	if os := ua.OS(); os != "" {
		desc += " on " + os
	}
	if ua.Mobile() {
		desc += " (mobile)"
	}
	return desc
}

// Middleware parses the User-Agent once and stores the descriptor in the
// request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithDevice(r.Context(), Describe(r.Header.Get("User-Agent")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
