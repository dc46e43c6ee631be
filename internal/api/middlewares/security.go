package middlewares

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecurityHeadersMiddleware sets security headers on every status API response.
// The API only serves json, so a browser may load nothing from it.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	})
	return sec.Handler
}
