package policy

import (
	"net/http"
	"strconv"
)

// Response headers owned by the policy.
const (
	HeaderCacheControl    = "Cache-Control"
	HeaderVary            = "Vary"
	HeaderETag            = "ETag"
	HeaderContentEncoding = "Content-Encoding"

	NoStore = "no-store"
	// VaryDimensions lists the request headers a cached query response depends on.
	VaryDimensions = "Accept, Origin, Accept-Encoding, Accept-Language"
)

// ETag returns the quoted hex form of a 32-bit rolling hash over body
// (h = h*31 + b, wrapping). The same body always yields the same tag and the
// hash depends on byte order.
func ETag(body []byte) string {
	var h int32
	for _, b := range body {
		h = h*31 + int32(b)
	}
	return `"` + strconv.FormatInt(int64(h), 16) + `"`
}

// setCacheHeaders writes the cache directives for one response. Successful
// queries are public for maxAge seconds; everything else is no-store.
func setCacheHeaders(h http.Header, kind Kind, success bool, maxAge int, body []byte) {
	if kind != Query || !success {
		h.Set(HeaderCacheControl, NoStore)
		return
	}
	h.Set(HeaderCacheControl, "public, max-age="+strconv.Itoa(maxAge))
	h.Set(HeaderVary, VaryDimensions)
	h.Set(HeaderETag, ETag(body))
}
