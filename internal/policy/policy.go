// Package policy implements the content-disposition rules and the
// status-code allow-list. Everything here is pure string and integer
// classification: no I/O, no shared state.
package policy

import (
	"strconv"
	"strings"
)

// Disposition is a Content-Disposition header value (bare token, no
// filename parameter).
type Disposition string

// Disposition values.
const (
	Inline     Disposition = "inline"
	Attachment Disposition = "attachment"
)

// DefaultStatusCode is the only allow-listed status when none are configured.
const DefaultStatusCode = 200

// builtinInlineTypes are content-type substrings served inline when no
// operator override matches. image/* and text/* prefixes are handled
// separately in Decide.
var builtinInlineTypes = []string{
	"application/pdf",
	"application/json",
	"application/xml",
	"application/javascript",
	"text/javascript",
}

// bodilessStatuses are statuses for which a response body is
// protocol-disallowed.
var bodilessStatuses = map[int]bool{
	101: true,
	204: true,
	205: true,
	304: true,
}

// IsBodilessStatus reports whether code forbids a response body.
func IsBodilessStatus(code int) bool {
	return bodilessStatuses[code]
}

// ParseStatusCodes parses a comma-separated list of status codes. Tokens
// that fail to parse are dropped; an empty or fully unparseable input
// yields {DefaultStatusCode}. Misconfiguration degrades to the default,
// it never fails.
func ParseStatusCodes(raw string) map[int]bool {
	codes := make(map[int]bool)
	for _, token := range strings.Split(raw, ",") {
		code, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			continue
		}
		codes[code] = true
	}
	if len(codes) == 0 {
		codes[DefaultStatusCode] = true
	}
	return codes
}

// ParseMimeList parses a comma-separated list of content-type substrings,
// trimmed and lower-cased. Empty tokens are dropped.
func ParseMimeList(raw string) []string {
	var list []string
	for _, token := range strings.Split(raw, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		list = append(list, token)
	}
	return list
}

// Rules holds the per-request response policy: which upstream statuses pass
// through untouched and which content types are forced inline or to
// download. Immutable once built.
type Rules struct {
	allowedStatuses map[int]bool
	forceInline     []string
	forceDownload   []string
}

// NewRules builds Rules from the raw configuration strings.
func NewRules(statusCodes, forceInline, forceDownload string) *Rules {
	return &Rules{
		allowedStatuses: ParseStatusCodes(statusCodes),
		forceInline:     ParseMimeList(forceInline),
		forceDownload:   ParseMimeList(forceDownload),
	}
}

// StatusAllowed reports whether an upstream status is allow-listed for
// pass-through.
func (r *Rules) StatusAllowed(code int) bool {
	return r.allowedStatuses[code]
}

// Decide classifies a response content-type as inline or attachment.
//
// Matching is substring containment against the lower-cased content-type, so
// overrides match parameterized values like "text/html; charset=utf-8".
// Precedence, first match wins: operator force-inline list, operator
// force-download list, built-in inline classes, attachment. Overrides outrank
// built-ins so operators can both widen and narrow the inline set.
func (r *Rules) Decide(contentType string) Disposition {
	if contentType == "" {
		return Attachment
	}
	ct := strings.ToLower(contentType)

	for _, t := range r.forceInline {
		if strings.Contains(ct, t) {
			return Inline
		}
	}
	for _, t := range r.forceDownload {
		if strings.Contains(ct, t) {
			return Attachment
		}
	}

	if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "text/") {
		return Inline
	}
	for _, t := range builtinInlineTypes {
		if strings.Contains(ct, t) {
			return Inline
		}
	}

	return Attachment
}
