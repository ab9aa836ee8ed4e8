package service

import (
	"io"
	"net/http"
	"strings"

	"passthrough-proxy-go/internal/model"
	"passthrough-proxy-go/internal/policy"
	"passthrough-proxy-go/internal/statuspage"
)

// transform turns the raw upstream response into the response returned to
// the client.
//
// Statuses outside the allow-list become a bodiless response (for the
// protocol-mandated bodiless codes) or a rendered error page mirroring the
// upstream status. Allow-listed responses pass through with a fresh header
// map: charset appended to bare text/* content types and Content-Disposition
// set from the disposition rules. Bodies of bodiless statuses are dropped,
// never streamed.
func (s *ProxyService) transform(resp *model.ProxyResponse) *model.ProxyResponse {
	if !s.rules.StatusAllowed(resp.StatusCode) {
		closeBody(resp.Body)

		if policy.IsBodilessStatus(resp.StatusCode) {
			s.countErrorPage("bodiless")
			return &model.ProxyResponse{
				StatusCode: resp.StatusCode,
				Header:     make(http.Header),
			}
		}

		s.logger.Debug("upstream status not allow-listed, serving error page",
			"status", resp.StatusCode,
		)
		s.countErrorPage("status")
		return statuspage.Render(resp.StatusCode, "")
	}

	// Headers are rebuilt as a new map so the returned response never
	// aliases the upstream one.
	header := resp.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	body := resp.Body
	if policy.IsBodilessStatus(resp.StatusCode) {
		closeBody(resp.Body)
		body = nil
	}

	contentType := withCharset(header.Get("Content-Type"))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	disposition := s.rules.Decide(contentType)
	header.Set("Content-Disposition", string(disposition))
	s.countDisposition(disposition)

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     header,
		Body:       body,
	}
}

// withCharset appends "; charset=utf-8" to text/* content types that lack a
// charset parameter. Applying it twice is a no-op.
func withCharset(contentType string) string {
	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "charset") {
		return contentType + "; charset=utf-8"
	}
	return contentType
}

func closeBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
