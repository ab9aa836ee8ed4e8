// Package statuspage renders minimal HTML error documents for responses the
// proxy refuses to pass through.
package statuspage

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"passthrough-proxy-go/internal/model"
)

var pageTemplate = template.Must(template.New("statuspage").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.StatusCode}} {{.StatusText}}</title>
</head>
<body>
<h1>{{.StatusCode}} {{.StatusText}}</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
</body>
</html>
`))

type pageData struct {
	StatusCode int
	StatusText string
	Message    string
}

// Render builds an HTML error response for statusCode. A non-empty message
// marks a configuration error and forces the status to 500 regardless of the
// code passed in.
func Render(statusCode int, message string) *model.ProxyResponse {
	if message != "" {
		statusCode = http.StatusInternalServerError
	}

	var buf bytes.Buffer
	data := pageData{
		StatusCode: statusCode,
		StatusText: http.StatusText(statusCode),
		Message:    message,
	}
	// The template is static; Execute can only fail on a writer error, which
	// bytes.Buffer never returns.
	_ = pageTemplate.Execute(&buf, data)

	header := make(http.Header)
	header.Set("Content-Type", "text/html; charset=utf-8")
	header.Set("Content-Length", strconv.Itoa(buf.Len()))

	return &model.ProxyResponse{
		StatusCode: statusCode,
		Header:     header,
		Body:       io.NopCloser(&buf),
	}
}
