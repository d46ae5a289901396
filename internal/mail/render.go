package mail

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// renderer converts Markdown bodies to HTML. Raw HTML in the source is not
// passed through.
var renderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderHTML converts a Markdown message body to HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("mail: render markdown: %w", err)
	}
	return buf.String(), nil
}

// Request turns the draft into a provider request with an HTML body.
func (d Draft) Request(from, replyTo string) (SendRequest, error) {
	html, err := RenderHTML(d.Body)
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{d.To},
		From:    from,
		Subject: d.Subject,
		HTML:    html,
		ReplyTo: replyTo,
	}, nil
}
