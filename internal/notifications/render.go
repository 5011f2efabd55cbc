package notifications

import (
	"fmt"
	"html"
	"strings"

	"titledoctor/internal/jobs"
)

// ReportHTML renders the improved-titles report email body. All user and
// model supplied text is HTML-escaped.
func ReportHTML(channelName string, titles []jobs.ImprovedTitle) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
    h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
    .video-section { margin: 20px 0; padding: 15px; background-color: #f8f9fa; border-left: 4px solid #3498db; }
    .video-title { font-weight: bold; margin-bottom: 10px; }
    .original { color: #7f8c8d; text-decoration: line-through; }
    .improved { color: #27ae60; font-weight: bold; }
    .rationale { color: #555; font-style: italic; margin: 10px 0; }
    .video-link { color: #3498db; text-decoration: none; }
    .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd; color: #7f8c8d; text-align: center; }
  </style>
</head>
<body>
`)
	fmt.Fprintf(&b, "  <h1>YouTube Title Doctor - Improved Titles for %s</h1>\n", html.EscapeString(channelName))

	for i, title := range titles {
		b.WriteString(`  <div class="video-section">` + "\n")
		fmt.Fprintf(&b, `    <div class="video-title">Video %d</div>`+"\n", i+1)
		fmt.Fprintf(&b, `    <div class="original">Original Title: %s</div>`+"\n", html.EscapeString(title.Original))
		fmt.Fprintf(&b, `    <div class="improved">Improved Title: %s</div>`+"\n", html.EscapeString(title.Improved))
		fmt.Fprintf(&b, `    <div class="rationale">Why it&#39;s better: %s</div>`+"\n", html.EscapeString(title.Rationale))
		fmt.Fprintf(&b, `    <div><a href="%s" class="video-link">Watch the video</a></div>`+"\n", html.EscapeString(title.URL))
		b.WriteString("  </div>\n")
	}

	b.WriteString(`  <div class="footer">
    <p>Thank you for using YouTube Title Doctor!</p>
  </div>
</body>
</html>
`)
	return b.String()
}

// FailureHTML renders the failure notification email body.
func FailureHTML(message string) string {
	var b strings.Builder
	b.WriteString("<p>Hello,</p>\n")
	b.WriteString("<p>The request for YouTube title refactoring failed with the following error:</p>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(message))
	b.WriteString("<p>Please check the request and try again.</p>\n")
	b.WriteString("<p>Thank you for using YouTube Title Doctor.</p>\n")
	return b.String()
}
