package render

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"
)

// Email wraps another renderer's output in an RFC 5322 message so reports can
// be piped straight into sendmail. It renders the message, it does not
// deliver it.
type Email struct {
	From    string
	To      []string
	Subject string

	// Body renders the message body. Defaults to the text format.
	Body Renderer
}

func (e *Email) ContentType() string {
	return "message/rfc822"
}

func (e *Email) Render(w io.Writer, report *Report) error {
	body := e.Body
	if body == nil {
		body = &Text{}
	}

	var content bytes.Buffer
	if err := body.Render(&content, report); err != nil {
		return err
	}

	subject := e.Subject
	if subject == "" {
		subject = fmt.Sprintf("Buildbot status for %s", report.Master)
	}

	date := report.GeneratedAt
	if date.IsZero() {
		date = time.Now()
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", date.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: %s\r\n", body.ContentType())
	msg.WriteString("\r\n")
	msg.WriteString(crlf(content.String()))

	_, err := w.Write(msg.Bytes())
	return err
}

// crlf normalizes line endings to CRLF as required on the wire.
func crlf(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
