package email

import (
	"strings"

	"gopkg.in/gomail.v2"
)

// Message is a single outbound mail. The builders in templates.go
// produce ready-to-send values; hand-built messages need at least one
// recipient, a subject, and a body.
type Message struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}

// compose renders m into a gomail message addressed from the configured
// sender. Validation failures come back as ErrInvalidMessage.
func compose(from string, m Message) (*gomail.Message, error) {
	out := gomail.NewMessage()

	if from = strings.TrimSpace(from); from == "" {
		return nil, ErrInvalidMessage{Reason: "sender address is not configured"}
	}
	out.SetHeader("From", from)

	to := cleanAddrs(m.To)
	cc := cleanAddrs(m.CC)
	bcc := cleanAddrs(m.BCC)
	if len(to)+len(cc)+len(bcc) == 0 {
		return nil, ErrInvalidMessage{Reason: "no recipients"}
	}
	if len(to) > 0 {
		out.SetHeader("To", to...)
	}
	if len(cc) > 0 {
		out.SetHeader("Cc", cc...)
	}
	if len(bcc) > 0 {
		out.SetHeader("Bcc", bcc...)
	}

	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		return nil, ErrInvalidMessage{Reason: "subject is empty"}
	}
	out.SetHeader("Subject", subject)

	for k, v := range m.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			out.SetHeader(k, v)
		}
	}

	hasText := strings.TrimSpace(m.TextBody) != ""
	hasHTML := strings.TrimSpace(m.HTMLBody) != ""
	switch {
	case hasText && hasHTML:
		out.SetBody("text/plain", m.TextBody)
		out.AddAlternative("text/html", m.HTMLBody)
	case hasHTML:
		out.SetBody("text/html", m.HTMLBody)
	case hasText:
		out.SetBody("text/plain", m.TextBody)
	default:
		return nil, ErrInvalidMessage{Reason: "message has no body"}
	}

	return out, nil
}

func cleanAddrs(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
