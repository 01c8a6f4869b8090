package notify

import (
	"bytes"
	"text/template"
	"time"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

var funcs = template.FuncMap{
	"orNone": func(s string) string {
		if s == "" {
			return "not provided"
		}
		return s
	},
	"stamp": func(t time.Time) string { return t.UTC().Format(time.RFC1123) },
}

var adminNotice = template.Must(template.New("admin").Funcs(funcs).Parse(`New contact request received.

Name:         {{.FullName}}
Company:      {{orNone .Company}}
Email:        {{.Email}}
Phone:        {{orNone .Phone}}
Request type: {{.RequestType}}

Message:
{{.Message}}

---
Received: {{stamp .CreatedAt}}
Lead id:  {{.ID}}
`))

var visitorConfirmation = template.Must(template.New("visitor").Funcs(funcs).Parse(`Hello {{.FullName}},

Thank you for contacting us.

We received your message about: {{.RequestType}}

Our team will get back to you as soon as possible.

Best regards,
The Support Team
`))

// mailContent is a rendered subject and plain-text body.
type mailContent struct {
	Subject string
	Body    string
}

func renderAdminNotice(l domain.Lead) (mailContent, error) {
	var buf bytes.Buffer
	if err := adminNotice.Execute(&buf, l); err != nil {
		return mailContent{}, err
	}
	return mailContent{Subject: "New contact: " + l.FullName, Body: buf.String()}, nil
}

func renderVisitorConfirmation(l domain.Lead) (mailContent, error) {
	var buf bytes.Buffer
	if err := visitorConfirmation.Execute(&buf, l); err != nil {
		return mailContent{}, err
	}
	return mailContent{Subject: "We received your message", Body: buf.String()}, nil
}
