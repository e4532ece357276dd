package service

import (
	"bytes"
	"errors"
	"html/template"

	"github.com/ren-jimpo/shift-management-app-sub000/pkg/mail"
)

// ── email bodies ──

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "shift_confirmed"}}<p>{{.Name}},</p>
<p>Your shift on <strong>{{.Date}}</strong> at <strong>{{.Store}}</strong> ({{.Start}}–{{.End}}) has been confirmed.</p>
<p><a href="{{.BaseURL}}/shifts">View your schedule</a></p>{{end}}
{{define "shift_reminder"}}<p>{{.Name}},</p>
<p>Reminder: you are working today ({{.Date}}) at <strong>{{.Store}}</strong>, {{.Start}}–{{.End}}.</p>{{end}}
{{define "time_off_response"}}<p>{{.Name}},</p>
<p>Your time-off request for <strong>{{.Date}}</strong> was <strong>{{.Status}}</strong>.</p>{{end}}
{{define "emergency_request"}}<p>{{.Name}},</p>
<p>A substitute is needed on <strong>{{.Date}}</strong> at <strong>{{.Store}}</strong> ({{.Start}}–{{.End}}).</p>
<p>{{.Reason}}</p>
<p><a href="{{.BaseURL}}/emergency">Volunteer</a></p>{{end}}
{{define "emergency_filled"}}<p>{{.Name}},</p>
<p>You have been assigned the shift on <strong>{{.Date}}</strong> at <strong>{{.Store}}</strong> ({{.Start}}–{{.End}}). Thank you for covering.</p>{{end}}
{{define "test"}}<p>This is a test message from the shift management service.</p>{{end}}
`))

type mailData struct {
	Name    string
	Date    string
	Store   string
	Start   string
	End     string
	Status  string
	Reason  string
	BaseURL string
}

var errNoRecipient = errors.New("recipient has no email address")

func renderMail(to, subject, name string, data mailData) (mail.Message, error) {
	if to == "" {
		return mail.Message{}, errNoRecipient
	}
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return mail.Message{}, err
	}
	return mail.Message{To: []string{to}, Subject: subject, HTML: buf.String()}, nil
}
