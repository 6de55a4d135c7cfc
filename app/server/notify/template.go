package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"portfolio-backend/app/server/types"
	"time"
)

// html/template 会转义留言者提交的内容
var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New Contact Form Submission</h2>
{{- if .IsSpam }}
<p><strong>Flagged as possible spam</strong></p>
{{- end }}
<p><strong>From:</strong> {{ .Name }} ({{ .Email }})</p>
{{- if .Company }}
<p><strong>Company:</strong> {{ .Company }}</p>
{{- end }}
{{- if .Phone }}
<p><strong>Phone:</strong> {{ .Phone }}</p>
{{- end }}
<p><strong>Subject:</strong> {{ .Subject }}</p>
<p><strong>Message:</strong></p>
<p>{{ .Message }}</p>
<p><strong>Project Type:</strong> {{ .ProjectType }}</p>
<p><strong>Budget:</strong> {{ .Budget }}</p>
<p><strong>Timeline:</strong> {{ .Timeline }}</p>
<p><strong>Submitted:</strong> {{ .Submitted }}</p>
`))

// Render 生成发给管理员的通知邮件
func Render(job *types.NotificationJob, to string) (*Message, error) {
	buf := bytes.NewBuffer(nil)
	if err := contactTemplate.Execute(buf, struct {
		*types.NotificationJob
		Submitted string
	}{
		NotificationJob: job,
		Submitted:       job.SubmittedAt.UTC().Format(time.RFC1123),
	}); err != nil {
		return nil, fmt.Errorf("render contact template: %w", err)
	}

	return &Message{
		To:      to,
		ReplyTo: job.Email,
		Subject: "New Contact Form Submission: " + job.Subject,
		HTML:    buf.String(),
	}, nil
}
