package notifier

import (
	"bpm-backend/models"
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/pkg/errors"
)

const emailLayout = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"></head>
<body style="font-family: system-ui, sans-serif; line-height: 1.5; color: #333; max-width: 560px; margin: 0 auto; padding: 24px;">
  <div style="background: #f8f9fa; border-radius: 8px; padding: 20px; margin-bottom: 16px;">
    <h2 style="margin: 0 0 12px 0; font-size: 18px;">{{.Title}}</h2>
    <p style="margin: 0 0 8px 0;">Hello {{.Name}},</p>
    {{template "content" .}}
    <p style="margin: 12px 0 0 0;"><a href="{{.URL}}" style="color: #2563eb;">View process</a></p>
  </div>
  <p style="font-size: 12px; color: #666;">
    <a href="{{.SiteURL}}" style="color: #2563eb;">Open BPM</a>
  </p>
</body>
</html>`

var emailContent = map[models.NotifyEventKind]string{
	models.NotifyTaskAssigned: `<p style="margin: 0 0 8px 0;">You have been assigned to a task in the following process:</p>
    <ul style="margin: 8px 0; padding-left: 20px;">
      <li><strong>Process:</strong> {{.ProcessName}}</li>
      <li><strong>Task:</strong> {{.TaskName}}</li>
    </ul>`,
	models.NotifyTaskStarted: `<p style="margin: 0 0 8px 0;">A task you can act on has been started:</p>
    <ul style="margin: 8px 0; padding-left: 20px;">
      <li><strong>Process:</strong> {{.ProcessName}}</li>
      <li><strong>Task:</strong> {{.TaskName}}</li>
      <li><strong>Started by:</strong> {{.ActorName}}</li>
    </ul>`,
	models.NotifyTaskApproved: `<p style="margin: 0 0 8px 0;">A task in a process you are involved in has been approved:</p>
    <ul style="margin: 8px 0; padding-left: 20px;">
      <li><strong>Process:</strong> {{.ProcessName}}</li>
      <li><strong>Task:</strong> {{.TaskName}}</li>
      <li><strong>Approved by:</strong> {{.ActorName}}</li>
    </ul>`,
	models.NotifyTaskRejected: `<p style="margin: 0 0 8px 0;">A task in a process you are involved in has been rejected:</p>
    <ul style="margin: 8px 0; padding-left: 20px;">
      <li><strong>Process:</strong> {{.ProcessName}}</li>
      <li><strong>Task:</strong> {{.TaskName}}</li>
      <li><strong>Rejected by:</strong> {{.ActorName}}</li>
      {{if .Comment}}<li><strong>Comment:</strong> {{.Comment}}</li>{{end}}
    </ul>`,
	models.NotifyProcessCompleted: `<p style="margin: 0 0 8px 0;">The following process has been completed:</p>
    <p style="margin: 8px 0;"><strong>{{.ProcessName}}</strong></p>`,
}

var eventTitle = map[models.NotifyEventKind]string{
	models.NotifyTaskAssigned:     "New task assigned",
	models.NotifyTaskStarted:      "Task in progress",
	models.NotifyTaskApproved:     "Task approved",
	models.NotifyTaskRejected:     "Task rejected",
	models.NotifyProcessCompleted: "Process completed",
}

var emailTemplates = parseTemplates()

func parseTemplates() map[models.NotifyEventKind]*template.Template {
	result := map[models.NotifyEventKind]*template.Template{}
	for kind, content := range emailContent {
		tmpl := template.Must(template.New(string(kind)).Parse(emailLayout))
		template.Must(tmpl.New("content").Parse(content))
		result[kind] = tmpl
	}
	return result
}

type emailData struct {
	Title       string
	Name        string
	ProcessName string
	TaskName    string
	ActorName   string
	Comment     string
	URL         string
	SiteURL     string
}

type Email struct {
	Subject string
	HTML    string
}

func InstanceLink(siteURL, instanceID string) string {
	return fmt.Sprintf("%s/process-instances/%s", strings.TrimRight(siteURL, "/"), instanceID)
}

// BuildEmail письмо для одного получателя, значения экранируются шаблоном
func BuildEmail(event models.NotifyEvent, recipient models.NotifyRecipient, siteURL string) (Email, error) {
	tmpl, ok := emailTemplates[event.Kind]
	if !ok {
		return Email{}, errors.Errorf("unknown event kind %v", event.Kind)
	}
	data := emailData{
		Title:       eventTitle[event.Kind],
		Name:        recipient.Name,
		ProcessName: event.ProcessName,
		TaskName:    event.TaskName,
		ActorName:   event.ActorName,
		Comment:     event.Comment,
		URL:         InstanceLink(siteURL, event.InstanceID),
		SiteURL:     siteURL,
	}
	if data.Name == "" {
		data.Name = recipient.Email
	}
	body := bytes.Buffer{}
	err := tmpl.Execute(&body, data)
	if err != nil {
		return Email{}, errors.Wrap(err, "ошибка формирования письма")
	}
	return Email{
		Subject: Subject(event),
		HTML:    body.String(),
	}, nil
}

func Subject(event models.NotifyEvent) string {
	switch event.Kind {
	case models.NotifyTaskAssigned:
		return fmt.Sprintf("[BPM] Task assigned: %s – %s", event.TaskName, event.ProcessName)
	case models.NotifyTaskStarted:
		return fmt.Sprintf("[BPM] Task started: %s – %s", event.TaskName, event.ProcessName)
	case models.NotifyTaskApproved:
		return fmt.Sprintf("[BPM] Task approved: %s – %s", event.TaskName, event.ProcessName)
	case models.NotifyTaskRejected:
		return fmt.Sprintf("[BPM] Task rejected: %s – %s", event.TaskName, event.ProcessName)
	case models.NotifyProcessCompleted:
		return fmt.Sprintf("[BPM] Process completed: %s", event.ProcessName)
	}
	return "[BPM] " + string(event.Kind)
}

// PushText заголовок и текст уведомления в приложении
func PushText(event models.NotifyEvent) (title, msg string) {
	title = eventTitle[event.Kind]
	switch event.Kind {
	case models.NotifyProcessCompleted:
		msg = event.ProcessName
	case models.NotifyTaskRejected:
		msg = fmt.Sprintf("%s: %s", event.ProcessName, event.TaskName)
		if event.Comment != "" {
			msg += " (" + event.Comment + ")"
		}
	default:
		msg = fmt.Sprintf("%s: %s", event.ProcessName, event.TaskName)
	}
	return title, msg
}
