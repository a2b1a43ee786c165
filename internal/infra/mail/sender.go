package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/lead-system/internal/entity"
	"github.com/xavierca1/lead-system/internal/infra/queue"
)

//go:embed templates/*.txt
var templatesFS embed.FS

var stageTemplate = template.Must(template.ParseFS(templatesFS, "templates/stage_change.txt"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// NotifyStageChange envia o aviso de fechamento para o responsável pelo lead.
func (s *EmailSender) NotifyStageChange(ctx context.Context, event queue.StageChangedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.buildMessage(event)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) buildMessage(event queue.StageChangedEvent) (*gomail.Message, error) {
	stage, _ := entity.ParseStage(event.To)
	data := StageEmailData{
		LeadName:   event.LeadName,
		StageLabel: stage.Label(),
		Won:        stage == entity.StageWon,
		ChangedBy:  event.ChangedBy,
		ChangedAt:  event.ChangedAt.Format("02/01/2006 15:04"),
	}
	if event.Value != nil {
		data.Value = fmt.Sprintf("R$ %.2f", *event.Value)
	}

	var body bytes.Buffer
	if err := stageTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", event.Owner)
	m.SetHeader("Subject", fmt.Sprintf("Lead %s: %s", event.LeadName, stage.Label()))
	m.SetBody("text/plain", body.String())
	return m, nil
}
