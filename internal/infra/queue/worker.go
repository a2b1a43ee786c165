package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/lead-system/internal/entity"
)

// Notifier avisa o responsável quando um lead fecha (ganho ou perdido).
type Notifier interface {
	NotifyStageChange(ctx context.Context, event StageChangedEvent) error
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  consumer
	Notifier Notifier
}

func NewWorker(ch *amqp.Channel, notifier Notifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

// Start consome a fila até o contexto ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf("[WORKER] aguardando eventos na fila '%s'", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal do RabbitMQ fechado")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event StageChangedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Printf("[WORKER] JSON inválido: %s", err)
		// mensagem malformada nunca vai dar certo: manda direto pra DLQ
		d.Nack(false, false)
		return
	}

	if err := w.Process(ctx, event); err != nil {
		log.Printf("[WORKER] falha ao notificar lead %s: %s", event.LeadID, err)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

// Process notifica apenas transições para estágios terminais.
func (w *Worker) Process(ctx context.Context, event StageChangedEvent) error {
	stage, ok := entity.ParseStage(event.To)
	if !ok || !stage.Terminal() || w.Notifier == nil {
		return nil
	}
	log.Printf("[WORKER] lead %s (%s) -> %s, avisando %s", event.LeadID, event.LeadName, stage, event.Owner)
	return w.Notifier.NotifyStageChange(ctx, event)
}
