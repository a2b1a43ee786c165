package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/xavierca1/lead-system/internal/config"
	"github.com/xavierca1/lead-system/internal/infra/mail"
	"github.com/xavierca1/lead-system/internal/infra/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}
	if err := cfg.ValidateNotifier(); err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("falha ao conectar no RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	worker := queue.NewWorker(rabbitMQ.Ch, sender)

	if err := worker.Start(ctx, queue.QueueName); err != nil {
		log.Fatalf("worker parou: %v", err)
	}
	log.Println("notifier encerrado")
}
