package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lightera/bundokai/internal/config"
	"github.com/lightera/bundokai/internal/mailer"
	"github.com/lightera/bundokai/internal/repository"
	"github.com/lightera/bundokai/pkg/logger"
	"github.com/lightera/bundokai/pkg/pg"
	"github.com/lightera/bundokai/pkg/prom"
)

// Sends the QR entry email to every participant that has not received one
// yet. Safe to re-run: delivery state lives in the email_logs table.
func main() {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	db, err := pg.CreateReadWrite(writeConf, writeConf, config.Get().AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	if config.Get().PromNamespace != "" {
		if err := prom.Create("", config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed creating metrics registry", "error", err)
		}
	}

	sender, err := buildSender()
	if err != nil {
		logger.Error("failed building mail sender", "error", err)
		return
	}

	participantRepo := repository.NewParticipantRepository(db)
	emailRepo := repository.NewEmailRepository(db)

	job := mailer.NewJob(participantRepo, emailRepo, sender, mailer.JobConfig{
		BatchSize:       config.Get().MailerBatchSize,
		RatePerSec:      config.Get().MailerRatePerSec,
		Workers:         config.Get().MailerWorkerCount,
		Department:      config.Get().MailerDepartment,
		TrackingBaseURL: config.Get().AppBaseUrl,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Warn("signal received, finishing current batch")
		cancel()
	}()

	report, err := job.Run(ctx)
	if err != nil {
		logger.Error("mailer run aborted", "sent", report.Sent, "failed", report.Failed, "error", err)
		return
	}
	logger.Info("mailer run complete", "sent", report.Sent, "failed", report.Failed)
}

// buildSender picks the transport: dry-run, HTTP relay when configured,
// plain SMTP otherwise.
func buildSender() (mailer.Sender, error) {
	if config.Get().MailerDryRun {
		return mailer.DryRunSender{}, nil
	}
	if config.Get().RelayPrimaryUrl != "" {
		return mailer.NewRelaySender(mailer.RelayConfig{
			PrimaryURL:   config.Get().RelayPrimaryUrl,
			SecondaryURL: config.Get().RelaySecondaryUrl,
			MaxRetries:   2,
		})
	}
	return mailer.NewSMTPSender(
		config.Get().SmtpHost,
		config.Get().SmtpPort,
		config.Get().SmtpUsername,
		config.Get().SmtpPassword,
		config.Get().SmtpFrom,
	), nil
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
