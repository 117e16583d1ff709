// Package mailer sends participants their QR entry code in batches, rate
// limited so the SMTP provider never throttles the account.
package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/pkg/logger"
	"github.com/lightera/bundokai/pkg/prom"
	"github.com/lightera/bundokai/pkg/worker"
	"golang.org/x/time/rate"
)

type ParticipantSource interface {
	ListWithoutEmail(ctx context.Context, emailType string, department string, limit int) ([]*model.Participant, error)
}

type EmailLogStore interface {
	Create(ctx context.Context, log *model.EmailLog) (*model.EmailLog, error)
}

type JobConfig struct {
	BatchSize  int
	RatePerSec float64
	Workers    int
	Department string
	// TrackingBaseURL is prepended to the open token to form the pixel
	// URL. Empty disables open tracking.
	TrackingBaseURL string
}

// Job drains the pending-email backlog. Delivery state lives in the
// email_logs table, so an interrupted run resumes where it stopped and a
// finished run finds nothing to do.
type Job struct {
	participants ParticipantSource
	emails       EmailLogStore
	sender       Sender
	config       JobConfig
	limiter      *rate.Limiter
}

func NewJob(participants ParticipantSource, emails EmailLogStore, sender Sender, config JobConfig) *Job {
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.RatePerSec <= 0 {
		config.RatePerSec = 1
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	return &Job{
		participants: participants,
		emails:       emails,
		sender:       sender,
		config:       config,
		limiter:      rate.NewLimiter(rate.Limit(config.RatePerSec), 1),
	}
}

type JobReport struct {
	Sent   int
	Failed int
}

// Run processes batches until the backlog is empty or ctx is cancelled.
func (j *Job) Run(ctx context.Context) (*JobReport, error) {
	report := &JobReport{}
	attempted := make(map[int64]struct{})

	for {
		pending, err := j.participants.ListWithoutEmail(ctx, model.EmailTypeQRDelivery, j.config.Department, j.config.BatchSize)
		if err != nil {
			return report, err
		}

		// Failed sends stay in the backlog query, so a participant whose
		// mailbox keeps rejecting would be fetched again every batch.
		// Each participant gets exactly one attempt per run.
		batch := make([]*model.Participant, 0, len(pending))
		for _, p := range pending {
			if _, seen := attempted[p.ID]; seen {
				continue
			}
			attempted[p.ID] = struct{}{}
			batch = append(batch, p)
		}
		if len(batch) == 0 {
			logger.Info("qr mail backlog drained", "sent", report.Sent, "failed", report.Failed)
			return report, nil
		}

		sent, failed := j.runBatch(ctx, batch)
		report.Sent += sent
		report.Failed += failed

		if err := ctx.Err(); err != nil {
			return report, err
		}

		// A full batch of failures usually means the relay is down.
		if sent == 0 {
			logger.Warn("entire batch failed, stopping run", "batch_size", len(batch))
			return report, nil
		}
	}
}

// runBatch fans the batch out over the worker pool. The rate limiter is
// shared, so total send rate stays bounded no matter how many workers run.
func (j *Job) runBatch(ctx context.Context, batch []*model.Participant) (sent, failed int) {
	var mu sync.Mutex
	var wg sync.WaitGroup

	manager := worker.NewWorkerManager(len(batch), j.config.Workers)
	manager.SetWorker(func(workerIndex int, job interface{}) {
		defer wg.Done()
		p := job.(*model.Participant)

		if err := j.sendOne(ctx, p); err != nil {
			logger.Error("qr mail send failed", "participant_id", p.ID, "error", err)
			mu.Lock()
			failed++
			mu.Unlock()
			return
		}
		mu.Lock()
		sent++
		mu.Unlock()
	})
	// Start blocks until the pool is told to exit, so it runs aside while
	// the batch is enqueued here.
	go func() { _ = manager.Start() }()
	defer manager.Exit()

	for _, p := range batch {
		wg.Add(1)
		manager.Enqueue(p)
	}
	wg.Wait()
	return sent, failed
}

// sendOne renders, rate-limits, sends and records one email. The log row
// is written for failures too, so resends can distinguish never-tried from
// failed.
func (j *Job) sendOne(ctx context.Context, p *model.Participant) error {
	token := uuid.NewString()

	trackingURL := ""
	if j.config.TrackingBaseURL != "" {
		trackingURL = j.config.TrackingBaseURL + "/t/open/" + token
	}

	msg, err := BuildQRMessage(p, trackingURL)
	if err != nil {
		return err
	}

	if err := j.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	sendErr := j.sender.Send(ctx, msg)
	prom.AddEmailSendDuration(time.Since(start).Seconds())

	status := model.EmailStatusSent
	if sendErr != nil {
		status = model.EmailStatusFailed
	}
	prom.IncEmailOutcome(status)

	_, logErr := j.emails.Create(ctx, &model.EmailLog{
		ParticipantID: p.ID,
		EmailType:     model.EmailTypeQRDelivery,
		Subject:       msg.Subject,
		SentAt:        time.Now(),
		Status:        status,
		OpenToken:     token,
	})
	if logErr != nil {
		logger.Error("email log write failed", "participant_id", p.ID, "error", logErr)
	}

	return sendErr
}
