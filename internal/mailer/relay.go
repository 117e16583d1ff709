package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lightera/bundokai/pkg/logger"
	"github.com/valyala/fasthttp"
)

var ErrNoAvailableRelays = errors.New("no available mail relays")

// relaySendPath is the submit endpoint every relay exposes.
const relaySendPath = "/api/v1/mail/send"

type relayRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

type relayResponse struct {
	Accepted bool   `json:"accepted"`
	Queue    string `json:"queue,omitempty"`
	ErrorMsg string `json:"error_message,omitempty"`
}

type relay struct {
	name             string
	url              string
	client           *fasthttp.Client
	consecutiveFails atomic.Int32
	openUntil        atomic.Int64
}

// markFailure trips the relay open after failThreshold consecutive errors,
// sidelining it for cooldown.
func (r *relay) markFailure(threshold int32, cooldown time.Duration) {
	fails := r.consecutiveFails.Add(1)
	if fails >= threshold {
		r.openUntil.Store(time.Now().Add(cooldown).Unix())
		logger.Warn("mail relay sidelined", "relay", r.name, "consecutive_fails", fails, "cooldown", cooldown)
	}
}

func (r *relay) markSuccess() {
	r.consecutiveFails.Store(0)
}

func (r *relay) available() bool {
	return time.Now().Unix() > r.openUntil.Load()
}

type RelayConfig struct {
	PrimaryURL    string
	SecondaryURL  string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	FailThreshold int32
	Cooldown      time.Duration
}

// RelaySender submits mail to an HTTP relay service instead of speaking
// SMTP directly. The secondary relay takes over when the primary is down.
type RelaySender struct {
	config RelayConfig
	relays []*relay
}

func NewRelaySender(config RelayConfig) (*RelaySender, error) {
	if config.PrimaryURL == "" {
		return nil, errors.New("primary relay url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if config.FailThreshold <= 0 {
		config.FailThreshold = 5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}

	s := &RelaySender{config: config}
	for _, rc := range []struct{ name, url string }{
		{"primary", config.PrimaryURL},
		{"secondary", config.SecondaryURL},
	} {
		if rc.url == "" {
			continue
		}
		s.relays = append(s.relays, &relay{
			name: rc.name,
			url:  rc.url,
			client: &fasthttp.Client{
				ReadTimeout:         config.Timeout,
				WriteTimeout:        config.Timeout,
				MaxIdleConnDuration: 60 * time.Second,
			},
		})
		logger.Info("mail relay registered", "relay", rc.name, "url", rc.url)
	}

	return s, nil
}

// pick returns the first relay not sitting out a cooldown, preferring the
// primary.
func (s *RelaySender) pick() (*relay, error) {
	for _, r := range s.relays {
		if r.available() {
			return r, nil
		}
	}
	return nil, ErrNoAvailableRelays
}

func (s *RelaySender) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(relayRequest{
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: msg.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("marshal relay request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.RetryDelay):
			}
		}

		r, err := s.pick()
		if err != nil {
			lastErr = err
			continue
		}

		resp, err := s.submit(ctx, r, body)
		if err != nil {
			r.markFailure(s.config.FailThreshold, s.config.Cooldown)
			logger.Warn("relay submit failed, retrying", "relay", r.name, "attempt", attempt+1, "error", err)
			lastErr = err
			continue
		}

		r.markSuccess()
		if !resp.Accepted {
			return fmt.Errorf("relay rejected message: %s", resp.ErrorMsg)
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", s.config.MaxRetries+1, lastErr)
}

func (s *RelaySender) submit(ctx context.Context, r *relay, body []byte) (*relayResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url + relaySendPath)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.config.Timeout)
	}

	if err := r.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	}

	var out relayResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("unmarshal relay response: %w", err)
	}
	return &out, nil
}
