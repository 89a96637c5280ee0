package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ziadkadry99/scopedoc/internal/archive"
	"github.com/ziadkadry99/scopedoc/internal/logging"
)

// Config controls webhook delivery. An empty WebhookURL disables it.
type Config struct {
	WebhookURL  string
	MaxAttempts int
	BaseDelay   time.Duration
}

// Dispatcher archives documents and notifies the webhook.
type Dispatcher struct {
	store   *Store
	archive archive.Store
	cfg     Config
	client  *http.Client
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a Dispatcher. store and arch may be nil.
func NewDispatcher(store *Store, arch archive.Store, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Dispatcher{
		store:   store,
		archive: arch,
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logging.OrDiscard(logger),
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Deliver archives d and POSTs it to the webhook. Every channel is
// attempted; the returned error joins the failures.
func (d *Dispatcher) Deliver(ctx context.Context, del Delivery) ([]Record, error) {
	var (
		records []Record
		errs    []error
	)

	locations := map[string]string{}
	if d.archive != nil {
		rec, err := d.archiveDocument(ctx, del, locations)
		records = append(records, d.save(ctx, rec))
		if err != nil {
			errs = append(errs, err)
		}
	}

	if d.cfg.WebhookURL != "" {
		rec, err := d.notify(ctx, del, locations)
		records = append(records, d.save(ctx, rec))
		if err != nil {
			errs = append(errs, err)
		}
	}

	return records, errors.Join(errs...)
}

func (d *Dispatcher) archiveDocument(ctx context.Context, del Delivery, locations map[string]string) (Record, error) {
	rec := Record{
		SessionID:       del.SessionID,
		DocumentVersion: del.Version,
		Channel:         ChannelArchive,
		Attempts:        1,
		Status:          StatusDelivered,
	}
	files := []struct {
		ext, contentType string
		data             []byte
	}{
		{"md", "text/markdown; charset=utf-8", []byte(del.Markdown)},
		{"html", "text/html; charset=utf-8", del.HTML},
		{"json", "application/json", del.JSON},
	}
	for _, f := range files {
		if f.data == nil {
			continue
		}
		name := fmt.Sprintf("v%d/scope.%s", del.Version, f.ext)
		loc, err := d.archive.Put(ctx, del.SessionID, name, f.data, f.contentType)
		if err != nil {
			rec.Status = StatusFailed
			rec.Error = err.Error()
			d.logger.Error("delivery: archive failed", "session", del.SessionID, "object", name, "error", err)
			return rec, fmt.Errorf("archiving %s: %w", name, err)
		}
		locations[f.ext] = loc
		if f.ext == "md" {
			rec.Target = loc
		}
	}
	return rec, nil
}

// notify POSTs the payload, retrying network errors, 429 and 5xx responses
// with exponential backoff. Other 4xx responses are final.
func (d *Dispatcher) notify(ctx context.Context, del Delivery, locations map[string]string) (Record, error) {
	rec := Record{
		SessionID:       del.SessionID,
		DocumentVersion: del.Version,
		Channel:         ChannelWebhook,
		Target:          d.cfg.WebhookURL,
	}
	payload, err := json.Marshal(WebhookPayload{
		Event:        EventDocumentGenerated,
		SessionID:    del.SessionID,
		Version:      del.Version,
		ClientName:   del.ClientName,
		ClientEmail:  del.ClientEmail,
		Score:        del.Score,
		Complete:     del.Complete,
		ProjectTotal: del.ProjectTotal,
		Locations:    locations,
		Markdown:     del.Markdown,
	})
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		return rec, fmt.Errorf("encoding webhook payload: %w", err)
	}

	delay := d.cfg.BaseDelay
	for attempt := 1; ; attempt++ {
		rec.Attempts = attempt
		retry, err := d.SendWebhook(ctx, d.cfg.WebhookURL, payload)
		if err == nil {
			rec.Status = StatusDelivered
			rec.Error = ""
			return rec, nil
		}
		rec.Status = StatusFailed
		rec.Error = err.Error()
		d.logger.Warn("delivery: webhook attempt failed",
			"session", del.SessionID, "attempt", attempt, "retry", retry, "error", err)
		if !retry || attempt >= d.cfg.MaxAttempts {
			return rec, fmt.Errorf("webhook after %d attempt(s): %w", attempt, err)
		}
		if err := d.sleep(ctx, delay); err != nil {
			rec.Error = err.Error()
			return rec, fmt.Errorf("webhook: %w", err)
		}
		delay *= 2
	}
}

// SendWebhook POSTs payload to url once and reports whether a failure is
// worth retrying.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Scopedoc-Event", EventDocumentGenerated)

	resp, err := d.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retryable, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return false, nil
}

func (d *Dispatcher) save(ctx context.Context, rec Record) Record {
	if d.store == nil {
		return rec
	}
	saved, err := d.store.Save(ctx, rec)
	if err != nil {
		d.logger.Error("delivery: recording outcome failed", "session", rec.SessionID, "error", err)
		return rec
	}
	return saved
}
