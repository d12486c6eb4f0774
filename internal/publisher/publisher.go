// Package publisher drains the scheduled-post queue, preparing and posting
// one image at a time.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pupbiscuit/skydash/internal/bluesky"
	"github.com/pupbiscuit/skydash/internal/imageprep"
	"github.com/pupbiscuit/skydash/internal/metrics"
	"github.com/pupbiscuit/skydash/internal/schedule"
)

// Poster is the subset of the BlueSky client the publisher depends on.
type Poster interface {
	UploadBlob(ctx context.Context, data []byte, mimeType string) (*bluesky.BlobRef, error)
	CreateImagePost(ctx context.Context, text string, blob *bluesky.BlobRef, width, height int) (string, error)
}

// Queue is the subset of the schedule store the publisher depends on.
type Queue interface {
	Due(now time.Time) ([]schedule.Item, error)
	Remove(id string) error
}

// Failure records one post that could not be published this run.
type Failure struct {
	Item schedule.Item
	Err  error
}

// Summary reports what a single run accomplished.
type Summary struct {
	Published []schedule.Item
	Failed    []Failure
}

// Publisher publishes due scheduled posts strictly sequentially. Each
// success is removed from the schedule before the next post is considered;
// each failure is logged and skipped so one bad item never blocks the rest
// of the queue.
type Publisher struct {
	poster Poster
	queue  Queue
	budget int
	logger *slog.Logger
	m      *metrics.Metrics
}

// New creates a Publisher. budget is the upload byte budget passed to the
// image pipeline (0 means the pipeline default); m may be nil.
func New(poster Poster, queue Queue, budget int, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{poster: poster, queue: queue, budget: budget, logger: logger, m: m}
}

// Run publishes every post due at now, one at a time, and reports which
// succeeded and which failed.
func (p *Publisher) Run(ctx context.Context, now time.Time) (Summary, error) {
	due, err := p.queue.Due(now)
	if err != nil {
		return Summary{}, fmt.Errorf("load due posts: %w", err)
	}

	var summary Summary
	for _, item := range due {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := p.publishOne(ctx, item); err != nil {
			p.logger.Error("failed to publish scheduled post",
				"id", item.ID,
				"path", item.Path,
				"error", err,
			)
			p.observe("failed")
			summary.Failed = append(summary.Failed, Failure{Item: item, Err: err})
			continue
		}

		// Durably reflect the success before considering the next post.
		if err := p.queue.Remove(item.ID); err != nil {
			p.logger.Error("published but failed to remove from schedule", "id", item.ID, "error", err)
			summary.Failed = append(summary.Failed, Failure{Item: item, Err: err})
			continue
		}
		if err := os.Remove(item.Path); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to remove published image", "path", item.Path, "error", err)
		}

		p.logger.Info("published scheduled post", "id", item.ID, "path", item.Path)
		p.observe("published")
		summary.Published = append(summary.Published, item)
	}
	return summary, nil
}

func (p *Publisher) publishOne(ctx context.Context, item schedule.Item) error {
	raw, err := os.ReadFile(item.Path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	prepared, err := imageprep.Prepare(raw, p.budget)
	if err != nil {
		return fmt.Errorf("prepare image: %w", err)
	}

	blob, err := p.poster.UploadBlob(ctx, prepared.Data, "image/jpeg")
	if err != nil {
		return fmt.Errorf("upload blob: %w", err)
	}

	uri, err := p.poster.CreateImagePost(ctx, item.Text, blob, prepared.Width, prepared.Height)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	p.logger.Info("post created", "uri", uri, "width", prepared.Width, "height", prepared.Height)
	return nil
}

// RunLoop runs immediately, then repeats at the given interval until the
// context is cancelled.
func (p *Publisher) RunLoop(ctx context.Context, interval time.Duration) {
	p.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Publisher) runOnce(ctx context.Context) {
	summary, err := p.Run(ctx, time.Now().UTC())
	if err != nil {
		p.logger.Error("publish run failed", "error", err)
		return
	}
	if len(summary.Published) > 0 || len(summary.Failed) > 0 {
		p.logger.Info("publish run complete",
			"published", len(summary.Published),
			"failed", len(summary.Failed),
		)
	}
}

func (p *Publisher) observe(status string) {
	if p.m != nil {
		p.m.PublishOutcomes.WithLabelValues(status).Inc()
	}
}
