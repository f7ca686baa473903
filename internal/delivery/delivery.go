// Package delivery hands a finished report to everything downstream of the
// pipeline: the in-process report store, the optional archive and the
// optional hand-off topic.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/JakeFAU/competitor-radar/internal/hash/sha256"
	"github.com/JakeFAU/competitor-radar/internal/logging"
	"github.com/JakeFAU/competitor-radar/internal/metrics"
	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// Requester identifies who asked for a report. It only travels in the
// hand-off envelope.
type Requester struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// Envelope is the message published for downstream renderers.
type Envelope struct {
	ReportID   string    `json:"reportId"`
	Requester  Requester `json:"requester"`
	ArchiveURI string    `json:"archiveUri,omitempty"`
	// ArchiveSHA256 is the hex digest of the archived bytes.
	ArchiveSHA256 string            `json:"archiveSha256,omitempty"`
	Report        radar.RadarReport `json:"report"`
}

// Receipt records where a report ended up.
type Receipt struct {
	ArchiveURI    string
	ArchiveSHA256 string
	MessageID     string
}

// Config controls archive naming and the hand-off topic.
type Config struct {
	Prefix      string
	ContentType string
	Topic       string
}

// Deliverer fans a report out to its configured sinks. Archive and
// publisher are optional.
type Deliverer struct {
	store     radar.ReportStore
	archive   radar.BlobStore
	publisher radar.Publisher
	hasher    *sha256.Hasher
	cfg       Config
	logger    *zap.Logger
}

// New creates a Deliverer. store is required; archive and publisher may be nil.
func New(store radar.ReportStore, archive radar.BlobStore, publisher radar.Publisher, cfg Config, logger *zap.Logger) *Deliverer {
	if cfg.ContentType == "" {
		cfg.ContentType = "application/json"
	}
	return &Deliverer{
		store:     store,
		archive:   archive,
		publisher: publisher,
		hasher:    sha256.New(),
		cfg:       cfg,
		logger:    logging.OrNop(logger).Named("delivery"),
	}
}

// ArchivePath returns the object path for a report ID.
func (d *Deliverer) ArchivePath(id string) string {
	return path.Join(d.cfg.Prefix, id+".json")
}

// Deliver stores the report, then archives and publishes it when configured.
// The report is always stored; archive and publish failures are returned
// joined so callers can log them without discarding the report.
func (d *Deliverer) Deliver(ctx context.Context, report radar.RadarReport, requester Requester) (Receipt, error) {
	d.store.Put(report)
	log := d.logger.With(zap.String("report_id", report.ID))

	var (
		receipt Receipt
		errs    []error
	)

	if d.archive != nil {
		uri, digest, err := d.archiveReport(ctx, report)
		if err != nil {
			metrics.ObserveHandoffFailure("archive")
			log.Warn("archive report failed", zap.Error(err))
			errs = append(errs, err)
		} else {
			receipt.ArchiveURI = uri
			receipt.ArchiveSHA256 = digest
			log.Info("report archived", zap.String("uri", uri))
		}
	}

	if d.publisher != nil && d.cfg.Topic != "" {
		envelope := Envelope{
			ReportID:      report.ID,
			Requester:     requester,
			ArchiveURI:    receipt.ArchiveURI,
			ArchiveSHA256: receipt.ArchiveSHA256,
			Report:        report,
		}
		id, err := d.publisher.Publish(ctx, d.cfg.Topic, envelope)
		if err != nil {
			metrics.ObserveHandoffFailure("publish")
			log.Warn("publish report failed", zap.String("topic", d.cfg.Topic), zap.Error(err))
			errs = append(errs, fmt.Errorf("publish report %s: %w", report.ID, err))
		} else {
			receipt.MessageID = id
			log.Info("report published", zap.String("topic", d.cfg.Topic), zap.String("message_id", id))
		}
	}

	return receipt, errors.Join(errs...)
}

func (d *Deliverer) archiveReport(ctx context.Context, report radar.RadarReport) (string, string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", "", fmt.Errorf("encode report %s: %w", report.ID, err)
	}
	uri, err := d.archive.PutObject(ctx, d.ArchivePath(report.ID), d.cfg.ContentType, bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("archive report %s: %w", report.ID, err)
	}
	return uri, d.hasher.Hash(data), nil
}
