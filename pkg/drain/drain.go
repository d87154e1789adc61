// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

// Package drain sequences one fetch-parse-archive-reset cycle against the
// log store.
package drain

import (
	"context"
	"fmt"
	"time"

	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/acllog"
	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/archive"
	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/logger"
)

// DefaultFetchLimit caps how many entries one run requests from the store.
// A backlog larger than this is drained across successive runs.
const DefaultFetchLimit = 128

// LogSource is the log store as the runner sees it.
type LogSource interface {
	FetchLog(ctx context.Context, limit int) ([][]string, error)
	Reset(ctx context.Context) error
}

// ObjectWriter is the archive destination as the runner sees it.
type ObjectWriter interface {
	Put(ctx context.Context, key string, body []byte) error
}

// Config configures a Runner.
type Config struct {
	// Source names the cluster the log is drained from; it prefixes every
	// archive key.
	Source string

	// FetchLimit caps entries per run (default DefaultFetchLimit).
	FetchLimit int
}

// Runner drains the ACL log once per Run call. It holds no state between
// runs and may be reused across invocations.
type Runner struct {
	source LogSource
	writer ObjectWriter
	cfg    Config

	now func() time.Time
}

// NewRunner creates a Runner over the given collaborators.
func NewRunner(source LogSource, writer ObjectWriter, cfg Config) *Runner {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	return &Runner{
		source: source,
		writer: writer,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run executes one drain cycle:
//
//	fetch -> parse -> format -> archive -> reset
//
// A fetch failure degrades to a no-op rather than failing the run; the
// entries stay in the store for the next attempt. A parse or archive
// failure aborts the run before the reset, so nothing is lost. A reset
// failure is logged but does not fail the run: the batch is already
// durable, at worst the next run re-archives the same entries.
func (r *Runner) Run(ctx context.Context) error {
	log := logger.Ctx(ctx)

	raw, err := r.source.FetchLog(ctx, r.cfg.FetchLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch acl log, skipping run")
		ErrorsTotal.WithLabelValues("fetch").Inc()
		RunsTotal.WithLabelValues("degraded").Inc()
		return nil
	}

	if len(raw) == 0 {
		log.Info().Msg("no acl log entries to process")
		RunsTotal.WithLabelValues("no_op").Inc()
		return nil
	}

	entries := make([]acllog.Entry, 0, len(raw))
	for i, tokens := range raw {
		entry, err := acllog.ParseEntry(tokens)
		if err != nil {
			ErrorsTotal.WithLabelValues("parse").Inc()
			RunsTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("parse entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	body, err := acllog.FormatBatch(entries)
	if err != nil {
		RunsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("format batch: %w", err)
	}

	key := archive.Key(r.cfg.Source, r.now())

	if err := r.writer.Put(ctx, key, body); err != nil {
		ErrorsTotal.WithLabelValues("write").Inc()
		RunsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("archive batch: %w", err)
	}

	log.Info().
		Int("entries", len(entries)).
		Str("key", key).
		Msg("archived acl log batch")

	if err := r.source.Reset(ctx); err != nil {
		// The batch is archived; losing the reset only risks duplicate
		// archival on the next run.
		log.Error().Err(err).Msg("failed to reset acl log after archival")
		ErrorsTotal.WithLabelValues("reset").Inc()
	} else {
		log.Info().Msg("acl log reset")
	}

	EntriesArchivedTotal.Add(float64(len(entries)))
	RunsTotal.WithLabelValues("archived").Inc()
	return nil
}
