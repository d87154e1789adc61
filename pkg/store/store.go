// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

// Package store wraps the Redis connection and the two ACL log commands
// the drain depends on.
package store

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"time"

	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Config configures the connection to the log store.
type Config struct {
	// Addr is the Redis server address (e.g., "localhost:6379").
	Addr string

	// Username and Password authenticate against the server's ACL users.
	Username string
	Password string

	// TLS enables encrypted transport.
	TLS bool

	// DialTimeout is the connection timeout (default 5s).
	DialTimeout time.Duration

	// ReadTimeout is the read timeout (default 3s).
	ReadTimeout time.Duration

	// WriteTimeout is the write timeout (default 3s).
	WriteTimeout time.Duration
}

// Store is a Redis client scoped to ACL log operations. Construct once per
// process; the connection may be reused across invocations.
type Store struct {
	client *redis.Client
}

// New connects to the log store and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}

	opts := &redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		// RESP2 keeps ACL LOG records as flat alternating token lists;
		// under RESP3 (the go-redis default) Redis 7+ replies with one
		// map per record instead.
		Protocol: 2,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Bool("tls", cfg.TLS).
		Msg("connected to log store")

	return &Store{client: client}, nil
}

// FetchLog returns up to limit of the most recent ACL log records, each as
// the raw alternating field/value token list the server replies with.
func (s *Store) FetchLog(ctx context.Context, limit int) ([][]string, error) {
	res, err := s.client.Do(ctx, "acl", "log", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("acl log: %w", err)
	}

	reply, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("acl log: unexpected reply type %T", res)
	}

	raw := make([][]string, 0, len(reply))
	for i, item := range reply {
		tokens, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("acl log: record %d: %w", i, err)
		}
		raw = append(raw, tokens)
	}
	return raw, nil
}

// decodeRecord flattens one ACL LOG record into its alternating
// field-name/field-value token list. RESP2 delivers the record as an array
// already in that shape; RESP3 delivers a map, which is flattened back to
// adjacent key/value pairs.
func decodeRecord(v interface{}) ([]string, error) {
	switch record := v.(type) {
	case []interface{}:
		tokens := make([]string, 0, len(record))
		for _, tok := range record {
			tokens = append(tokens, stringify(tok))
		}
		return tokens, nil
	case map[interface{}]interface{}:
		tokens := make([]string, 0, len(record)*2)
		for key, value := range record {
			tokens = append(tokens, stringify(key), stringify(value))
		}
		return tokens, nil
	default:
		return nil, fmt.Errorf("unexpected record type %T", v)
	}
}

// Reset clears the server's ACL log buffer.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.client.Do(ctx, "acl", "log", "reset").Err(); err != nil {
		return fmt.Errorf("acl log reset: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// stringify renders a RESP reply element as its textual form. Counts and
// timestamps come back as integers; everything downstream treats fields
// as strings.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
