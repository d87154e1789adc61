// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/archive"
	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/debug"
	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/drain"
	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/logger"
	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/secrets"
	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/store"
	"github.com/Likkrid/ec-redis-acl-monitoring/pkg/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DrainOpts holds all configuration for a drain run
type DrainOpts struct {
	// Archive destination
	Bucket string
	Region string

	// Log store connection; the endpoint also drives source-name derivation
	RedisEndpoint string
	RedisPort     int
	RedisTLS      bool

	// SSM parameter names for the store credentials
	UserParam     string
	PasswordParam string

	// SourceName overrides the name derived from the endpoint
	SourceName string

	FetchLimit int

	// Interval between runs; 0 runs once and exits
	Interval time.Duration

	// DebugPort serves metrics/pprof when > 0
	DebugPort int
}

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Drain the ACL log to S3",
	Long: `Drain fetches the most recent ACL violation log entries from the
configured Redis cluster, archives them as a newline-delimited JSON object
in S3, then resets the source log.

With --interval 0 (the default) it runs a single cycle and exits, which
suits cron or an external scheduler. A non-zero --interval keeps the
process running and drains on a ticker until SIGINT/SIGTERM.`,
	Run: runDrain,
}

func init() {
	rootCmd.AddCommand(drainCmd)

	f := drainCmd.Flags()

	// Archive destination
	f.String("s3_bucket", "", "S3 bucket receiving archived batches. Required.")
	f.String("aws_region", "", "AWS region for SSM and S3. Required.")

	// Log store
	f.String("redis_endpoint", "", "Redis cluster endpoint host. Required.")
	f.Int("redis_port", 6379, "Redis port")
	f.Bool("redis_tls", true, "Use TLS for the Redis connection")

	// Credentials
	f.String("redis_user_param", "acl-log-cluster1-user", "SSM parameter holding the Redis username")
	f.String("redis_password_param", "acl-log-cluster1-pwd", "SSM parameter holding the Redis password")

	f.String("source_name", "", "Override the cluster name derived from the endpoint")
	f.Int("fetch_limit", drain.DefaultFetchLimit, "Maximum entries fetched per run")
	f.Duration("interval", 0, "Run on this interval instead of once (0 = run once)")
	f.Int("debug_port", 0, "Debug/metrics HTTP port (0 = disabled)")

	viper.BindPFlags(f)
}

func loadDrainOpts() DrainOpts {
	return DrainOpts{
		Bucket:        viper.GetString("s3_bucket"),
		Region:        viper.GetString("aws_region"),
		RedisEndpoint: viper.GetString("redis_endpoint"),
		RedisPort:     viper.GetInt("redis_port"),
		RedisTLS:      viper.GetBool("redis_tls"),
		UserParam:     viper.GetString("redis_user_param"),
		PasswordParam: viper.GetString("redis_password_param"),
		SourceName:    viper.GetString("source_name"),
		FetchLimit:    viper.GetInt("fetch_limit"),
		Interval:      viper.GetDuration("interval"),
		DebugPort:     viper.GetInt("debug_port"),
	}
}

func runDrain(cmd *cobra.Command, args []string) {
	utils.LoadConfiguration("acldrain")
	opts := loadDrainOpts()

	if opts.Bucket == "" {
		logger.Fatal().Msg("s3_bucket is required")
	}
	if opts.RedisEndpoint == "" {
		logger.Fatal().Msg("redis_endpoint is required")
	}
	if opts.Region == "" {
		logger.Fatal().Msg("aws_region is required")
	}

	// Validate source-name derivation at startup, not at first use.
	source := opts.SourceName
	if source == "" {
		var err error
		source, err = archive.SourceName(opts.RedisEndpoint)
		if err != nil {
			logger.Fatal().Err(err).Str("endpoint", opts.RedisEndpoint).Msg("cannot derive source name")
		}
	}

	ctx := context.Background()

	if err := drain.RegisterMetrics(debug.Registry()); err != nil {
		logger.Warn().Err(err).Msg("failed to register drain metrics")
	}
	if opts.DebugPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", opts.DebugPort)
			if err := debug.Serve(addr); err != nil {
				logger.Error().Err(err).Msg("debug server exited")
			}
		}()
	}

	provider, err := secrets.NewSSMProvider(ctx, opts.Region)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create ssm client")
	}
	username, err := provider.Get(ctx, opts.UserParam)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to fetch redis username")
	}
	password, err := provider.Get(ctx, opts.PasswordParam)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to fetch redis password")
	}

	st, err := store.New(ctx, store.Config{
		Addr:     net.JoinHostPort(opts.RedisEndpoint, strconv.Itoa(opts.RedisPort)),
		Username: username,
		Password: password,
		TLS:      opts.RedisTLS,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to log store")
	}
	defer st.Close()

	writer, err := archive.NewWriter(ctx, archive.WriterConfig{
		Bucket: opts.Bucket,
		Region: opts.Region,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create archive writer")
	}

	runner := drain.NewRunner(st, writer, drain.Config{
		Source:     source,
		FetchLimit: opts.FetchLimit,
	})

	if opts.Interval <= 0 {
		if err := runner.Run(ctx); err != nil {
			logger.Fatal().Err(err).Msg("drain run failed")
		}
		return
	}

	logger.Info().
		Dur("interval", opts.Interval).
		Str("source", source).
		Msg("starting drain loop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	if err := runner.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("drain run failed")
	}
	for {
		select {
		case <-ticker.C:
			if err := runner.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("drain run failed")
			}
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
			return
		}
	}
}
