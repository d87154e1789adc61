// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive derives archive object keys and writes batches to S3.
package archive

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidEndpoint = errors.New("endpoint needs at least two dot-separated segments")

// SourceName derives the logical cluster name from a store endpoint.
// ElastiCache-style endpoints prefix the replica group with "master"; in
// that case the second segment carries the cluster name, otherwise the
// first segment does.
func SourceName(endpoint string) (string, error) {
	parts := strings.Split(endpoint, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	if parts[0] == "master" {
		return parts[1], nil
	}
	return parts[0], nil
}

// Key builds the archive object key for a batch drained at now:
// <source>/logs_<YYYY-MM-DD>_<epoch-seconds>.json. Runs within the same
// second against the same source would collide; scheduling is assumed to
// be coarser than that.
func Key(source string, now time.Time) string {
	return fmt.Sprintf("%s/logs_%s_%d.json", source, now.Format("2006-01-02"), now.Unix())
}
