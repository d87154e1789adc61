// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

package acllog

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// FormatBatch serializes entries for archival: one compact JSON object per
// line, joined by single newlines, no trailing newline. Entry order is
// preserved. An empty batch yields an empty output.
func FormatBatch(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	for i, entry := range entries {
		if i > 0 {
			buf.WriteByte('\n')
		}
		line, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("marshal entry %d: %w", i, err)
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}
