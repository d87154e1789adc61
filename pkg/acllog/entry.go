// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

// Package acllog parses raw Redis ACL log records into structured entries.
//
// The ACL LOG command returns each record as a flat list of alternating
// field-name and field-value tokens. One field, client-info, carries a
// nested record of its own: a whitespace-separated list of key=value pairs
// describing the offending client connection.
package acllog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedEntry      = errors.New("acl log entry has odd token count")
	ErrMalformedClientInfo = errors.New("client-info token missing '=' separator")
)

// FieldClientInfo is the entry field holding the nested client record.
const FieldClientInfo = "client-info"

// ClientInfo is the parsed client-info sub-record.
type ClientInfo map[string]string

// Entry is one normalized ACL log record. Values are plain strings except
// for the client-info field, which holds a ClientInfo.
type Entry map[string]any

// ParseEntry pairs the alternating tokens of one raw ACL log record into an
// Entry. The token at each even index names the field, the following token
// is its value. The client-info value is parsed into its nested record.
func ParseEntry(tokens []string) (Entry, error) {
	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("%w: %d tokens", ErrMalformedEntry, len(tokens))
	}

	entry := make(Entry, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		key, value := tokens[i], tokens[i+1]
		if key == FieldClientInfo {
			info, err := ParseClientInfo(value)
			if err != nil {
				return nil, err
			}
			entry[key] = info
			continue
		}
		entry[key] = value
	}
	return entry, nil
}

// ParseClientInfo parses the client-info string into a ClientInfo. Each
// whitespace-separated token must contain an '=' splitting key from value;
// the value may itself contain '=' or ':'. For the addr and laddr keys the
// port suffix is stripped, keeping only the host portion.
func ParseClientInfo(raw string) (ClientInfo, error) {
	info := ClientInfo{}
	for _, token := range strings.Fields(raw) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedClientInfo, token)
		}

		if key == "addr" || key == "laddr" {
			// Keep only the host; a value with no port is left unchanged.
			value, _, _ = strings.Cut(value, ":")
		}

		info[key] = value
	}
	return info, nil
}
