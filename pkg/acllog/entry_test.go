// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

package acllog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTokens() []string {
	return []string{
		"count", "1",
		"reason", "auth",
		"context", "toplevel",
		"object", "AUTH",
		"username", "someuser",
		"age-seconds", "4.096",
		"client-info", "id=6 addr=10.0.0.5:6379 laddr=10.0.0.9:6380 name= cmd=auth user=default",
	}
}

func TestParseEntry(t *testing.T) {
	entry, err := ParseEntry(sampleTokens())
	require.NoError(t, err)

	assert.Equal(t, "1", entry["count"])
	assert.Equal(t, "auth", entry["reason"])
	assert.Equal(t, "someuser", entry["username"])

	info, ok := entry[FieldClientInfo].(ClientInfo)
	require.True(t, ok, "client-info should be parsed into a nested record")
	assert.Equal(t, "10.0.0.5", info["addr"])
	assert.Equal(t, "auth", info["cmd"])
}

func TestParseEntry_Idempotent(t *testing.T) {
	first, err := ParseEntry(sampleTokens())
	require.NoError(t, err)

	second, err := ParseEntry(sampleTokens())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseEntry_OddTokenCount(t *testing.T) {
	_, err := ParseEntry([]string{"k1", "v1", "k2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestParseEntry_MalformedClientInfoPropagates(t *testing.T) {
	_, err := ParseEntry([]string{"client-info", "addr=1.1.1.1 badtoken"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedClientInfo)
}

func TestParseEntry_Empty(t *testing.T) {
	entry, err := ParseEntry(nil)
	require.NoError(t, err)
	assert.Empty(t, entry)
}

func TestParseClientInfo_PortStripping(t *testing.T) {
	info, err := ParseClientInfo("addr=10.0.0.5:6379 laddr=10.0.0.9:6380 cmd=get")
	require.NoError(t, err)

	assert.Equal(t, ClientInfo{
		"addr":  "10.0.0.5",
		"laddr": "10.0.0.9",
		"cmd":   "get",
	}, info)
}

func TestParseClientInfo_HostWithoutPort(t *testing.T) {
	info, err := ParseClientInfo("addr=10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", info["addr"])
}

func TestParseClientInfo_ValueMayContainSeparators(t *testing.T) {
	// Splitting stops at the first '='; later '=' and ':' belong to the value.
	info, err := ParseClientInfo("flags=N lib-ver=1.2.3 tot-net-in=0 argv-mem=10 name=a=b:c")
	require.NoError(t, err)

	assert.Equal(t, "a=b:c", info["name"])
	assert.Equal(t, "1.2.3", info["lib-ver"])
}

func TestParseClientInfo_TokenWithoutSeparator(t *testing.T) {
	_, err := ParseClientInfo("addr=1.1.1.1 badtoken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedClientInfo)
}

func TestParseClientInfo_EmptyString(t *testing.T) {
	info, err := ParseClientInfo("")
	require.NoError(t, err)
	assert.Empty(t, info)
}
