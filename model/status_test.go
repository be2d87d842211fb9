package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]Status{
		"Pending":   StatusPending,
		"Approved":  StatusApproved,
		"Delivered": StatusDelivered,
		"Returned":  StatusReturned,
	} {
		got, err := ParseStatus(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, raw, got.String())
	}

	for _, raw := range []string{"", "pending", "PENDING", " Approved", "Lost"} {
		_, err := ParseStatus(raw)
		require.Error(t, err, "token %q must be rejected", raw)
	}
}

func TestSuccessor(t *testing.T) {
	next, ok := StatusPending.Successor()
	require.True(t, ok)
	require.Equal(t, StatusApproved, next)

	next, ok = StatusApproved.Successor()
	require.True(t, ok)
	require.Equal(t, StatusDelivered, next)

	next, ok = StatusDelivered.Successor()
	require.True(t, ok)
	require.Equal(t, StatusReturned, next)

	_, ok = StatusReturned.Successor()
	require.False(t, ok, "Returned is terminal")
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(StatusDelivered)
	require.NoError(t, err)
	require.Equal(t, `"Delivered"`, string(b))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"Approved"`), &s))
	require.Equal(t, StatusApproved, s)

	require.Error(t, json.Unmarshal([]byte(`"approved"`), &s))
	require.Error(t, json.Unmarshal([]byte(`3`), &s))
}
