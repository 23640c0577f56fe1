// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateOffsetAndRTT(t *testing.T) {
	samples := []PingPongSample{
		{ClientSendMs: 1000, ServerEchoMs: 1105, ClientRecvMs: 1010},
		{ClientSendMs: 2000, ServerEchoMs: 2104, ClientRecvMs: 2008},
		{ClientSendMs: 3000, ServerEchoMs: 3106, ClientRecvMs: 3012},
	}
	offset, rtt, err := EstimateOffset(samples)
	require.NoError(t, err)
	require.Greater(t, offset, int64(90))
	require.Less(t, offset, int64(110))
	require.Greater(t, rtt, int64(0))
}

func TestEstimateOffsetRequiresSamples(t *testing.T) {
	_, _, err := EstimateOffset(nil)
	require.Error(t, err)
}

func TestTimeSynchPayloadRoundTrip(t *testing.T) {
	ts := TimeSynch{ClientClockRefMs: 123456, AbsoluteTime: "2026-07-29T00:00:00Z"}
	payload := TimeSynchPayload(ts)
	got, err := DecodeTimeSynchPayload(payload)
	require.NoError(t, err)
	require.Equal(t, ts, got)
}

func TestApplyShiftsTimestamp(t *testing.T) {
	require.Equal(t, int64(1105), Apply(100, 1005))
	require.Equal(t, int64(900), Apply(-100, 1000))
}
