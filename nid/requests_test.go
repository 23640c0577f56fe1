// Copyright © 2026 VE Project contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package nid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veproj/ve/device"
)

func TestEnumDevicesRoundTrip(t *testing.T) {
	names := []string{"joystick", "tracker", "pad"}
	payload := EnumDevicesResponse(names)
	got, err := DecodeEnumDevicesResponse(payload)
	require.NoError(t, err)
	require.Equal(t, names, got)
}

func TestEnumElementsPayloadRoundTrip(t *testing.T) {
	payload := EnumElementsPayload("joystick")
	got, err := DecodeEnumElementsPayload(payload)
	require.NoError(t, err)
	require.Equal(t, "joystick", got)
}

func TestEnumElementsPayloadRejectsWrongArity(t *testing.T) {
	_, err := DecodeEnumElementsPayload(putStringList([]string{"a", "b"}))
	require.Error(t, err)
}

func TestSpecListRoundTrip(t *testing.T) {
	specs := []string{"joystick.axis0.*", "pad.*.0"}
	payload := SpecListPayload(specs)
	got, err := DecodeSpecListPayload(payload)
	require.NoError(t, err)
	require.Equal(t, specs, got)
}

func TestQueryElementsResponseRoundTrip(t *testing.T) {
	states := []ElementState{
		{TimestampMs: 1, Device: "d", Element: "e1", Index: device.NoIndex, Content: device.Trigger{}},
		{TimestampMs: 2, Device: "d", Element: "e2", Index: device.NoIndex, Content: device.Switch{State: true}},
	}
	payload, err := QueryElementsResponse(states)
	require.NoError(t, err)
	got, err := DecodeQueryElementsResponse(payload)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, states[0].Content, got[0].Content)
	require.Equal(t, states[1].Content, got[1].Content)
}

func TestSetGetValuePayloadRoundTrip(t *testing.T) {
	es := ElementState{TimestampMs: 5, Device: "d", Element: "e", Index: device.NoIndex, Content: device.Valuator{Value: 0.75}}
	payload, err := SetValuePayload(es)
	require.NoError(t, err)
	got, err := DecodeSetValuePayload(payload)
	require.NoError(t, err)
	require.Equal(t, es.Content, got.Content)

	getPayload := GetValuePayload("d.e.*")
	spec, err := DecodeGetValuePayload(getPayload)
	require.NoError(t, err)
	require.Equal(t, "d.e.*", spec)
}

func TestFindDeviceRoundTrip(t *testing.T) {
	payload := FindDeviceResponse(true, "joystick")
	found, kind, err := DecodeFindDeviceResponse(payload)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "joystick", kind)
}

func TestDeviceFuncRoundTrip(t *testing.T) {
	payload := DeviceFuncPayload("joystick", "calibrate", "axis0")
	d, fn, arg, err := DecodeDeviceFuncPayload(payload)
	require.NoError(t, err)
	require.Equal(t, "joystick", d)
	require.Equal(t, "calibrate", fn)
	require.Equal(t, "axis0", arg)
}
