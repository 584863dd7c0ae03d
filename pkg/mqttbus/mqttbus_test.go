package mqttbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQosForSafetyTopics(t *testing.T) {
	// verdicts, actuation results, alerts and control commands must survive
	// a flaky link
	require.EqualValues(t, 1, QosFor("telemetry/verdict/room-a"))
	require.EqualValues(t, 1, QosFor("event/actuationResult/room-a"))
	require.EqualValues(t, 1, QosFor("event/alert/room-b"))
	require.EqualValues(t, 1, QosFor("control/room-a"))
}

func TestQosForStreamingTopics(t *testing.T) {
	require.EqualValues(t, 0, QosFor("sensor/data/room-a/smoke-a1"))
	require.EqualValues(t, 0, QosFor("telemetry/reading/room-a"))
	require.EqualValues(t, 0, QosFor("something/else"))
}
