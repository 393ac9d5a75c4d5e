package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicManager_Topics(t *testing.T) {
	tm := NewTopicManager("smartmedbox/")

	assert.Equal(t, "smartmedbox", tm.GetBaseTopic())
	assert.Equal(t, "smartmedbox/#", tm.GetSubscriptionTopic())
	assert.Equal(t, "smartmedbox/logs", tm.GetLogsTopic())
	assert.Equal(t, "smartmedbox/status", tm.GetStatusTopic())
	assert.Equal(t, "smartmedbox/sensors", tm.GetSensorsTopic())
	assert.Equal(t, "smartmedbox/medicine_update", tm.GetMedicineUpdateTopic())
	assert.Equal(t, "smartmedbox/request", tm.GetRequestTopic())
	assert.Equal(t, "smartmedbox/data", tm.GetDataTopic())
	assert.Equal(t, "smartmedbox/config", tm.GetConfigTopic())
	assert.Equal(t, "smartmedbox/commands", tm.GetCommandsTopic())
}

func TestTopicManager_Classify(t *testing.T) {
	tm := NewTopicManager("smartmedbox")

	cases := map[string]TopicKind{
		"smartmedbox/logs":            KindLogs,
		"smartmedbox/status":          KindStatus,
		"smartmedbox/sensors":         KindSensors,
		"smartmedbox/medicine_update": KindMedicineUpdate,
		"smartmedbox/request":         KindRequest,
		"smartmedbox/data":            KindData,
		"smartmedbox/config":          KindConfig,
		"smartmedbox/commands":        KindCommands,
		"$SYS/broker/uptime":          KindSystem,
		"smartmedbox/firmware":        KindUnknown,
		"smartmedbox/logs/extra":      KindUnknown,
		"othernamespace/logs":         KindUnknown,
		"smartmedbox":                 KindUnknown,
	}

	for topic, want := range cases {
		assert.Equal(t, want, tm.Classify(topic), topic)
	}
}

func TestTopicKind_Direction(t *testing.T) {
	for _, kind := range []TopicKind{KindLogs, KindStatus, KindSensors, KindMedicineUpdate, KindRequest} {
		assert.True(t, kind.FromDevice(), kind.String())
		assert.False(t, kind.ToDevice(), kind.String())
	}
	for _, kind := range []TopicKind{KindData, KindConfig, KindCommands} {
		assert.True(t, kind.ToDevice(), kind.String())
		assert.False(t, kind.FromDevice(), kind.String())
	}
	assert.False(t, KindUnknown.FromDevice())
	assert.False(t, KindSystem.ToDevice())
}
