package mqtt

import (
	"fmt"
	"strings"
)

type TopicKind int

const (
	KindUnknown TopicKind = iota
	KindSystem
	KindLogs
	KindStatus
	KindSensors
	KindMedicineUpdate
	KindRequest
	KindData
	KindConfig
	KindCommands
)

const SystemPrefix = "$"

const (
	LogsSuffix           = "logs"
	StatusSuffix         = "status"
	SensorsSuffix        = "sensors"
	MedicineUpdateSuffix = "medicine_update"
	RequestSuffix        = "request"
	DataSuffix           = "data"
	ConfigSuffix         = "config"
	CommandsSuffix       = "commands"
)

var suffixKinds = map[string]TopicKind{
	LogsSuffix:           KindLogs,
	StatusSuffix:         KindStatus,
	SensorsSuffix:        KindSensors,
	MedicineUpdateSuffix: KindMedicineUpdate,
	RequestSuffix:        KindRequest,
	DataSuffix:           KindData,
	ConfigSuffix:         KindConfig,
	CommandsSuffix:       KindCommands,
}

func (k TopicKind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindLogs:
		return LogsSuffix
	case KindStatus:
		return StatusSuffix
	case KindSensors:
		return SensorsSuffix
	case KindMedicineUpdate:
		return MedicineUpdateSuffix
	case KindRequest:
		return RequestSuffix
	case KindData:
		return DataSuffix
	case KindConfig:
		return ConfigSuffix
	case KindCommands:
		return CommandsSuffix
	default:
		return "unknown"
	}
}

// FromDevice reports whether the kind is published by the cabinet.
func (k TopicKind) FromDevice() bool {
	switch k {
	case KindLogs, KindStatus, KindSensors, KindMedicineUpdate, KindRequest:
		return true
	default:
		return false
	}
}

// ToDevice reports whether the kind is one the relay publishes itself.
func (k TopicKind) ToDevice() bool {
	switch k {
	case KindData, KindConfig, KindCommands:
		return true
	default:
		return false
	}
}

type TopicManagerImpl struct {
	baseTopic string
}

func NewTopicManager(baseTopic string) *TopicManagerImpl {
	return &TopicManagerImpl{
		baseTopic: strings.TrimSuffix(baseTopic, "/"),
	}
}

func (tm *TopicManagerImpl) GetBaseTopic() string {
	return tm.baseTopic
}

func (tm *TopicManagerImpl) topic(suffix string) string {
	return fmt.Sprintf("%s/%s", tm.baseTopic, suffix)
}

func (tm *TopicManagerImpl) GetSubscriptionTopic() string {
	return tm.topic("#")
}

func (tm *TopicManagerImpl) GetLogsTopic() string           { return tm.topic(LogsSuffix) }
func (tm *TopicManagerImpl) GetStatusTopic() string         { return tm.topic(StatusSuffix) }
func (tm *TopicManagerImpl) GetSensorsTopic() string        { return tm.topic(SensorsSuffix) }
func (tm *TopicManagerImpl) GetMedicineUpdateTopic() string { return tm.topic(MedicineUpdateSuffix) }
func (tm *TopicManagerImpl) GetRequestTopic() string        { return tm.topic(RequestSuffix) }
func (tm *TopicManagerImpl) GetDataTopic() string           { return tm.topic(DataSuffix) }
func (tm *TopicManagerImpl) GetConfigTopic() string         { return tm.topic(ConfigSuffix) }
func (tm *TopicManagerImpl) GetCommandsTopic() string       { return tm.topic(CommandsSuffix) }

// Classify maps a concrete topic onto the closed set of kinds. Anything outside
// the namespace, or nested below a known topic, is KindUnknown.
func (tm *TopicManagerImpl) Classify(topic string) TopicKind {
	if strings.HasPrefix(topic, SystemPrefix) {
		return KindSystem
	}

	suffix, found := strings.CutPrefix(topic, tm.baseTopic+"/")
	if !found {
		return KindUnknown
	}

	if kind, ok := suffixKinds[suffix]; ok {
		return kind
	}
	return KindUnknown
}

// InNamespace reports whether the topic lives below the configured base topic.
func (tm *TopicManagerImpl) InNamespace(topic string) bool {
	return strings.HasPrefix(topic, tm.baseTopic+"/")
}
