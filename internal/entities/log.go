package entities

import (
	"encoding/json"
	"time"
)

type LogType string

const (
	LogInfo        LogType = "INFO"
	LogWarning     LogType = "WARNING"
	LogError       LogType = "ERROR"
	LogTransaction LogType = "TRANSACTION"
	LogUserAction  LogType = "USER_ACTION"
)

// Valid reports whether t is one of the known log types.
func (t LogType) Valid() bool {
	switch t {
	case LogInfo, LogWarning, LogError, LogTransaction, LogUserAction:
		return true
	}
	return false
}

// SystemLog is a single entry of the admin system log.
type SystemLog struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      LogType         `json:"type"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details,omitempty"`
}

func (l *SystemLog) GetID() string   { return l.ID }
func (l *SystemLog) SetID(id string) { l.ID = id }
