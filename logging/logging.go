package logging

import (
	"encoding/json"
	"log"
	"time"
)

// Fields is one structured log entry. Zero values are omitted.
type Fields struct {
	Level     string `json:"level"`
	Msg       string `json:"msg"`
	Op        string `json:"op,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	OrderID   uint   `json:"order_id,omitempty"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	Extra     any    `json:"extra,omitempty"`
}

type entry struct {
	TS string `json:"ts"`
	Fields
}

func Log(f Fields) {
	if f.Level == "" {
		f.Level = "info"
	}
	data, err := json.Marshal(entry{TS: time.Now().UTC().Format(time.RFC3339Nano), Fields: f})
	if err != nil {
		log.Printf("{\"level\":\"error\",\"msg\":\"log marshal failed\",\"error\":%q}", err.Error())
		return
	}
	log.Print(string(data))
}

func Info(msg string, f Fields) {
	f.Level, f.Msg = "info", msg
	Log(f)
}

func Warn(msg string, f Fields) {
	f.Level, f.Msg = "warn", msg
	Log(f)
}

func Error(msg string, err error, f Fields) {
	f.Level, f.Msg = "error", msg
	if err != nil {
		f.Error = err.Error()
	}
	Log(f)
}
