// Package alert builds and delivers state-change notifications. Delivery is
// fire-and-forget; the probing pipeline's obligation ends once the payload
// has been handed to every sink.
package alert

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"upcheck/internal/hub"
	"upcheck/internal/model"
)

// Notifier delivers one alert message to an owner. Implementations must not
// block the sweep for long and must never return an error to it.
type Notifier interface {
	Notify(phone, message string)
}

// Message renders the user-facing alert line for a check's new state.
func Message(chk model.Check) string {
	return fmt.Sprintf("Alert: your check for %s %s://%s is currently %s",
		strings.ToUpper(chk.Method), chk.Protocol, chk.URL, chk.State)
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	Log *slog.Logger
}

func (n *LogNotifier) Notify(phone, message string) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("alert", "owner", phone, "message", message)
}

// HubNotifier pushes alerts to the owner's connected websocket clients.
type HubNotifier struct {
	Hub *hub.Hub
}

type wirePayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	At      int64  `json:"at"`
}

func (n *HubNotifier) Notify(phone, message string) {
	payload, err := json.Marshal(wirePayload{
		Type:    "alert",
		Message: message,
		At:      time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	n.Hub.Broadcast(phone, payload)
}

// Multi fans one notification out to several sinks.
type Multi []Notifier

func (m Multi) Notify(phone, message string) {
	for _, n := range m {
		n.Notify(phone, message)
	}
}
