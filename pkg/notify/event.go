package notify

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/pulp-tools/pic/pkg/pulp"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes a successful change made against the server.
type Event struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	Server     string    `json:"server"`
	User       string    `json:"user"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent builds an Event from a session exchange. It reports false for
// reads and failed requests, which are never announced.
func NewEvent(settings pulp.Settings, ex pulp.Exchange) (Event, bool) {
	if ex.Failed() {
		return Event{}, false
	}
	action := actionFor(ex.Method)
	if action == "" {
		return Event{}, false
	}
	at := ex.At
	if at.IsZero() {
		at = time.Now()
	}
	return Event{
		ID:         eventID(ex.Method, ex.Path, at),
		Action:     action,
		Method:     ex.Method,
		Path:       ex.Path,
		Status:     ex.Status,
		Server:     settings.BaseURL(),
		User:       settings.User,
		OccurredAt: at.UTC(),
	}, true
}

func actionFor(method string) string {
	switch method {
	case http.MethodPost:
		return ActionCreated
	case http.MethodPut, http.MethodPatch:
		return ActionUpdated
	case http.MethodDelete:
		return ActionDeleted
	default:
		return ""
	}
}

func eventID(method, path string, at time.Time) string {
	sum := sha1.Sum([]byte(method + " " + path + " " + strconv.FormatInt(at.UnixNano(), 10)))
	return hex.EncodeToString(sum[:])
}
