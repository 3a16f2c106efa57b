package rest

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"todo/internal/service"
)

// taskPayload is the JSON shape of a task on the wire.
type taskPayload struct {
	ID          taskID     `json:"id,omitempty"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Created     *time.Time `json:"created,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
}

// taskID accepts both JSON strings and numbers.
type taskID string

func (id *taskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = taskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = taskID(n.String())
	return nil
}

func toPayload(t service.Task) taskPayload {
	p := taskPayload{
		ID:          taskID(t.ID),
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
	}
	if !t.Created.IsZero() {
		created := t.Created
		p.Created = &created
	}
	if !t.Updated.IsZero() {
		updated := t.Updated
		p.Updated = &updated
	}
	return p
}

func (p taskPayload) toTask() service.Task {
	t := service.Task{
		ID:          string(p.ID),
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Status:      service.Status(p.Status),
	}
	if p.Created != nil {
		t.Created = *p.Created
	}
	if p.Updated != nil {
		t.Updated = *p.Updated
	}
	return t
}

// unwrapEnvelope returns the "data" member of a {"status":..., "data":...}
// response envelope, or v unchanged when v is a bare payload.
func unwrapEnvelope(v interface{}) interface{} {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	if _, hasStatus := obj["status"]; !hasStatus {
		return v
	}
	if data, hasData := obj["data"]; hasData {
		return data
	}
	return v
}

// errorMessage extracts a readable message from an error response body.
// Plain-text bodies and {"error": ...} / {"message": ...} objects are understood.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '{' {
		var obj map[string]interface{}
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			if msg := messageFrom(obj["error"]); msg != "" {
				return msg
			}
			if msg := messageFrom(obj["message"]); msg != "" {
				return msg
			}
		}
	}
	return strings.TrimSpace(string(trimmed))
}

func messageFrom(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]interface{}:
		if msg, ok := val["message"].(string); ok {
			return msg
		}
	}
	return ""
}
