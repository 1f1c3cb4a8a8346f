package events

// Event types understood by the host.
const (
	TypeStatus       = "status"
	TypeNotification = "notification"
	TypeMessageDelta = "chat:message:delta"
)

// Status values carried by status events.
const (
	StatusInProgress = "in_progress"
	StatusError      = "error"
)

// NotificationInfo is the notification level used for success events.
const NotificationInfo = "info"

// Event is a single notification forwarded to the host.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StatusData is the payload of a status event.
type StatusData struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
	Hidden      bool   `json:"hidden"`
}

// NotificationData is the payload of a notification event.
type NotificationData struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Details any    `json:"details,omitempty"`
}

// MessageData is the payload of a chat message delta.
type MessageData struct {
	Content string `json:"content"`
}

// ProgressEvent builds an in-progress status event.
func ProgressEvent(text string) Event {
	return Event{
		Type: TypeStatus,
		Data: StatusData{Status: StatusInProgress, Description: text},
	}
}

// ErrorEvent builds a terminal error status event.
func ErrorEvent(text string) Event {
	return Event{
		Type: TypeStatus,
		Data: StatusData{Status: StatusError, Description: text, Done: true},
	}
}

// SuccessEvent builds an info notification. details is omitted from the
// payload when nil; empty maps and slices are kept.
func SuccessEvent(text string, details any) Event {
	return Event{
		Type: TypeNotification,
		Data: NotificationData{Type: NotificationInfo, Content: text, Details: details},
	}
}

// MessageEvent builds a chat message delta.
func MessageEvent(text string) Event {
	return Event{
		Type: TypeMessageDelta,
		Data: MessageData{Content: text},
	}
}

// Text returns the human readable text carried by the event.
func (e Event) Text() string {
	switch d := e.Data.(type) {
	case StatusData:
		return d.Description
	case NotificationData:
		return d.Content
	case MessageData:
		return d.Content
	}
	return ""
}

// IsError reports whether the event is an error status.
func (e Event) IsError() bool {
	d, ok := e.Data.(StatusData)
	return ok && d.Status == StatusError
}
