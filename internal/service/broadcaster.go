package service

// Event types pushed to form owners
const (
	EventResponseSubmitted = "response_submitted"
	EventFormUpdated       = "form_updated"
	EventFormDeleted       = "form_deleted"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToForm(formID string, msgType string, payload interface{})
	DisconnectForm(formID string)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToForm(string, string, interface{}) {}
func (noopBroadcaster) DisconnectForm(string)                      {}
