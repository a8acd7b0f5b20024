package realtime

// Server-initiated event names pushed to subscribed connections.
const (
	EventNewMessage        = "new_message"
	EventMessageDeleted    = "message_deleted"
	EventIncidentAssigned  = "incident_assigned"
	EventIncidentUpdated   = "incident_updated"
	EventIncidentCompleted = "incident_completed"
	EventNewPerson         = "new_person"
	EventPersonUpdated     = "person_updated"
	EventLocationUpdated   = "location_updated"
	EventUserOnline        = "user_online"
	EventUserOffline       = "user_offline"
	EventJoinedRoom        = "joined_room"
	EventEmergencyAlert    = "emergency_alert"
	EventVacationDecided   = "vacation_decided"
)

// Event is the flat structure delivered to clients: event name + payload.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}
