// models.go
// Defines the core data structures shared by the Stadtwache backend.
// Every persisted entity carries an application-assigned string id; documents
// are always looked up by this id, never by the store-native key.

package models

import (
	"time"
)

// UserRole defines the access level of a user.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"     // Eigentümer
	RolePolice    UserRole = "police"    // Stadtwache
	RoleCommunity UserRole = "community" // Member
	RoleTrainee   UserRole = "trainee"   // Praktikant
)

// Duty statuses shown in the roster. The field stays free text; these are
// the values the clients offer.
const (
	StatusOnDuty      = "Im Dienst"
	StatusBreak       = "Pause"
	StatusDeployment  = "Einsatz"
	StatusPatrol      = "Streife"
	StatusUnavailable = "Nicht verfügbar"
)

// User represents an account in the system. The bcrypt hash lives on the
// same document but is never serialized to JSON.
type User struct {
	ID                string     `firestore:"id" json:"id"`
	Email             string     `firestore:"email" json:"email"`
	Username          string     `firestore:"username" json:"username"`
	Role              UserRole   `firestore:"role" json:"role"`
	BadgeNumber       string     `firestore:"badge_number,omitempty" json:"badge_number,omitempty"`
	Department        string     `firestore:"department,omitempty" json:"department,omitempty"`
	Phone             string     `firestore:"phone,omitempty" json:"phone,omitempty"`
	ServiceNumber     string     `firestore:"service_number,omitempty" json:"service_number,omitempty"`
	Rank              string     `firestore:"rank,omitempty" json:"rank,omitempty"`
	Status            string     `firestore:"status" json:"status"`
	Photo             string     `firestore:"photo,omitempty" json:"photo,omitempty"`
	IsActive          bool       `firestore:"is_active" json:"is_active"`
	NotificationSound string     `firestore:"notification_sound,omitempty" json:"notification_sound,omitempty"`
	VibrationPattern  string     `firestore:"vibration_pattern,omitempty" json:"vibration_pattern,omitempty"`
	BatterySaverMode  bool       `firestore:"battery_saver_mode" json:"battery_saver_mode"`
	CheckInInterval   int        `firestore:"check_in_interval" json:"check_in_interval"`
	AssignedDistrict  string     `firestore:"assigned_district,omitempty" json:"assigned_district,omitempty"`
	PatrolTeam        string     `firestore:"patrol_team,omitempty" json:"patrol_team,omitempty"`
	LastCheckIn       *time.Time `firestore:"last_check_in,omitempty" json:"last_check_in,omitempty"`
	MissedCheckIns    int        `firestore:"missed_check_ins" json:"missed_check_ins"`
	LastActivity      *time.Time `firestore:"last_activity,omitempty" json:"last_activity,omitempty"`
	HashedPassword    string     `firestore:"hashed_password" json:"-"`
	CreatedAt         time.Time  `firestore:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `firestore:"updated_at" json:"updated_at"`
}

// Location is a geographic point.
type Location struct {
	Lat float64 `firestore:"lat" json:"lat"`
	Lng float64 `firestore:"lng" json:"lng"`
}

// Incident statuses. "archiving" is the transient saga state written while an
// incident is being converted into an archive report.
const (
	IncidentOpen       = "open"
	IncidentInProgress = "in_progress"
	IncidentClosed     = "closed"
	IncidentArchiving  = "archiving"
)

// Incident is a reported situation requiring attention.
type Incident struct {
	ID             string     `firestore:"id" json:"id"`
	Title          string     `firestore:"title" json:"title"`
	Description    string     `firestore:"description" json:"description"`
	Priority       string     `firestore:"priority" json:"priority"` // high, medium, low
	Status         string     `firestore:"status" json:"status"`
	Location       Location   `firestore:"location" json:"location"`
	Address        string     `firestore:"address" json:"address"`
	ReportedBy     string     `firestore:"reported_by" json:"reported_by"`
	AssignedTo     string     `firestore:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	AssignedToName string     `firestore:"assigned_to_name,omitempty" json:"assigned_to_name,omitempty"`
	AssignedAt     *time.Time `firestore:"assigned_at,omitempty" json:"assigned_at,omitempty"`
	Images         []string   `firestore:"images" json:"images"` // base64 encoded
	CreatedAt      time.Time  `firestore:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `firestore:"updated_at" json:"updated_at"`
}

// ReportEdit is one entry of a report's append-only edit history.
type ReportEdit struct {
	EditedBy     string                 `firestore:"edited_by" json:"edited_by"`
	EditedByName string                 `firestore:"edited_by_name" json:"edited_by_name"`
	EditedAt     time.Time              `firestore:"edited_at" json:"edited_at"`
	Changes      map[string]FieldChange `firestore:"changes" json:"changes"`
}

// FieldChange records the prior and new value of a mutated field.
type FieldChange struct {
	Old string `firestore:"old" json:"old"`
	New string `firestore:"new" json:"new"`
}

// Report is a durable write-up, either authored directly or produced by
// incident archival (IncidentID set).
type Report struct {
	ID               string       `firestore:"id" json:"id"`
	Title            string       `firestore:"title" json:"title"`
	Content          string       `firestore:"content" json:"content"`
	AuthorID         string       `firestore:"author_id" json:"author_id"`
	AuthorName       string       `firestore:"author_name" json:"author_name"`
	ShiftDate        string       `firestore:"shift_date" json:"shift_date"`
	Status           string       `firestore:"status" json:"status"` // draft, submitted, reviewed, archived
	IncidentID       string       `firestore:"incident_id,omitempty" json:"incident_id,omitempty"`
	Images           []string     `firestore:"images" json:"images"`
	LastEditedBy     string       `firestore:"last_edited_by,omitempty" json:"last_edited_by,omitempty"`
	LastEditedByName string       `firestore:"last_edited_by_name,omitempty" json:"last_edited_by_name,omitempty"`
	EditHistory      []ReportEdit `firestore:"edit_history" json:"edit_history"`
	CreatedAt        time.Time    `firestore:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `firestore:"updated_at" json:"updated_at"`
}

// Message is chat content. Exactly one of RecipientID and Channel determines
// routing: private messages carry a recipient, broadcasts carry a channel.
type Message struct {
	ID          string    `firestore:"id" json:"id"`
	Content     string    `firestore:"content" json:"content"`
	SenderID    string    `firestore:"sender_id" json:"sender_id"`
	SenderName  string    `firestore:"sender_name" json:"sender_name"`
	RecipientID string    `firestore:"recipient_id,omitempty" json:"recipient_id,omitempty"`
	Channel     string    `firestore:"channel" json:"channel"`
	Timestamp   time.Time `firestore:"timestamp" json:"timestamp"`
	MessageType string    `firestore:"message_type" json:"message_type"` // text, location, image
}

// Person is an entry in the missing/wanted person registry.
type Person struct {
	ID               string    `firestore:"id" json:"id"`
	FirstName        string    `firestore:"first_name" json:"first_name"`
	LastName         string    `firestore:"last_name" json:"last_name"`
	Address          string    `firestore:"address,omitempty" json:"address,omitempty"`
	Age              int       `firestore:"age,omitempty" json:"age,omitempty"`
	BirthDate        string    `firestore:"birth_date,omitempty" json:"birth_date,omitempty"`
	Status           string    `firestore:"status" json:"status"` // gesucht, vermisst, gefunden, erledigt, archiviert
	Description      string    `firestore:"description,omitempty" json:"description,omitempty"`
	LastSeenLocation string    `firestore:"last_seen_location,omitempty" json:"last_seen_location,omitempty"`
	LastSeenDate     string    `firestore:"last_seen_date,omitempty" json:"last_seen_date,omitempty"`
	ContactInfo      string    `firestore:"contact_info,omitempty" json:"contact_info,omitempty"`
	CaseNumber       string    `firestore:"case_number,omitempty" json:"case_number,omitempty"`
	Priority         string    `firestore:"priority" json:"priority"`
	Photo            string    `firestore:"photo,omitempty" json:"photo,omitempty"`
	CreatedBy        string    `firestore:"created_by" json:"created_by"`
	CreatedByName    string    `firestore:"created_by_name" json:"created_by_name"`
	IsActive         bool      `firestore:"is_active" json:"is_active"`
	CreatedAt        time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt        time.Time `firestore:"updated_at" json:"updated_at"`
}

// District is a patrol district.
type District struct {
	ID              string    `firestore:"id" json:"id"`
	Name            string    `firestore:"name" json:"name"`
	AreaDescription string    `firestore:"area_description" json:"area_description"`
	Coordinates     *Location `firestore:"coordinates,omitempty" json:"coordinates,omitempty"`
	CreatedAt       time.Time `firestore:"created_at" json:"created_at"`
}

// Team statuses.
const (
	TeamReady       = "Einsatzbereit"
	TeamDeployed    = "Im Einsatz"
	TeamBreak       = "Pause"
	TeamUnavailable = "Nicht verfügbar"
)

// Team is a patrol team referencing a district and member user ids.
type Team struct {
	ID          string    `firestore:"id" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description,omitempty" json:"description,omitempty"`
	DistrictID  string    `firestore:"district_id,omitempty" json:"district_id,omitempty"`
	Members     []string  `firestore:"members" json:"members"`
	LeaderID    string    `firestore:"leader_id,omitempty" json:"leader_id,omitempty"`
	MaxMembers  int       `firestore:"max_members" json:"max_members"`
	Status      string    `firestore:"status" json:"status"`
	CreatedBy   string    `firestore:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt   time.Time `firestore:"created_at" json:"created_at"`
}

// Vacation is a vacation request with admin approval flow.
type Vacation struct {
	ID              string     `firestore:"id" json:"id"`
	UserID          string     `firestore:"user_id" json:"user_id"`
	UserName        string     `firestore:"user_name" json:"user_name"`
	StartDate       string     `firestore:"start_date" json:"start_date"`
	EndDate         string     `firestore:"end_date" json:"end_date"`
	Reason          string     `firestore:"reason" json:"reason"`
	Status          string     `firestore:"status" json:"status"` // pending, approved, rejected
	ApprovedBy      string     `firestore:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `firestore:"approved_at,omitempty" json:"approved_at,omitempty"`
	ApprovalReason  string     `firestore:"approval_reason,omitempty" json:"approval_reason,omitempty"`
	RejectionReason string     `firestore:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `firestore:"created_at" json:"created_at"`
}

// SickLeave is a sick leave notice with admin approval flow.
type SickLeave struct {
	ID                 string     `firestore:"id" json:"id"`
	UserID             string     `firestore:"user_id" json:"user_id"`
	UserName           string     `firestore:"user_name" json:"user_name"`
	StartDate          string     `firestore:"start_date" json:"start_date"`
	EndDate            string     `firestore:"end_date" json:"end_date"`
	Reason             string     `firestore:"reason,omitempty" json:"reason,omitempty"`
	MedicalCertificate bool       `firestore:"medical_certificate" json:"medical_certificate"`
	Status             string     `firestore:"status" json:"status"`
	ApprovedBy         string     `firestore:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt         *time.Time `firestore:"approved_at,omitempty" json:"approved_at,omitempty"`
	RejectionReason    string     `firestore:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	CreatedAt          time.Time  `firestore:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `firestore:"updated_at" json:"updated_at"`
}

// CheckIn is a periodic duty check-in.
type CheckIn struct {
	ID        string    `firestore:"id" json:"id"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	UserName  string    `firestore:"user_name" json:"user_name"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
	Location  *Location `firestore:"location,omitempty" json:"location,omitempty"`
	Status    string    `firestore:"status" json:"status"` // ok, emergency, help_needed
	Message   string    `firestore:"message,omitempty" json:"message,omitempty"`
}

// LocationUpdate is a live GPS position report.
type LocationUpdate struct {
	UserID    string    `firestore:"user_id" json:"user_id"`
	Location  Location  `firestore:"location" json:"location"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
}

// EmergencyBroadcast is an SOS alert pushed to the whole team.
type EmergencyBroadcast struct {
	ID             string    `firestore:"id" json:"id"`
	Type           string    `firestore:"type" json:"type"`
	Message        string    `firestore:"message" json:"message"`
	SenderID       string    `firestore:"sender_id" json:"sender_id"`
	SenderName     string    `firestore:"sender_name" json:"sender_name"`
	SenderBadge    string    `firestore:"sender_badge,omitempty" json:"sender_badge,omitempty"`
	Location       *Location `firestore:"location,omitempty" json:"location,omitempty"`
	LocationStatus string    `firestore:"location_status" json:"location_status"`
	HasGPS         bool      `firestore:"has_gps" json:"has_gps"`
	Priority       string    `firestore:"priority" json:"priority"`
	Status         string    `firestore:"status" json:"status"`
	Timestamp      time.Time `firestore:"timestamp" json:"timestamp"`
}

// AppConfiguration is the branding singleton served to clients.
type AppConfiguration struct {
	ID               string    `firestore:"id" json:"id"`
	AppName          string    `firestore:"app_name" json:"app_name"`
	AppSubtitle      string    `firestore:"app_subtitle" json:"app_subtitle"`
	AppIcon          string    `firestore:"app_icon,omitempty" json:"app_icon,omitempty"`
	OrganizationName string    `firestore:"organization_name" json:"organization_name"`
	PrimaryColor     string    `firestore:"primary_color" json:"primary_color"`
	SecondaryColor   string    `firestore:"secondary_color" json:"secondary_color"`
	CreatedAt        time.Time `firestore:"created_at" json:"created_at"`
	UpdatedAt        time.Time `firestore:"updated_at" json:"updated_at"`
}

// AuditEvent records an administrative mutation.
type AuditEvent struct {
	ID        string    `firestore:"id" json:"id"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	Action    string    `firestore:"action" json:"action"`
	Details   string    `firestore:"details" json:"details"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
}

// DefaultAppConfiguration returns the branding defaults used until an admin
// customizes them.
func DefaultAppConfiguration() *AppConfiguration {
	now := time.Now().UTC()
	return &AppConfiguration{
		ID:               "app-config",
		AppName:          "Stadtwache",
		AppSubtitle:      "Polizei Management System",
		OrganizationName: "Sicherheitsbehörde Schwelm",
		PrimaryColor:     "#1E40AF",
		SecondaryColor:   "#3B82F6",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
