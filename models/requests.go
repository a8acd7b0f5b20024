// requests.go
// Request payloads. Update structs enumerate every mutable field as a
// pointer so a missing field and an explicit zero can be told apart;
// handlers decode them with unknown fields disallowed.

package models

type RegisterRequest struct {
	Email         string   `json:"email"`
	Username      string   `json:"username"`
	Password      string   `json:"password"`
	Role          UserRole `json:"role,omitempty"`
	BadgeNumber   string   `json:"badge_number,omitempty"`
	Department    string   `json:"department,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	ServiceNumber string   `json:"service_number,omitempty"`
	Rank          string   `json:"rank,omitempty"`
	Photo         string   `json:"photo,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate covers profile self-service and admin user edits.
type UserUpdate struct {
	Username          *string `json:"username,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	ServiceNumber     *string `json:"service_number,omitempty"`
	Rank              *string `json:"rank,omitempty"`
	Department        *string `json:"department,omitempty"`
	Status            *string `json:"status,omitempty"`
	Photo             *string `json:"photo,omitempty"`
	NotificationSound *string `json:"notification_sound,omitempty"`
	VibrationPattern  *string `json:"vibration_pattern,omitempty"`
	BatterySaverMode  *bool   `json:"battery_saver_mode,omitempty"`
	CheckInInterval   *int    `json:"check_in_interval,omitempty"`
	AssignedDistrict  *string `json:"assigned_district,omitempty"`
	PatrolTeam        *string `json:"patrol_team,omitempty"`
}

// Apply merges the set fields into u.
func (up *UserUpdate) Apply(u *User) {
	if up.Username != nil {
		u.Username = *up.Username
	}
	if up.Phone != nil {
		u.Phone = *up.Phone
	}
	if up.ServiceNumber != nil {
		u.ServiceNumber = *up.ServiceNumber
	}
	if up.Rank != nil {
		u.Rank = *up.Rank
	}
	if up.Department != nil {
		u.Department = *up.Department
	}
	if up.Status != nil {
		u.Status = *up.Status
	}
	if up.Photo != nil {
		u.Photo = *up.Photo
	}
	if up.NotificationSound != nil {
		u.NotificationSound = *up.NotificationSound
	}
	if up.VibrationPattern != nil {
		u.VibrationPattern = *up.VibrationPattern
	}
	if up.BatterySaverMode != nil {
		u.BatterySaverMode = *up.BatterySaverMode
	}
	if up.CheckInInterval != nil {
		u.CheckInInterval = *up.CheckInInterval
	}
	if up.AssignedDistrict != nil {
		u.AssignedDistrict = *up.AssignedDistrict
	}
	if up.PatrolTeam != nil {
		u.PatrolTeam = *up.PatrolTeam
	}
}

type IncidentCreate struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Location    *Location `json:"location,omitempty"`
	Address     string    `json:"address"`
	Images      []string  `json:"images,omitempty"`
}

// IncidentUpdate enumerates every mutable incident field.
type IncidentUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

// Apply merges the set fields into inc.
func (up *IncidentUpdate) Apply(inc *Incident) {
	if up.Title != nil {
		inc.Title = *up.Title
	}
	if up.Description != nil {
		inc.Description = *up.Description
	}
	if up.Priority != nil {
		inc.Priority = *up.Priority
	}
	if up.Status != nil {
		inc.Status = *up.Status
	}
	if up.Location != nil {
		inc.Location = *up.Location
	}
	if up.Address != nil {
		inc.Address = *up.Address
	}
	if up.Images != nil {
		inc.Images = *up.Images
	}
}

type MessageCreate struct {
	Content     string `json:"content"`
	RecipientID string `json:"recipient_id,omitempty"`
	Channel     string `json:"channel,omitempty"`
	MessageType string `json:"message_type,omitempty"`
}

type ReportCreate struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ShiftDate string `json:"shift_date"`
	Status    string `json:"status,omitempty"`
}

type PersonCreate struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Address          string `json:"address,omitempty"`
	Age              int    `json:"age,omitempty"`
	BirthDate        string `json:"birth_date,omitempty"`
	Status           string `json:"status,omitempty"`
	Description      string `json:"description,omitempty"`
	LastSeenLocation string `json:"last_seen_location,omitempty"`
	LastSeenDate     string `json:"last_seen_date,omitempty"`
	ContactInfo      string `json:"contact_info,omitempty"`
	CaseNumber       string `json:"case_number,omitempty"`
	Priority         string `json:"priority,omitempty"`
	Photo            string `json:"photo,omitempty"`
}

// PersonUpdate enumerates every mutable person field.
type PersonUpdate struct {
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	Address          *string `json:"address,omitempty"`
	Age              *int    `json:"age,omitempty"`
	BirthDate        *string `json:"birth_date,omitempty"`
	Status           *string `json:"status,omitempty"`
	Description      *string `json:"description,omitempty"`
	LastSeenLocation *string `json:"last_seen_location,omitempty"`
	LastSeenDate     *string `json:"last_seen_date,omitempty"`
	ContactInfo      *string `json:"contact_info,omitempty"`
	CaseNumber       *string `json:"case_number,omitempty"`
	Priority         *string `json:"priority,omitempty"`
	Photo            *string `json:"photo,omitempty"`
}

// Apply merges the set fields into p.
func (up *PersonUpdate) Apply(p *Person) {
	if up.FirstName != nil {
		p.FirstName = *up.FirstName
	}
	if up.LastName != nil {
		p.LastName = *up.LastName
	}
	if up.Address != nil {
		p.Address = *up.Address
	}
	if up.Age != nil {
		p.Age = *up.Age
	}
	if up.BirthDate != nil {
		p.BirthDate = *up.BirthDate
	}
	if up.Status != nil {
		p.Status = *up.Status
	}
	if up.Description != nil {
		p.Description = *up.Description
	}
	if up.LastSeenLocation != nil {
		p.LastSeenLocation = *up.LastSeenLocation
	}
	if up.LastSeenDate != nil {
		p.LastSeenDate = *up.LastSeenDate
	}
	if up.ContactInfo != nil {
		p.ContactInfo = *up.ContactInfo
	}
	if up.CaseNumber != nil {
		p.CaseNumber = *up.CaseNumber
	}
	if up.Priority != nil {
		p.Priority = *up.Priority
	}
	if up.Photo != nil {
		p.Photo = *up.Photo
	}
}

type DistrictCreate struct {
	Name            string    `json:"name"`
	AreaDescription string    `json:"area_description"`
	Coordinates     *Location `json:"coordinates,omitempty"`
}

type TeamCreate struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	DistrictID  string   `json:"district_id,omitempty"`
	MaxMembers  int      `json:"max_members,omitempty"`
	Status      string   `json:"status,omitempty"`
	Members     []string `json:"members,omitempty"`
}

type TeamAssignment struct {
	UserID     string `json:"user_id"`
	TeamID     string `json:"team_id,omitempty"`
	DistrictID string `json:"district_id,omitempty"`
}

type VacationCreate struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// ApprovalRequest decides a pending vacation or sick leave request.
type ApprovalRequest struct {
	Action string `json:"action"` // approve, reject
	Reason string `json:"reason,omitempty"`
}

type SickLeaveCreate struct {
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	Reason             string `json:"reason,omitempty"`
	MedicalCertificate bool   `json:"medical_certificate,omitempty"`
}

type CheckInCreate struct {
	Location *Location `json:"location,omitempty"`
	Status   string    `json:"status,omitempty"`
	Message  string    `json:"message,omitempty"`
}

type EmergencyBroadcastCreate struct {
	Type           string    `json:"type,omitempty"`
	Message        string    `json:"message,omitempty"`
	Priority       string    `json:"priority,omitempty"`
	Location       *Location `json:"location,omitempty"`
	LocationStatus string    `json:"location_status,omitempty"`
}

// AppConfigurationUpdate enumerates every mutable branding field.
type AppConfigurationUpdate struct {
	AppName          *string `json:"app_name,omitempty"`
	AppSubtitle      *string `json:"app_subtitle,omitempty"`
	AppIcon          *string `json:"app_icon,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
	PrimaryColor     *string `json:"primary_color,omitempty"`
	SecondaryColor   *string `json:"secondary_color,omitempty"`
}

// Apply merges the set fields into cfg.
func (up *AppConfigurationUpdate) Apply(cfg *AppConfiguration) {
	if up.AppName != nil {
		cfg.AppName = *up.AppName
	}
	if up.AppSubtitle != nil {
		cfg.AppSubtitle = *up.AppSubtitle
	}
	if up.AppIcon != nil {
		cfg.AppIcon = *up.AppIcon
	}
	if up.OrganizationName != nil {
		cfg.OrganizationName = *up.OrganizationName
	}
	if up.PrimaryColor != nil {
		cfg.PrimaryColor = *up.PrimaryColor
	}
	if up.SecondaryColor != nil {
		cfg.SecondaryColor = *up.SecondaryColor
	}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}
