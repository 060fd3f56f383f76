package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Enumerated values
// ============================================================

// User roles
const (
	RoleDonor     = "DONOR"
	RoleRecipient = "RECIPIENT"
	RoleAdmin     = "ADMIN"
)

// Blood request urgency levels
const (
	UrgencyLow      = "LOW"
	UrgencyMedium   = "MEDIUM"
	UrgencyHigh     = "HIGH"
	UrgencyCritical = "CRITICAL"
)

// Blood request status
const (
	RequestStatusOpen   = "OPEN"
	RequestStatusClosed = "CLOSED"
)

// Donation verification status
const (
	VerificationStatusPending  = "PENDING"
	VerificationStatusVerified = "VERIFIED"
	VerificationStatusExpired  = "EXPIRED"
)

// BloodTypes lists the accepted blood type values
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// IsValidBloodType checks a blood type against the accepted set
func IsValidBloodType(bt string) bool {
	for _, t := range BloodTypes {
		if t == bt {
			return true
		}
	}
	return false
}

// IsValidUrgency checks an urgency level against the accepted set
func IsValidUrgency(u string) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// ============================================================
// Users
// ============================================================

// User represents users table
type User struct {
	ID                    string         `gorm:"type:char(36);primaryKey" json:"id"`
	Email                 string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password              string         `gorm:"size:255;not null" json:"-"`
	FullName              string         `gorm:"size:100;not null" json:"full_name"`
	Phone                 string         `gorm:"size:20" json:"phone"`
	Role                  string         `gorm:"size:20;default:'DONOR'" json:"role"`
	BloodType             string         `gorm:"size:5;not null" json:"blood_type"`
	City                  string         `gorm:"size:100" json:"city"`
	Latitude              *float64       `json:"latitude"`
	Longitude             *float64       `json:"longitude"`
	// No default tag: GORM skips zero values that carry one, and recipients
	// must persist as unavailable. Set explicitly on create.
	IsAvailable           bool           `json:"is_available"`
	IsActive              bool           `gorm:"default:true" json:"is_active"`
	LastDonation          *time.Time     `json:"last_donation"`
	MedicalConditions     string         `gorm:"type:text" json:"medical_conditions"`
	EmergencyContactName  string         `gorm:"size:100" json:"emergency_contact_name"`
	EmergencyContactPhone string         `gorm:"size:20" json:"emergency_contact_phone"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// HasLocation reports whether the profile carries coordinates
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// UserResponse DTO
type UserResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         string     `json:"role"`
	BloodType    string     `json:"blood_type"`
	City         string     `json:"city,omitempty"`
	IsAvailable  bool       `json:"is_available"`
	IsActive     bool       `json:"is_active"`
	LastDonation *time.Time `json:"last_donation,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		Role:         u.Role,
		BloodType:    u.BloodType,
		City:         u.City,
		IsAvailable:  u.IsAvailable,
		IsActive:     u.IsActive,
		LastDonation: u.LastDonation,
		CreatedAt:    u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"type:char(36);index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Blood requests & donations
// ============================================================

// BloodRequest represents blood_requests table.
// UnitsFulfilled and Status are written only by the verification workflow:
// UnitsFulfilled only increases and OPEN -> CLOSED happens exactly once.
type BloodRequest struct {
	ID             string         `gorm:"type:char(36);primaryKey" json:"id"`
	RequesterID    string         `gorm:"type:char(36);not null;index" json:"requester_id"`
	PatientName    string         `gorm:"size:100" json:"patient_name"`
	BloodType      string         `gorm:"size:5;not null;index" json:"blood_type"`
	UnitsRequired  int            `gorm:"not null" json:"units_required"`
	UnitsFulfilled int            `gorm:"not null;default:0" json:"units_fulfilled"`
	Urgency        string         `gorm:"size:20;not null;default:'MEDIUM'" json:"urgency"`
	Status         string         `gorm:"size:20;not null;default:'OPEN';index" json:"status"`
	HospitalName   string         `gorm:"size:200" json:"hospital_name"`
	HospitalAddress string        `gorm:"size:255" json:"hospital_address"`
	Latitude       *float64       `json:"latitude"`
	Longitude      *float64       `json:"longitude"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Requester *User      `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Donations []Donation `gorm:"foreignKey:BloodRequestID" json:"donations,omitempty"`
}

func (BloodRequest) TableName() string {
	return "blood_requests"
}

func (r *BloodRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// IsOpen reports whether the request still accepts donations
func (r *BloodRequest) IsOpen() bool {
	return r.Status == RequestStatusOpen
}

// BloodRequestResponse DTO
type BloodRequestResponse struct {
	ID             string    `json:"id"`
	RequesterID    string    `json:"requester_id"`
	RequesterName  string    `json:"requester_name,omitempty"`
	PatientName    string    `json:"patient_name,omitempty"`
	BloodType      string    `json:"blood_type"`
	UnitsRequired  int       `json:"units_required"`
	UnitsFulfilled int       `json:"units_fulfilled"`
	Urgency        string    `json:"urgency"`
	Status         string    `json:"status"`
	HospitalName   string    `json:"hospital_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r *BloodRequest) ToResponse() *BloodRequestResponse {
	resp := &BloodRequestResponse{
		ID:             r.ID,
		RequesterID:    r.RequesterID,
		PatientName:    r.PatientName,
		BloodType:      r.BloodType,
		UnitsRequired:  r.UnitsRequired,
		UnitsFulfilled: r.UnitsFulfilled,
		Urgency:        r.Urgency,
		Status:         r.Status,
		HospitalName:   r.HospitalName,
		CreatedAt:      r.CreatedAt,
	}
	if r.Requester != nil {
		resp.RequesterName = r.Requester.FullName
	}
	return resp
}

// Donation represents donations table.
// DonationDate stays NULL while the donation is pending verification and is
// stamped exactly once, with the server clock, at finalization.
type Donation struct {
	ID             string     `gorm:"type:char(36);primaryKey" json:"id"`
	DonorID        string     `gorm:"type:char(36);not null;index" json:"donor_id"`
	BloodRequestID string     `gorm:"type:char(36);not null;index" json:"blood_request_id"`
	UnitsDonated   int        `gorm:"not null" json:"units_donated"`
	DonationDate   *time.Time `json:"donation_date"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Donor        *User         `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	BloodRequest *BloodRequest `gorm:"foreignKey:BloodRequestID" json:"blood_request,omitempty"`
}

func (Donation) TableName() string {
	return "donations"
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// DonationVerification represents donation_verifications table.
// Status is monotonic: PENDING -> VERIFIED or PENDING -> EXPIRED, terminal
// thereafter. At most one PENDING row exists per donation.
type DonationVerification struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	DonationID  string    `gorm:"type:char(36);uniqueIndex;not null" json:"donation_id"`
	RecipientID string    `gorm:"type:char(36);not null;index" json:"recipient_id"`
	OTP         string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	Status      string    `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Donation *Donation `gorm:"foreignKey:DonationID" json:"donation,omitempty"`
}

func (DonationVerification) TableName() string {
	return "donation_verifications"
}

func (v *DonationVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// IsExpired reports whether the code's validity window has passed
func (v *DonationVerification) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

// ============================================================
// Messaging
// ============================================================

// Message represents messages table (request-scoped conversations)
type Message struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	RequestID   string    `gorm:"type:char(36);not null;index" json:"request_id"`
	SenderID    string    `gorm:"type:char(36);not null;index" json:"sender_id"`
	ReceiverID  string    `gorm:"type:char(36);not null;index" json:"receiver_id"`
	MessageText string    `gorm:"type:text;not null" json:"message_text"`
	MessageType string    `gorm:"size:20;not null;default:'text'" json:"message_type"`
	IsRead      bool      `gorm:"default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// ============================================================
// Clubs & blood drive events
// ============================================================

// Club represents rotaract_clubs table
type Club struct {
	ID               string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name             string         `gorm:"size:200;uniqueIndex;not null" json:"name"`
	District         string         `gorm:"size:100" json:"district"`
	City             string         `gorm:"size:100" json:"city"`
	State            string         `gorm:"size:100" json:"state"`
	Description      string         `gorm:"type:text" json:"description"`
	Website          string         `gorm:"size:255" json:"website"`
	PresidentName    string         `gorm:"size:100" json:"president_name"`
	PresidentEmail   string         `gorm:"size:100" json:"president_email"`
	PresidentPhone   string         `gorm:"size:20" json:"president_phone"`
	MeetingDay       string         `gorm:"size:20" json:"meeting_day"`
	MeetingTime      string         `gorm:"size:10" json:"meeting_time"`
	MeetingLocation  string         `gorm:"size:200" json:"meeting_location"`
	RegisteredByID   string         `gorm:"type:char(36);not null" json:"registered_by_id"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Events []BloodDriveEvent `gorm:"foreignKey:ClubID" json:"events,omitempty"`
}

func (Club) TableName() string {
	return "rotaract_clubs"
}

func (c *Club) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// BloodDriveEvent represents blood_drive_events table
type BloodDriveEvent struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	ClubID           string    `gorm:"type:char(36);not null;index" json:"club_id"`
	OrganizerID      string    `gorm:"type:char(36);not null" json:"organizer_id"`
	Title            string    `gorm:"size:200;not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	EventDate        time.Time `gorm:"type:date;not null;index" json:"event_date"`
	StartTime        string    `gorm:"size:10" json:"start_time"`
	EndTime          string    `gorm:"size:10" json:"end_time"`
	VenueName        string    `gorm:"size:200" json:"venue_name"`
	VenueAddress     string    `gorm:"size:255" json:"venue_address"`
	TargetDonors     int       `gorm:"not null;default:0" json:"target_donors"`
	RegisteredDonors int       `gorm:"not null;default:0" json:"registered_donors"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Club *Club `gorm:"foreignKey:ClubID" json:"club,omitempty"`
}

func (BloodDriveEvent) TableName() string {
	return "blood_drive_events"
}

func (e *BloodDriveEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates/updates all application tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth & users
		&User{},
		&RefreshToken{},
		// Requests & donations
		&BloodRequest{},
		&Donation{},
		&DonationVerification{},
		// Messaging
		&Message{},
		// Clubs
		&Club{},
		&BloodDriveEvent{},
	)
}
