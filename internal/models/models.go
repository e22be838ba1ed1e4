package models

import "time"

type ServiceType string

const (
	ServiceGeneralConsultation ServiceType = "GENERAL_CONSULTATION"
	ServiceMediation           ServiceType = "MEDIATION"
	ServiceEmergencySupport    ServiceType = "EMERGENCY_SUPPORT"
	ServiceDocumentReview      ServiceType = "DOCUMENT_REVIEW"
)

type IntakeStatus string

const (
	IntakePending   IntakeStatus = "PENDING"
	IntakeQualified IntakeStatus = "QUALIFIED"
	IntakeBooked    IntakeStatus = "BOOKED"
	IntakeClosed    IntakeStatus = "CLOSED"
)

type Archetype string

const (
	ArchetypeCourtImminent   Archetype = "COURT_IMMINENT"
	ArchetypeComplexCase     Archetype = "COMPLEX_CASE"
	ArchetypeSelfRepLitigant Archetype = "SELF_REP_LITIGANT"
)

type DistressLevel string

const (
	DistressLow    DistressLevel = "LOW"
	DistressMedium DistressLevel = "MEDIUM"
	DistressUrgent DistressLevel = "URGENT"
)

type SignalStatus string

const (
	SignalDetected     SignalStatus = "DETECTED"
	SignalUnderReview  SignalStatus = "UNDER_REVIEW"
	SignalOutreachSent SignalStatus = "OUTREACH_SENT"
	SignalConverted    SignalStatus = "CONVERTED"
)

type DraftStatus string

const (
	DraftPendingReview DraftStatus = "PENDING_REVIEW"
	DraftApproved      DraftStatus = "APPROVED"
	DraftEdited        DraftStatus = "EDITED"
	DraftRejected      DraftStatus = "REJECTED"
	DraftSent          DraftStatus = "SENT"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

type Intake struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	ServiceType    ServiceType  `json:"service_type"`
	UrgencyScore   int          `json:"urgency_score"`
	UrgencyFactors []string     `json:"urgency_factors"`
	HearingDate    *time.Time   `json:"hearing_date,omitempty"`
	CourtName      string       `json:"court_name,omitempty"`
	ContactMethod  string       `json:"contact_method,omitempty"`
	Archetype      Archetype    `json:"archetype,omitempty"`
	Status         IntakeStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

type ExternalSignal struct {
	ID                   string        `json:"id"`
	PlatformSource       string        `json:"platform_source"`
	PlatformPostID       string        `json:"platform_post_id"`
	PlatformURL          string        `json:"platform_url,omitempty"`
	AuthorUsername       string        `json:"author_username"`
	Content              string        `json:"content"`
	ContentHash          string        `json:"content_hash"`
	PostedAt             time.Time     `json:"posted_at"`
	DistressLevel        DistressLevel `json:"distress_level"`
	UrgencyScore         int           `json:"urgency_score"`
	HearingMentioned     bool          `json:"hearing_mentioned"`
	TimeframeDetected    string        `json:"timeframe_detected,omitempty"`
	SelfRepSignal        bool          `json:"self_rep_signal"`
	SafeguardingKeywords []string      `json:"safeguarding_keywords"`
	Summary              string        `json:"summary"`
	Status               SignalStatus  `json:"status"`
	ReviewedBy           string        `json:"reviewed_by,omitempty"`
	ReviewedAt           *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
}

type OutreachDraft struct {
	ID              string      `json:"id"`
	SignalID        string      `json:"signal_id"`
	DraftContent    string      `json:"draft_content"`
	Platform        string      `json:"platform"`
	Status          DraftStatus `json:"status"`
	EditedContent   string      `json:"edited_content,omitempty"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
	ReviewedBy      string      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

type OutreachAction struct {
	ID                string    `json:"id"`
	SignalID          string    `json:"signal_id"`
	DraftID           string    `json:"draft_id"`
	Action            string    `json:"action"`
	ActionType        string    `json:"action_type"`
	Outcome           string    `json:"outcome"`
	Notes             string    `json:"notes"`
	PerformedBy       string    `json:"performed_by"`
	ClicksDetected    bool      `json:"clicks_detected"`
	ConvertedToIntake bool      `json:"converted_to_intake"`
	CreatedAt         time.Time `json:"created_at"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Booking struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	IntakeID        string        `json:"intake_id"`
	ServiceType     ServiceType   `json:"service_type"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	DurationMinutes int           `json:"duration_minutes"`
	Notes           string        `json:"notes,omitempty"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

type ReferralStatus string

const (
	ReferralSent      ReferralStatus = "SENT"
	ReferralConverted ReferralStatus = "CONVERTED"
)

type Referral struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	ClientName       string         `json:"client_name"`
	ClientEmail      string         `json:"client_email,omitempty"`
	ClientPhone      string         `json:"client_phone,omitempty"`
	ServiceRequested string         `json:"service_requested"`
	Notes            string         `json:"notes,omitempty"`
	Status           ReferralStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
}

// EventLog is the append-only audit trail. Every state-changing operation
// writes exactly one entry.
type EventLog struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	IntakeID   string         `json:"intake_id,omitempty"`
	SignalID   string         `json:"signal_id,omitempty"`
	BookingID  string         `json:"booking_id,omitempty"`
	ReferralID string         `json:"referral_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type ComplianceLog struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	ActionType  string    `json:"action_type"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	PerformedBy string    `json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type EmailTemplate struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Active  bool   `json:"active"`
}
