// Package store defines the persistence interface consumed by the services.
// Implementations: internal/db (Postgres via pgx) and the in-memory store in
// this package, used by tests and by the server when no database is
// configured.
package store

import (
	"context"
	"errors"

	"github.com/family-support/backend/internal/models"
)

// ErrDuplicateContent reports a content-hash conflict on signal creation.
// Callers treat it as "duplicate found", not as a failure.
var ErrDuplicateContent = errors.New("duplicate signal content")

type IntakeFilter struct {
	Status      models.IntakeStatus
	ServiceType models.ServiceType
	MinUrgency  int
	Page        int
	Limit       int
}

type SignalFilter struct {
	Status         models.SignalStatus
	DistressLevel  models.DistressLevel
	PlatformSource string
	Page           int
	Limit          int
}

type DraftFilter struct {
	Status models.DraftStatus
	Page   int
	Limit  int
}

type BookingFilter struct {
	Status models.BookingStatus
	UserID string
	Page   int
	Limit  int
}

type ReferralFilter struct {
	UserID string
	Page   int
	Limit  int
}

type IntakeStats struct {
	Total       int            `json:"total"`
	Pending     int            `json:"pending"`
	Urgent      int            `json:"urgent"`
	ByService   map[string]int `json:"by_service"`
	ByArchetype map[string]int `json:"by_archetype"`
}

type SignalStats struct {
	Total      int            `json:"total"`
	ByDistress map[string]int `json:"by_distress_level"`
	ByStatus   map[string]int `json:"by_status"`
	ByPlatform map[string]int `json:"by_platform"`
	Converted  int            `json:"converted"`
}

type OutreachStats struct {
	TotalDrafts int            `json:"total_drafts"`
	ByStatus    map[string]int `json:"by_status"`
	SentActions int            `json:"sent_actions"`
	TotalClicks int            `json:"total_clicks"`
	Conversions int            `json:"conversions"`
}

type Store interface {
	CreateIntake(ctx context.Context, in models.Intake) error
	GetIntake(ctx context.Context, id string) (models.Intake, error)
	ListIntakes(ctx context.Context, f IntakeFilter) ([]models.Intake, int, error)
	UpdateIntakeStatus(ctx context.Context, id string, status models.IntakeStatus) error
	UrgentIntakes(ctx context.Context, minScore, limit int) ([]models.Intake, error)
	IntakeStats(ctx context.Context, urgentScore int) (IntakeStats, error)

	// CreateSignal fails with ErrDuplicateContent when another signal with
	// the same content hash already exists; the check and the insert are
	// atomic.
	CreateSignal(ctx context.Context, sig models.ExternalSignal) error
	GetSignal(ctx context.Context, id string) (models.ExternalSignal, error)
	GetSignalByHash(ctx context.Context, hash string) (models.ExternalSignal, bool, error)
	ListSignals(ctx context.Context, f SignalFilter) ([]models.ExternalSignal, int, error)
	UpdateSignalStatus(ctx context.Context, id string, status models.SignalStatus, reviewedBy string) error
	SignalStats(ctx context.Context) (SignalStats, error)

	CreateDraft(ctx context.Context, d models.OutreachDraft) error
	GetDraft(ctx context.Context, id string) (models.OutreachDraft, error)
	UpdateDraft(ctx context.Context, d models.OutreachDraft) error
	ListDrafts(ctx context.Context, f DraftFilter) ([]models.OutreachDraft, int, error)
	CreateOutreachAction(ctx context.Context, a models.OutreachAction) error
	OutreachStats(ctx context.Context) (OutreachStats, error)

	CreateUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)

	CreateBooking(ctx context.Context, b models.Booking) error
	ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, int, error)
	CreateReferral(ctx context.Context, r models.Referral) error
	ListReferrals(ctx context.Context, f ReferralFilter) ([]models.Referral, int, error)

	GetEmailTemplate(ctx context.Context, name string) (models.EmailTemplate, error)
	SeedEmailTemplates(ctx context.Context, tpls []models.EmailTemplate) error

	AppendEvent(ctx context.Context, e models.EventLog) error
	AppendCompliance(ctx context.Context, c models.ComplianceLog) error

	Ping(ctx context.Context) error
}
