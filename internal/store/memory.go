package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/family-support/backend/internal/errs"
	"github.com/family-support/backend/internal/models"
)

// Memory is the in-process Store. All maps are guarded by one mutex; the
// hash index makes signal creation atomic with the duplicate check.
type Memory struct {
	mu         sync.Mutex
	intakes    map[string]models.Intake
	signals    map[string]models.ExternalSignal
	signalHash map[string]string // content hash -> signal id
	drafts     map[string]models.OutreachDraft
	actions    map[string]models.OutreachAction
	users      map[string]models.User
	bookings   map[string]models.Booking
	referrals  map[string]models.Referral
	templates  map[string]models.EmailTemplate
	events     []models.EventLog
	compliance []models.ComplianceLog
}

func NewMemory() *Memory {
	return &Memory{
		intakes:    make(map[string]models.Intake),
		signals:    make(map[string]models.ExternalSignal),
		signalHash: make(map[string]string),
		drafts:     make(map[string]models.OutreachDraft),
		actions:    make(map[string]models.OutreachAction),
		users:      make(map[string]models.User),
		bookings:   make(map[string]models.Booking),
		referrals:  make(map[string]models.Referral),
		templates:  make(map[string]models.EmailTemplate),
	}
}

func (m *Memory) CreateIntake(ctx context.Context, in models.Intake) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intakes[in.ID] = in
	return nil
}

func (m *Memory) GetIntake(ctx context.Context, id string) (models.Intake, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intakes[id]
	if !ok {
		return models.Intake{}, errs.NotFound("intake not found", goerr.V("id", id))
	}
	return in, nil
}

func (m *Memory) ListIntakes(ctx context.Context, f IntakeFilter) ([]models.Intake, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Intake
	for _, in := range m.intakes {
		if f.Status != "" && in.Status != f.Status {
			continue
		}
		if f.ServiceType != "" && in.ServiceType != f.ServiceType {
			continue
		}
		if f.MinUrgency > 0 && in.UrgencyScore < f.MinUrgency {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UrgencyScore != out[j].UrgencyScore {
			return out[i].UrgencyScore > out[j].UrgencyScore
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := len(out)
	return paginate(out, f.Page, f.Limit), total, nil
}

func (m *Memory) UpdateIntakeStatus(ctx context.Context, id string, status models.IntakeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intakes[id]
	if !ok {
		return errs.NotFound("intake not found", goerr.V("id", id))
	}
	in.Status = status
	m.intakes[id] = in
	return nil
}

func (m *Memory) UrgentIntakes(ctx context.Context, minScore, limit int) ([]models.Intake, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Intake
	for _, in := range m.intakes {
		if in.UrgencyScore < minScore {
			continue
		}
		if in.Status != models.IntakePending && in.Status != models.IntakeQualified {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UrgencyScore > out[j].UrgencyScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) IntakeStats(ctx context.Context, urgentScore int) (IntakeStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := IntakeStats{ByService: map[string]int{}, ByArchetype: map[string]int{}}
	for _, in := range m.intakes {
		stats.Total++
		if in.Status == models.IntakePending {
			stats.Pending++
		}
		if in.UrgencyScore >= urgentScore {
			stats.Urgent++
		}
		stats.ByService[string(in.ServiceType)]++
		if in.Archetype != "" {
			stats.ByArchetype[string(in.Archetype)]++
		}
	}
	return stats, nil
}

func (m *Memory) CreateSignal(ctx context.Context, sig models.ExternalSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.signalHash[sig.ContentHash]; exists {
		return ErrDuplicateContent
	}
	m.signals[sig.ID] = sig
	m.signalHash[sig.ContentHash] = sig.ID
	return nil
}

func (m *Memory) GetSignal(ctx context.Context, id string) (models.ExternalSignal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig, ok := m.signals[id]
	if !ok {
		return models.ExternalSignal{}, errs.NotFound("signal not found", goerr.V("id", id))
	}
	return sig, nil
}

func (m *Memory) GetSignalByHash(ctx context.Context, hash string) (models.ExternalSignal, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.signalHash[hash]
	if !ok {
		return models.ExternalSignal{}, false, nil
	}
	return m.signals[id], true, nil
}

func (m *Memory) ListSignals(ctx context.Context, f SignalFilter) ([]models.ExternalSignal, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.ExternalSignal
	for _, sig := range m.signals {
		if f.Status != "" && sig.Status != f.Status {
			continue
		}
		if f.DistressLevel != "" && sig.DistressLevel != f.DistressLevel {
			continue
		}
		if f.PlatformSource != "" && sig.PlatformSource != f.PlatformSource {
			continue
		}
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UrgencyScore != out[j].UrgencyScore {
			return out[i].UrgencyScore > out[j].UrgencyScore
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := len(out)
	return paginate(out, f.Page, f.Limit), total, nil
}

func (m *Memory) UpdateSignalStatus(ctx context.Context, id string, status models.SignalStatus, reviewedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig, ok := m.signals[id]
	if !ok {
		return errs.NotFound("signal not found", goerr.V("id", id))
	}
	sig.Status = status
	if reviewedBy != "" {
		now := time.Now().UTC()
		sig.ReviewedBy = reviewedBy
		sig.ReviewedAt = &now
	}
	m.signals[id] = sig
	return nil
}

func (m *Memory) SignalStats(ctx context.Context) (SignalStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := SignalStats{ByDistress: map[string]int{}, ByStatus: map[string]int{}, ByPlatform: map[string]int{}}
	for _, sig := range m.signals {
		stats.Total++
		stats.ByDistress[string(sig.DistressLevel)]++
		stats.ByStatus[string(sig.Status)]++
		stats.ByPlatform[sig.PlatformSource]++
		if sig.Status == models.SignalConverted {
			stats.Converted++
		}
	}
	return stats, nil
}

func (m *Memory) CreateDraft(ctx context.Context, d models.OutreachDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.ID] = d
	return nil
}

func (m *Memory) GetDraft(ctx context.Context, id string) (models.OutreachDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return models.OutreachDraft{}, errs.NotFound("draft not found", goerr.V("id", id))
	}
	return d, nil
}

func (m *Memory) UpdateDraft(ctx context.Context, d models.OutreachDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[d.ID]; !ok {
		return errs.NotFound("draft not found", goerr.V("id", d.ID))
	}
	m.drafts[d.ID] = d
	return nil
}

func (m *Memory) ListDrafts(ctx context.Context, f DraftFilter) ([]models.OutreachDraft, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.OutreachDraft
	for _, d := range m.drafts {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	return paginate(out, f.Page, f.Limit), total, nil
}

func (m *Memory) CreateOutreachAction(ctx context.Context, a models.OutreachAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[a.ID] = a
	return nil
}

func (m *Memory) OutreachStats(ctx context.Context) (OutreachStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := OutreachStats{ByStatus: map[string]int{}}
	for _, d := range m.drafts {
		stats.TotalDrafts++
		stats.ByStatus[string(d.Status)]++
	}
	for _, a := range m.actions {
		stats.SentActions++
		if a.ClicksDetected {
			stats.TotalClicks++
		}
		if a.ConvertedToIntake {
			stats.Conversions++
		}
	}
	return stats, nil
}

func (m *Memory) CreateUser(ctx context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, errs.NotFound("user not found", goerr.V("id", id))
	}
	return u, nil
}

func (m *Memory) CreateBooking(ctx context.Context, b models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}

func (m *Memory) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Booking
	for _, b := range m.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	total := len(out)
	return paginate(out, f.Page, f.Limit), total, nil
}

func (m *Memory) CreateReferral(ctx context.Context, r models.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.referrals[r.ID] = r
	return nil
}

func (m *Memory) ListReferrals(ctx context.Context, f ReferralFilter) ([]models.Referral, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Referral
	for _, r := range m.referrals {
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	return paginate(out, f.Page, f.Limit), total, nil
}

func (m *Memory) GetEmailTemplate(ctx context.Context, name string) (models.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tpl, ok := m.templates[name]
	if !ok {
		return models.EmailTemplate{}, errs.NotFound("template not found", goerr.V("name", name))
	}
	return tpl, nil
}

func (m *Memory) SeedEmailTemplates(ctx context.Context, tpls []models.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tpl := range tpls {
		if _, exists := m.templates[tpl.Name]; !exists {
			m.templates[tpl.Name] = tpl
		}
	}
	return nil
}

func (m *Memory) AppendEvent(ctx context.Context, e models.EventLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) AppendCompliance(ctx context.Context, c models.ComplianceLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.compliance = append(m.compliance, c)
	return nil
}

// Events returns a copy of the event log, oldest first. Test helper.
func (m *Memory) Events() []models.EventLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.EventLog, len(m.events))
	copy(out, m.events)
	return out
}

// ComplianceEntries returns a copy of the compliance log. Test helper.
func (m *Memory) ComplianceEntries() []models.ComplianceLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ComplianceLog, len(m.compliance))
	copy(out, m.compliance)
	return out
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
