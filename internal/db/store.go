// Package db implements the storage interface on Postgres via pgx.
package db

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"

	"github.com/family-support/backend/internal/errs"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/store"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const uniqueViolation = "23505"

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) CreateIntake(ctx context.Context, in models.Intake) error {
	factors, _ := json.Marshal(in.UrgencyFactors)
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO intakes (id, user_id, service_type, urgency_score, urgency_factors, hearing_date, court_name, contact_method, archetype, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, in.ID, in.UserID, in.ServiceType, in.UrgencyScore, factors, in.HearingDate, in.CourtName, in.ContactMethod, nullable(string(in.Archetype)), in.Status, in.CreatedAt)
	return err
}

func (s *Store) GetIntake(ctx context.Context, id string) (models.Intake, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, user_id, service_type, urgency_score, urgency_factors, hearing_date, court_name, contact_method, archetype, status, created_at
		FROM intakes WHERE id = $1
	`, id)
	in, err := scanIntake(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Intake{}, errs.NotFound("intake not found", goerr.V("id", id))
	}
	return in, err
}

func (s *Store) ListIntakes(ctx context.Context, f store.IntakeFilter) ([]models.Intake, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": f.Status})
	}
	if f.ServiceType != "" {
		where = append(where, sq.Eq{"service_type": f.ServiceType})
	}
	if f.MinUrgency > 0 {
		where = append(where, sq.GtOrEq{"urgency_score": f.MinUrgency})
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	q := psql.Select("id", "user_id", "service_type", "urgency_score", "urgency_factors", "hearing_date", "court_name", "contact_method", "archetype", "status", "created_at").
		From("intakes").
		OrderBy("urgency_score DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	countQ := psql.Select("COUNT(*)").From("intakes")
	if len(where) > 0 {
		q = q.Where(where)
		countQ = countQ.Where(where)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Intake
	for rows.Next() {
		in, err := scanIntake(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	sqlStr, args, err = countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.Pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) UpdateIntakeStatus(ctx context.Context, id string, status models.IntakeStatus) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE intakes SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("intake not found", goerr.V("id", id))
	}
	return nil
}

func (s *Store) UrgentIntakes(ctx context.Context, minScore, limit int) ([]models.Intake, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, user_id, service_type, urgency_score, urgency_factors, hearing_date, court_name, contact_method, archetype, status, created_at
		FROM intakes
		WHERE urgency_score >= $1 AND status IN ('PENDING', 'QUALIFIED')
		ORDER BY urgency_score DESC
		LIMIT $2
	`, minScore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Intake
	for rows.Next() {
		in, err := scanIntake(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *Store) IntakeStats(ctx context.Context, urgentScore int) (store.IntakeStats, error) {
	stats := store.IntakeStats{ByService: map[string]int{}, ByArchetype: map[string]int{}}

	row := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE urgency_score >= $1)
		FROM intakes
	`, urgentScore)
	if err := row.Scan(&stats.Total, &stats.Pending, &stats.Urgent); err != nil {
		return stats, err
	}

	if err := s.groupCount(ctx, `SELECT service_type, COUNT(*) FROM intakes GROUP BY service_type`, stats.ByService); err != nil {
		return stats, err
	}
	if err := s.groupCount(ctx, `SELECT archetype, COUNT(*) FROM intakes WHERE archetype IS NOT NULL GROUP BY archetype`, stats.ByArchetype); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Store) CreateSignal(ctx context.Context, sig models.ExternalSignal) error {
	keywords, _ := json.Marshal(sig.SafeguardingKeywords)
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO external_signals (id, platform_source, platform_post_id, platform_url, author_username, content, content_hash, posted_at,
			distress_level, urgency_score, hearing_mentioned, timeframe_detected, self_rep_signal, safeguarding_keywords, summary, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, sig.ID, sig.PlatformSource, sig.PlatformPostID, sig.PlatformURL, sig.AuthorUsername, sig.Content, sig.ContentHash, sig.PostedAt,
		sig.DistressLevel, sig.UrgencyScore, sig.HearingMentioned, nullable(sig.TimeframeDetected), sig.SelfRepSignal, keywords, sig.Summary, sig.Status, sig.CreatedAt)
	if err != nil {
		// The unique index on content_hash makes lookup-then-create races
		// collapse into a duplicate-found outcome.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrDuplicateContent
		}
		return err
	}
	return nil
}

func (s *Store) GetSignal(ctx context.Context, id string) (models.ExternalSignal, error) {
	row := s.Pool.QueryRow(ctx, selectSignal+` WHERE id = $1`, id)
	sig, err := scanSignal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ExternalSignal{}, errs.NotFound("signal not found", goerr.V("id", id))
	}
	return sig, err
}

func (s *Store) GetSignalByHash(ctx context.Context, hash string) (models.ExternalSignal, bool, error) {
	row := s.Pool.QueryRow(ctx, selectSignal+` WHERE content_hash = $1`, hash)
	sig, err := scanSignal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ExternalSignal{}, false, nil
	}
	if err != nil {
		return models.ExternalSignal{}, false, err
	}
	return sig, true, nil
}

func (s *Store) ListSignals(ctx context.Context, f store.SignalFilter) ([]models.ExternalSignal, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": f.Status})
	}
	if f.DistressLevel != "" {
		where = append(where, sq.Eq{"distress_level": f.DistressLevel})
	}
	if f.PlatformSource != "" {
		where = append(where, sq.Eq{"platform_source": f.PlatformSource})
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	q := psql.Select(signalColumns...).
		From("external_signals").
		OrderBy("urgency_score DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	countQ := psql.Select("COUNT(*)").From("external_signals")
	if len(where) > 0 {
		q = q.Where(where)
		countQ = countQ.Where(where)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.ExternalSignal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	sqlStr, args, err = countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.Pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) UpdateSignalStatus(ctx context.Context, id string, status models.SignalStatus, reviewedBy string) error {
	var tag pgconn.CommandTag
	var err error
	if reviewedBy != "" {
		tag, err = s.Pool.Exec(ctx, `UPDATE external_signals SET status = $1, reviewed_by = $2, reviewed_at = NOW() WHERE id = $3`, status, reviewedBy, id)
	} else {
		tag, err = s.Pool.Exec(ctx, `UPDATE external_signals SET status = $1 WHERE id = $2`, status, id)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("signal not found", goerr.V("id", id))
	}
	return nil
}

func (s *Store) SignalStats(ctx context.Context) (store.SignalStats, error) {
	stats := store.SignalStats{ByDistress: map[string]int{}, ByStatus: map[string]int{}, ByPlatform: map[string]int{}}

	row := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'CONVERTED') FROM external_signals
	`)
	if err := row.Scan(&stats.Total, &stats.Converted); err != nil {
		return stats, err
	}

	if err := s.groupCount(ctx, `SELECT distress_level, COUNT(*) FROM external_signals GROUP BY distress_level`, stats.ByDistress); err != nil {
		return stats, err
	}
	if err := s.groupCount(ctx, `SELECT status, COUNT(*) FROM external_signals GROUP BY status`, stats.ByStatus); err != nil {
		return stats, err
	}
	if err := s.groupCount(ctx, `SELECT platform_source, COUNT(*) FROM external_signals GROUP BY platform_source`, stats.ByPlatform); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Store) CreateDraft(ctx context.Context, d models.OutreachDraft) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO outreach_drafts (id, signal_id, draft_content, platform, status, edited_content, rejection_reason, reviewed_by, reviewed_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, d.ID, d.SignalID, d.DraftContent, d.Platform, d.Status, nullable(d.EditedContent), nullable(d.RejectionReason), nullable(d.ReviewedBy), d.ReviewedAt, d.CreatedAt)
	return err
}

func (s *Store) GetDraft(ctx context.Context, id string) (models.OutreachDraft, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, signal_id, draft_content, platform, status, edited_content, rejection_reason, reviewed_by, reviewed_at, created_at
		FROM outreach_drafts WHERE id = $1
	`, id)
	d, err := scanDraft(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OutreachDraft{}, errs.NotFound("draft not found", goerr.V("id", id))
	}
	return d, err
}

func (s *Store) UpdateDraft(ctx context.Context, d models.OutreachDraft) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE outreach_drafts
		SET status = $1, edited_content = $2, rejection_reason = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $6
	`, d.Status, nullable(d.EditedContent), nullable(d.RejectionReason), nullable(d.ReviewedBy), d.ReviewedAt, d.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("draft not found", goerr.V("id", d.ID))
	}
	return nil
}

func (s *Store) ListDrafts(ctx context.Context, f store.DraftFilter) ([]models.OutreachDraft, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": f.Status})
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	q := psql.Select("id", "signal_id", "draft_content", "platform", "status", "edited_content", "rejection_reason", "reviewed_by", "reviewed_at", "created_at").
		From("outreach_drafts").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	countQ := psql.Select("COUNT(*)").From("outreach_drafts")
	if len(where) > 0 {
		q = q.Where(where)
		countQ = countQ.Where(where)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.OutreachDraft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	sqlStr, args, err = countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.Pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) CreateOutreachAction(ctx context.Context, a models.OutreachAction) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO outreach_actions (id, signal_id, draft_id, action, action_type, outcome, notes, performed_by, clicks_detected, converted_to_intake, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, a.ID, a.SignalID, a.DraftID, a.Action, a.ActionType, a.Outcome, a.Notes, a.PerformedBy, a.ClicksDetected, a.ConvertedToIntake, a.CreatedAt)
	return err
}

func (s *Store) OutreachStats(ctx context.Context) (store.OutreachStats, error) {
	stats := store.OutreachStats{ByStatus: map[string]int{}}

	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM outreach_drafts`).Scan(&stats.TotalDrafts); err != nil {
		return stats, err
	}
	if err := s.groupCount(ctx, `SELECT status, COUNT(*) FROM outreach_drafts GROUP BY status`, stats.ByStatus); err != nil {
		return stats, err
	}
	row := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE clicks_detected),
			COUNT(*) FILTER (WHERE converted_to_intake)
		FROM outreach_actions
	`)
	if err := row.Scan(&stats.SentActions, &stats.TotalClicks, &stats.Conversions); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, phone, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, u.ID, u.Email, u.FirstName, u.LastName, nullable(u.Phone), u.Role, u.Active, u.CreatedAt)
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, phone, role, active, created_at FROM users WHERE id = $1
	`, id)
	var u models.User
	var phone *string
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &phone, &u.Role, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, errs.NotFound("user not found", goerr.V("id", id))
	}
	if err != nil {
		return models.User{}, err
	}
	u.Phone = deref(phone)
	return u, nil
}

func (s *Store) CreateBooking(ctx context.Context, b models.Booking) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO bookings (id, user_id, intake_id, service_type, scheduled_at, duration_minutes, notes, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, b.ID, b.UserID, b.IntakeID, b.ServiceType, b.ScheduledAt, b.DurationMinutes, b.Notes, b.Status, b.CreatedAt)
	return err
}

func (s *Store) ListBookings(ctx context.Context, f store.BookingFilter) ([]models.Booking, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": f.Status})
	}
	if f.UserID != "" {
		where = append(where, sq.Eq{"user_id": f.UserID})
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	q := psql.Select("id", "user_id", "intake_id", "service_type", "scheduled_at", "duration_minutes", "notes", "status", "created_at").
		From("bookings").
		OrderBy("scheduled_at ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	countQ := psql.Select("COUNT(*)").From("bookings")
	if len(where) > 0 {
		q = q.Where(where)
		countQ = countQ.Where(where)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.IntakeID, &b.ServiceType, &b.ScheduledAt, &b.DurationMinutes, &b.Notes, &b.Status, &b.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	sqlStr, args, err = countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.Pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) CreateReferral(ctx context.Context, r models.Referral) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO referrals (id, user_id, client_name, client_email, client_phone, service_requested, notes, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, r.ID, r.UserID, r.ClientName, nullable(r.ClientEmail), nullable(r.ClientPhone), r.ServiceRequested, r.Notes, r.Status, r.CreatedAt)
	return err
}

func (s *Store) ListReferrals(ctx context.Context, f store.ReferralFilter) ([]models.Referral, int, error) {
	where := sq.And{}
	if f.UserID != "" {
		where = append(where, sq.Eq{"user_id": f.UserID})
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	q := psql.Select("id", "user_id", "client_name", "client_email", "client_phone", "service_requested", "notes", "status", "created_at").
		From("referrals").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	countQ := psql.Select("COUNT(*)").From("referrals")
	if len(where) > 0 {
		q = q.Where(where)
		countQ = countQ.Where(where)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Referral
	for rows.Next() {
		var r models.Referral
		var email, phone *string
		if err := rows.Scan(&r.ID, &r.UserID, &r.ClientName, &email, &phone, &r.ServiceRequested, &r.Notes, &r.Status, &r.CreatedAt); err != nil {
			return nil, 0, err
		}
		r.ClientEmail = deref(email)
		r.ClientPhone = deref(phone)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	sqlStr, args, err = countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.Pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) GetEmailTemplate(ctx context.Context, name string) (models.EmailTemplate, error) {
	row := s.Pool.QueryRow(ctx, `SELECT name, subject, body, active FROM email_templates WHERE name = $1`, name)
	var tpl models.EmailTemplate
	err := row.Scan(&tpl.Name, &tpl.Subject, &tpl.Body, &tpl.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.EmailTemplate{}, errs.NotFound("template not found", goerr.V("name", name))
	}
	return tpl, err
}

func (s *Store) SeedEmailTemplates(ctx context.Context, tpls []models.EmailTemplate) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, tpl := range tpls {
			_, err := tx.Exec(ctx, `
				INSERT INTO email_templates (name, subject, body, active)
				VALUES ($1,$2,$3,$4)
				ON CONFLICT (name) DO NOTHING
			`, tpl.Name, tpl.Subject, tpl.Body, tpl.Active)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AppendEvent(ctx context.Context, e models.EventLog) error {
	payload, _ := json.Marshal(e.Payload)
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, intake_id, signal_id, booking_id, referral_id, payload, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, e.EventType, nullable(e.IntakeID), nullable(e.SignalID), nullable(e.BookingID), nullable(e.ReferralID), payload)
	return err
}

func (s *Store) AppendCompliance(ctx context.Context, c models.ComplianceLog) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO compliance_logs (action, action_type, entity_type, entity_id, performed_by, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
	`, c.Action, c.ActionType, c.EntityType, c.EntityID, c.PerformedBy)
	return err
}

func (s *Store) groupCount(ctx context.Context, query string, dest map[string]int) error {
	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
}

const selectSignal = `
	SELECT id, platform_source, platform_post_id, platform_url, author_username, content, content_hash, posted_at,
		distress_level, urgency_score, hearing_mentioned, timeframe_detected, self_rep_signal, safeguarding_keywords,
		summary, status, reviewed_by, reviewed_at, created_at
	FROM external_signals`

var signalColumns = []string{
	"id", "platform_source", "platform_post_id", "platform_url", "author_username", "content", "content_hash", "posted_at",
	"distress_level", "urgency_score", "hearing_mentioned", "timeframe_detected", "self_rep_signal", "safeguarding_keywords",
	"summary", "status", "reviewed_by", "reviewed_at", "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntake(row rowScanner) (models.Intake, error) {
	var in models.Intake
	var factors []byte
	var courtName, contactMethod, archetype *string
	if err := row.Scan(&in.ID, &in.UserID, &in.ServiceType, &in.UrgencyScore, &factors, &in.HearingDate, &courtName, &contactMethod, &archetype, &in.Status, &in.CreatedAt); err != nil {
		return models.Intake{}, err
	}
	if len(factors) > 0 {
		_ = json.Unmarshal(factors, &in.UrgencyFactors)
	}
	in.CourtName = deref(courtName)
	in.ContactMethod = deref(contactMethod)
	in.Archetype = models.Archetype(deref(archetype))
	return in, nil
}

func scanSignal(row rowScanner) (models.ExternalSignal, error) {
	var sig models.ExternalSignal
	var keywords []byte
	var timeframe, reviewedBy *string
	if err := row.Scan(&sig.ID, &sig.PlatformSource, &sig.PlatformPostID, &sig.PlatformURL, &sig.AuthorUsername, &sig.Content, &sig.ContentHash, &sig.PostedAt,
		&sig.DistressLevel, &sig.UrgencyScore, &sig.HearingMentioned, &timeframe, &sig.SelfRepSignal, &keywords,
		&sig.Summary, &sig.Status, &reviewedBy, &sig.ReviewedAt, &sig.CreatedAt); err != nil {
		return models.ExternalSignal{}, err
	}
	if len(keywords) > 0 {
		_ = json.Unmarshal(keywords, &sig.SafeguardingKeywords)
	}
	sig.TimeframeDetected = deref(timeframe)
	sig.ReviewedBy = deref(reviewedBy)
	return sig, nil
}

func scanDraft(row rowScanner) (models.OutreachDraft, error) {
	var d models.OutreachDraft
	var edited, reason, reviewedBy *string
	if err := row.Scan(&d.ID, &d.SignalID, &d.DraftContent, &d.Platform, &d.Status, &edited, &reason, &reviewedBy, &d.ReviewedAt, &d.CreatedAt); err != nil {
		return models.OutreachDraft{}, err
	}
	d.EditedContent = deref(edited)
	d.RejectionReason = deref(reason)
	d.ReviewedBy = deref(reviewedBy)
	return d, nil
}

func pageBounds(page, limit int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
