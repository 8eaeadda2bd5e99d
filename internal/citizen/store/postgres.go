package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"idcard/internal/citizen/models"
	id "idcard/pkg/domain"
	"idcard/pkg/platform/sentinel"
	txcontext "idcard/pkg/platform/tx"
)

// PostgresStore persists citizen records in PostgreSQL. When the context
// carries a transaction (see PostgresTx) every statement runs inside it.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed citizen store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const citizenColumns = `
	id, citizen_id, business_key,
	first_name, middle_name, last_name, first_name_am, middle_name_am, last_name_am,
	date_of_birth, gender, gender_am, nationality, nationality_am, phone,
	region, region_am, zone, zone_am, woreda, woreda_am, kebele, kebele_am,
	photo_ref, fingerprint_ref, signature_ref,
	status, print_status, given_date, expire_date, registered_by, version, created_at, updated_at`

// listColumns blanks biometric references for list projections.
const listColumns = `
	id, citizen_id, business_key,
	first_name, middle_name, last_name, first_name_am, middle_name_am, last_name_am,
	date_of_birth, gender, gender_am, nationality, nationality_am, phone,
	region, region_am, zone, zone_am, woreda, woreda_am, kebele, kebele_am,
	'' AS photo_ref, '' AS fingerprint_ref, '' AS signature_ref,
	status, print_status, given_date, expire_date, registered_by, version, created_at, updated_at`

// Create inserts the record and its seeded history. Call it inside a
// transaction so the two writes commit together.
func (s *PostgresStore) Create(ctx context.Context, c *models.Citizen) error {
	if c == nil {
		return fmt.Errorf("citizen is required")
	}
	exec := s.execer(ctx)

	var retired bool
	err := exec.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM retired_citizen_ids WHERE identifier IN ($1, $2))`,
		citizenIDKey(c.CitizenID), c.BusinessKey,
	).Scan(&retired)
	if err != nil {
		return fmt.Errorf("check retired citizen ids: %w", err)
	}
	if retired {
		return fmt.Errorf("citizen_id %s was retired: %w", c.CitizenID, sentinel.ErrAlreadyUsed)
	}

	p := c.Profile
	_, err = exec.ExecContext(ctx, `
		INSERT INTO citizens (`+citizenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34)`,
		uuid.UUID(c.ID), c.CitizenID, c.BusinessKey,
		p.Name.First, p.Name.Middle, p.Name.Last, p.Name.FirstAm, p.Name.MiddleAm, p.Name.LastAm,
		p.DateOfBirth, p.Gender, p.GenderAm, p.Nationality, p.NationalityAm, p.Phone,
		p.Address.Region, p.Address.RegionAm, p.Address.Zone, p.Address.ZoneAm,
		p.Address.Woreda, p.Address.WoredaAm, p.Address.Kebele, p.Address.KebeleAm,
		c.Biometrics.Photo, c.Biometrics.Fingerprint, c.Biometrics.Signature,
		string(c.Status), string(c.PrintStatus), nullTime(c.GivenDate), nullTime(c.ExpireDate),
		c.RegisteredBy, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("citizen_id %s already registered: %w", c.CitizenID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert citizen: %w", err)
	}

	for i, entry := range c.StatusHistory {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO citizen_status_history (citizen_ref, seq, status, changed_by, changed_at)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.UUID(c.ID), i+1, string(entry.Status), entry.ChangedBy, entry.Timestamp,
		); err != nil {
			return fmt.Errorf("insert citizen history: %w", err)
		}
	}
	return nil
}

// FindByID loads a record with its history.
func (s *PostgresStore) FindByID(ctx context.Context, recordID id.CitizenID) (*models.Citizen, error) {
	return s.findOne(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE id = $1`, uuid.UUID(recordID))
}

// FindByIDForUpdate loads a record and locks its row until the surrounding
// transaction ends, so history appends follow commit order.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, recordID id.CitizenID) (*models.Citizen, error) {
	if _, ok := txcontext.From(ctx); !ok {
		return s.FindByID(ctx, recordID)
	}
	return s.findOne(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE id = $1 FOR UPDATE`, uuid.UUID(recordID))
}

// FindByBusinessKey returns the first record, by creation order, with the given key.
func (s *PostgresStore) FindByBusinessKey(ctx context.Context, key string) (*models.Citizen, error) {
	return s.findOne(ctx, `
		SELECT `+citizenColumns+` FROM citizens
		WHERE business_key = $1
		ORDER BY created_at ASC
		LIMIT 1`, key)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Citizen, error) {
	exec := s.execer(ctx)
	c, err := scanCitizen(exec.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find citizen: %w", err)
	}
	history, err := s.historyFor(ctx, exec, c.ID)
	if err != nil {
		return nil, err
	}
	c.StatusHistory = history
	return c, nil
}

// FindByIDs loads many records in one round trip. Missing ids are absent from the map.
func (s *PostgresStore) FindByIDs(ctx context.Context, ids []id.CitizenID) (map[id.CitizenID]*models.Citizen, error) {
	out := make(map[id.CitizenID]*models.Citizen, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	exec := s.execer(ctx)
	rows, err := exec.QueryContext(ctx,
		`SELECT `+citizenColumns+` FROM citizens WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("find citizens by ids: %w", err)
	}
	list, err := scanCitizens(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachHistory(ctx, exec, list); err != nil {
		return nil, err
	}
	for _, c := range list {
		out[c.ID] = c
	}
	return out, nil
}

// List returns matching records newest first.
func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.Citizen, error) {
	cols := listColumns
	if filter.IncludeBiometrics {
		cols = citizenColumns
	}
	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PrintStatus != nil {
		args = append(args, string(*filter.PrintStatus))
		where = append(where, fmt.Sprintf("print_status = $%d", len(args)))
	}
	if filter.Gender != "" {
		args = append(args, strings.TrimSpace(filter.Gender))
		where = append(where, fmt.Sprintf("lower(gender) = lower($%d)", len(args)))
	}

	query := `SELECT ` + cols + ` FROM citizens`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	exec := s.execer(ctx)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list citizens: %w", err)
	}
	list, err := scanCitizens(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachHistory(ctx, exec, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Update persists mutable fields with compare-and-swap on version. On success
// c.Version is advanced. citizen_id, business_key and history are never written.
func (s *PostgresStore) Update(ctx context.Context, c *models.Citizen) error {
	if c == nil {
		return fmt.Errorf("citizen is required")
	}
	exec := s.execer(ctx)
	p := c.Profile
	var newVersion int64
	err := exec.QueryRowContext(ctx, `
		UPDATE citizens SET
			first_name = $3, middle_name = $4, last_name = $5,
			first_name_am = $6, middle_name_am = $7, last_name_am = $8,
			date_of_birth = $9, gender = $10, gender_am = $11,
			nationality = $12, nationality_am = $13, phone = $14,
			region = $15, region_am = $16, zone = $17, zone_am = $18,
			woreda = $19, woreda_am = $20, kebele = $21, kebele_am = $22,
			photo_ref = $23, fingerprint_ref = $24, signature_ref = $25,
			status = $26, print_status = $27, given_date = $28, expire_date = $29,
			updated_at = $30, version = version + 1
		WHERE id = $1 AND version = $2 AND citizen_id = $31
		RETURNING version`,
		uuid.UUID(c.ID), c.Version,
		p.Name.First, p.Name.Middle, p.Name.Last, p.Name.FirstAm, p.Name.MiddleAm, p.Name.LastAm,
		p.DateOfBirth, p.Gender, p.GenderAm, p.Nationality, p.NationalityAm, p.Phone,
		p.Address.Region, p.Address.RegionAm, p.Address.Zone, p.Address.ZoneAm,
		p.Address.Woreda, p.Address.WoredaAm, p.Address.Kebele, p.Address.KebeleAm,
		c.Biometrics.Photo, c.Biometrics.Fingerprint, c.Biometrics.Signature,
		string(c.Status), string(c.PrintStatus), nullTime(c.GivenDate), nullTime(c.ExpireDate),
		c.UpdatedAt, c.CitizenID,
	).Scan(&newVersion)
	if err == nil {
		c.Version = newVersion
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update citizen: %w", err)
	}
	return s.classifyMissedUpdate(ctx, exec, c)
}

// classifyMissedUpdate explains why a guarded UPDATE touched no row.
func (s *PostgresStore) classifyMissedUpdate(ctx context.Context, exec dbExecutor, c *models.Citizen) error {
	var (
		storedCitizenID string
		storedVersion   int64
	)
	err := exec.QueryRowContext(ctx,
		`SELECT citizen_id, version FROM citizens WHERE id = $1`, uuid.UUID(c.ID),
	).Scan(&storedCitizenID, &storedVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return sentinel.ErrNotFound
	case err != nil:
		return fmt.Errorf("update citizen: %w", err)
	case storedCitizenID != c.CitizenID:
		return fmt.Errorf("citizen_id is immutable: %w", sentinel.ErrInvalidState)
	default:
		return fmt.Errorf("citizen %s at version %d, caller has %d: %w", c.ID, storedVersion, c.Version, sentinel.ErrConflict)
	}
}

// UpdateWithHistory runs Update and AppendHistory in one transaction. It
// joins the caller's transaction when the context carries one.
func (s *PostgresStore) UpdateWithHistory(ctx context.Context, c *models.Citizen, entry models.HistoryEntry) error {
	if _, ok := txcontext.From(ctx); ok {
		return s.updateWithHistory(ctx, c, entry)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin citizen update: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()
	if err := s.updateWithHistory(txcontext.WithTx(ctx, tx), c, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit citizen update: %w", err)
	}
	return nil
}

func (s *PostgresStore) updateWithHistory(ctx context.Context, c *models.Citizen, entry models.HistoryEntry) error {
	version := c.Version
	if err := s.Update(ctx, c); err != nil {
		return err
	}
	if err := s.AppendHistory(ctx, c.ID, entry); err != nil {
		c.Version = version
		return err
	}
	return nil
}

// AppendHistory appends one entry after the current last sequence number.
func (s *PostgresStore) AppendHistory(ctx context.Context, recordID id.CitizenID, entry models.HistoryEntry) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO citizen_status_history (citizen_ref, seq, status, changed_by, changed_at)
		SELECT c.id,
		       COALESCE((SELECT MAX(h.seq) FROM citizen_status_history h WHERE h.citizen_ref = c.id), 0) + 1,
		       $2, $3, $4
		FROM citizens c
		WHERE c.id = $1`,
		uuid.UUID(recordID), string(entry.Status), entry.ChangedBy, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append citizen history: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append citizen history rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes the record (history cascades) and retires its business identifiers.
func (s *PostgresStore) Delete(ctx context.Context, recordID id.CitizenID) error {
	exec := s.execer(ctx)
	var citizenID, businessKey string
	err := exec.QueryRowContext(ctx,
		`DELETE FROM citizens WHERE id = $1 RETURNING citizen_id, business_key`, uuid.UUID(recordID),
	).Scan(&citizenID, &businessKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("delete citizen: %w", err)
	}
	if _, err := exec.ExecContext(ctx, `
		INSERT INTO retired_citizen_ids (identifier) VALUES ($1), ($2)
		ON CONFLICT (identifier) DO NOTHING`,
		citizenIDKey(citizenID), businessKey,
	); err != nil {
		return fmt.Errorf("retire citizen id: %w", err)
	}
	return nil
}

// CountByStatus aggregates records by status and print status.
func (s *PostgresStore) CountByStatus(ctx context.Context) (models.Counts, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT status, print_status, COUNT(*)
		FROM citizens
		GROUP BY status, print_status`)
	if err != nil {
		return models.Counts{}, fmt.Errorf("count citizens: %w", err)
	}
	defer rows.Close()

	counts := models.NewCounts()
	for rows.Next() {
		var status, printStatus string
		var n int
		if err := rows.Scan(&status, &printStatus, &n); err != nil {
			return models.Counts{}, fmt.Errorf("scan citizen counts: %w", err)
		}
		counts.Total += n
		counts.Status[models.Status(status)] += n
		counts.PrintStatus[models.PrintStatus(printStatus)] += n
	}
	if err := rows.Err(); err != nil {
		return models.Counts{}, fmt.Errorf("iterate citizen counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) historyFor(ctx context.Context, exec dbExecutor, recordID id.CitizenID) ([]models.HistoryEntry, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT status, changed_by, changed_at
		FROM citizen_status_history
		WHERE citizen_ref = $1
		ORDER BY seq ASC`, uuid.UUID(recordID))
	if err != nil {
		return nil, fmt.Errorf("load citizen history: %w", err)
	}
	defer rows.Close()

	var history []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		var status string
		if err := rows.Scan(&status, &entry.ChangedBy, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan citizen history: %w", err)
		}
		entry.Status = models.Status(status)
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate citizen history: %w", err)
	}
	return history, nil
}

func (s *PostgresStore) attachHistory(ctx context.Context, exec dbExecutor, list []*models.Citizen) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]id.CitizenID, len(list))
	byID := make(map[id.CitizenID]*models.Citizen, len(list))
	for i, c := range list {
		ids[i] = c.ID
		byID[c.ID] = c
	}
	rows, err := exec.QueryContext(ctx, `
		SELECT citizen_ref, status, changed_by, changed_at
		FROM citizen_status_history
		WHERE citizen_ref = ANY($1::uuid[])
		ORDER BY citizen_ref, seq ASC`, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("load citizen histories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref uuid.UUID
		var status string
		var entry models.HistoryEntry
		if err := rows.Scan(&ref, &status, &entry.ChangedBy, &entry.Timestamp); err != nil {
			return fmt.Errorf("scan citizen histories: %w", err)
		}
		entry.Status = models.Status(status)
		if c, ok := byID[id.CitizenID(ref)]; ok {
			c.StatusHistory = append(c.StatusHistory, entry)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate citizen histories: %w", err)
	}
	return nil
}

type citizenRow interface {
	Scan(dest ...any) error
}

func scanCitizen(row citizenRow) (*models.Citizen, error) {
	var (
		c           models.Citizen
		recordID    uuid.UUID
		status      string
		printStatus string
		given       sql.NullTime
		expire      sql.NullTime
	)
	p := &c.Profile
	if err := row.Scan(
		&recordID, &c.CitizenID, &c.BusinessKey,
		&p.Name.First, &p.Name.Middle, &p.Name.Last, &p.Name.FirstAm, &p.Name.MiddleAm, &p.Name.LastAm,
		&p.DateOfBirth, &p.Gender, &p.GenderAm, &p.Nationality, &p.NationalityAm, &p.Phone,
		&p.Address.Region, &p.Address.RegionAm, &p.Address.Zone, &p.Address.ZoneAm,
		&p.Address.Woreda, &p.Address.WoredaAm, &p.Address.Kebele, &p.Address.KebeleAm,
		&c.Biometrics.Photo, &c.Biometrics.Fingerprint, &c.Biometrics.Signature,
		&status, &printStatus, &given, &expire, &c.RegisteredBy, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.ID = id.CitizenID(recordID)
	c.Status = models.Status(status)
	c.PrintStatus = models.PrintStatus(printStatus)
	c.GivenDate = timePtr(given)
	c.ExpireDate = timePtr(expire)
	return &c, nil
}

func scanCitizens(rows *sql.Rows) ([]*models.Citizen, error) {
	defer rows.Close()
	var out []*models.Citizen
	for rows.Next() {
		c, err := scanCitizen(rows)
		if err != nil {
			return nil, fmt.Errorf("scan citizen: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate citizens: %w", err)
	}
	return out, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func uuidStrings(ids []id.CitizenID) []string {
	out := make([]string, len(ids))
	for i, rid := range ids {
		out[i] = rid.String()
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
