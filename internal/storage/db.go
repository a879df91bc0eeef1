package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB is the Postgres-backed record store. Schema lives in scripts/schema.sql.
type DB struct {
	connection *sql.DB
}

var _ Store = (*DB)(nil)

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		log.Println("Error closing the database connection:", err)
	}
}

// GetConnection returns the underlying database connection for advanced queries
func (db *DB) GetConnection() *sql.DB {
	return db.connection
}

// CreateBatch inserts the batch plus every candidate and claim in one
// transaction. Any failure rolls the whole upload back.
func (db *DB) CreateBatch(ctx context.Context, batch *Batch, candidates []*Candidate) error {
	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	batch.ID = uuid.NewString()
	batch.Status = StatusPending
	batch.UploadedAt = now
	batch.TotalCandidates = len(candidates)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO candidate_batches (id, batch_name, recruiter_id, upload_type, status, uploaded_at, total_candidates, verified_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)`,
		batch.ID, batch.Name, batch.RecruiterID, batch.UploadType, batch.Status, batch.UploadedAt, batch.TotalCandidates,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	for _, c := range candidates {
		c.ID = uuid.NewString()
		c.BatchID = batch.ID
		c.VerificationStatus = StatusPending
		c.CreatedAt = now
		c.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO candidates (id, batch_id, full_name, email, phone, linkedin_url, raw_cv_data, verification_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			c.ID, c.BatchID, c.FullName, c.Email, c.Phone, c.LinkedInURL, nullableJSON(c.RawData), c.VerificationStatus, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert candidate %q: %w", c.FullName, err)
		}

		for i := range c.Employment {
			e := &c.Employment[i]
			e.ID = uuid.NewString()
			e.CandidateID = c.ID
			e.ClaimStatus = ClaimPending

			_, err = tx.ExecContext(ctx, `
				INSERT INTO employment (id, candidate_id, company_name, position, start_date, end_date, is_current, description, claim_status, ordinal)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				e.ID, e.CandidateID, e.CompanyName, e.Position, e.StartDate, e.EndDate, e.IsCurrent, e.Description, e.ClaimStatus, e.Ordinal,
			)
			if err != nil {
				return fmt.Errorf("insert employment for %q: %w", c.FullName, err)
			}
		}

		for i := range c.Education {
			e := &c.Education[i]
			e.ID = uuid.NewString()
			e.CandidateID = c.ID
			e.ClaimStatus = ClaimPending

			_, err = tx.ExecContext(ctx, `
				INSERT INTO education (id, candidate_id, institution, degree, field_of_study, start_date, end_date, is_current, claim_status, ordinal)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				e.ID, e.CandidateID, e.Institution, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate, e.IsCurrent, e.ClaimStatus, e.Ordinal,
			)
			if err != nil {
				return fmt.Errorf("insert education for %q: %w", c.FullName, err)
			}
		}
	}

	return tx.Commit()
}

func (db *DB) GetBatch(ctx context.Context, id string) (*Batch, error) {
	b := &Batch{}
	row := db.connection.QueryRowContext(ctx, `
		SELECT id, batch_name, recruiter_id, upload_type, status, uploaded_at, completed_at, total_candidates, verified_count
		FROM candidate_batches WHERE id = $1`, id)
	err := row.Scan(&b.ID, &b.Name, &b.RecruiterID, &b.UploadType, &b.Status, &b.UploadedAt, &b.CompletedAt, &b.TotalCandidates, &b.VerifiedCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) ListBatches(ctx context.Context, recruiterID string) ([]*Batch, error) {
	query := `
		SELECT id, batch_name, recruiter_id, upload_type, status, uploaded_at, completed_at, total_candidates, verified_count
		FROM candidate_batches`
	var args []interface{}
	if recruiterID != "" {
		query += ` WHERE recruiter_id = $1`
		args = append(args, recruiterID)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := db.connection.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Batch
	for rows.Next() {
		b := &Batch{}
		if err := rows.Scan(&b.ID, &b.Name, &b.RecruiterID, &b.UploadType, &b.Status, &b.UploadedAt, &b.CompletedAt, &b.TotalCandidates, &b.VerifiedCount); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (db *DB) ListBatchCandidates(ctx context.Context, batchID string) ([]*Candidate, error) {
	rows, err := db.connection.QueryContext(ctx, candidateColumns+` WHERE batch_id = $1 ORDER BY created_at`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandidates(rows)
}

func (db *DB) DeleteBatch(ctx context.Context, id string) error {
	// candidates and claims go with the batch via ON DELETE CASCADE
	res, err := db.connection.ExecContext(ctx, `DELETE FROM candidate_batches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const candidateColumns = `
	SELECT id, batch_id, full_name, email, phone, linkedin_url, raw_cv_data, verifier_id, verification_status, verified_at, created_at, updated_at
	FROM candidates`

func scanCandidate(row *sql.Row) (*Candidate, error) {
	c := &Candidate{}
	var raw []byte
	var verifierID sql.NullString
	err := row.Scan(&c.ID, &c.BatchID, &c.FullName, &c.Email, &c.Phone, &c.LinkedInURL, &raw, &verifierID, &c.VerificationStatus, &c.VerifiedAt, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.RawData = raw
	c.VerifierID = verifierID.String
	return c, nil
}

func scanCandidates(rows *sql.Rows) ([]*Candidate, error) {
	var res []*Candidate
	for rows.Next() {
		c := &Candidate{}
		var raw []byte
		var verifierID sql.NullString
		if err := rows.Scan(&c.ID, &c.BatchID, &c.FullName, &c.Email, &c.Phone, &c.LinkedInURL, &raw, &verifierID, &c.VerificationStatus, &c.VerifiedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.RawData = raw
		c.VerifierID = verifierID.String
		res = append(res, c)
	}
	return res, rows.Err()
}

func (db *DB) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	c, err := scanCandidate(db.connection.QueryRowContext(ctx, candidateColumns+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	empRows, err := db.connection.QueryContext(ctx, `
		SELECT id, candidate_id, company_name, position, start_date, end_date, is_current, description, claim_status, verification_note, verification_sources, verified_at, ordinal
		FROM employment WHERE candidate_id = $1 ORDER BY ordinal`, id)
	if err != nil {
		return nil, err
	}
	defer empRows.Close()
	for empRows.Next() {
		var e Employment
		var note sql.NullString
		var sources []byte
		if err := empRows.Scan(&e.ID, &e.CandidateID, &e.CompanyName, &e.Position, &e.StartDate, &e.EndDate, &e.IsCurrent, &e.Description, &e.ClaimStatus, &note, &sources, &e.VerifiedAt, &e.Ordinal); err != nil {
			return nil, err
		}
		e.VerificationNote = note.String
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &e.VerificationSources); err != nil {
				return nil, fmt.Errorf("decode employment sources: %w", err)
			}
		}
		c.Employment = append(c.Employment, e)
	}
	if err := empRows.Err(); err != nil {
		return nil, err
	}

	eduRows, err := db.connection.QueryContext(ctx, `
		SELECT id, candidate_id, institution, degree, field_of_study, start_date, end_date, is_current, claim_status, verification_note, verification_sources, verified_at, ordinal
		FROM education WHERE candidate_id = $1 ORDER BY ordinal`, id)
	if err != nil {
		return nil, err
	}
	defer eduRows.Close()
	for eduRows.Next() {
		var e Education
		var note sql.NullString
		var sources []byte
		if err := eduRows.Scan(&e.ID, &e.CandidateID, &e.Institution, &e.Degree, &e.FieldOfStudy, &e.StartDate, &e.EndDate, &e.IsCurrent, &e.ClaimStatus, &note, &sources, &e.VerifiedAt, &e.Ordinal); err != nil {
			return nil, err
		}
		e.VerificationNote = note.String
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &e.VerificationSources); err != nil {
				return nil, fmt.Errorf("decode education sources: %w", err)
			}
		}
		c.Education = append(c.Education, e)
	}
	if err := eduRows.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

func (db *DB) ListCandidatesByStatus(ctx context.Context, status VerificationStatus) ([]*Candidate, error) {
	rows, err := db.connection.QueryContext(ctx, candidateColumns+` WHERE verification_status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandidates(rows)
}

func (db *DB) ListCandidatesByVerifier(ctx context.Context, verifierID string, status VerificationStatus) ([]*Candidate, error) {
	rows, err := db.connection.QueryContext(ctx, candidateColumns+` WHERE verifier_id = $1 AND verification_status = $2 ORDER BY created_at`, verifierID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandidates(rows)
}

func (db *DB) CountCandidatesByVerifier(ctx context.Context, verifierID string, status VerificationStatus) (int, error) {
	var n int
	err := db.connection.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candidates WHERE verifier_id = $1 AND verification_status = $2`,
		verifierID, status).Scan(&n)
	return n, err
}

func (db *DB) CountCandidatesByStatus(ctx context.Context, status VerificationStatus) (int, error) {
	var n int
	err := db.connection.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candidates WHERE verification_status = $1`, status).Scan(&n)
	return n, err
}

// ClaimCandidate is the compare-and-swap behind claim(): the UPDATE
// only fires while the stored status is still PENDING, so concurrent
// claims on the same candidate resolve to exactly one winner.
func (db *DB) ClaimCandidate(ctx context.Context, candidateID, verifierID string) (bool, error) {
	res, err := db.connection.ExecContext(ctx, `
		UPDATE candidates
		SET verification_status = $1, verifier_id = $2, updated_at = NOW()
		WHERE id = $3 AND verification_status = $4`,
		StatusInProgress, verifierID, candidateID, StatusPending,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (db *DB) GetEmployment(ctx context.Context, id string) (*Employment, error) {
	e := &Employment{}
	var note sql.NullString
	var sources []byte
	row := db.connection.QueryRowContext(ctx, `
		SELECT id, candidate_id, company_name, position, start_date, end_date, is_current, description, claim_status, verification_note, verification_sources, verified_at, ordinal
		FROM employment WHERE id = $1`, id)
	err := row.Scan(&e.ID, &e.CandidateID, &e.CompanyName, &e.Position, &e.StartDate, &e.EndDate, &e.IsCurrent, &e.Description, &e.ClaimStatus, &note, &sources, &e.VerifiedAt, &e.Ordinal)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.VerificationNote = note.String
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &e.VerificationSources); err != nil {
			return nil, fmt.Errorf("decode employment sources: %w", err)
		}
	}
	return e, nil
}

func (db *DB) GetEducation(ctx context.Context, id string) (*Education, error) {
	e := &Education{}
	var note sql.NullString
	var sources []byte
	row := db.connection.QueryRowContext(ctx, `
		SELECT id, candidate_id, institution, degree, field_of_study, start_date, end_date, is_current, claim_status, verification_note, verification_sources, verified_at, ordinal
		FROM education WHERE id = $1`, id)
	err := row.Scan(&e.ID, &e.CandidateID, &e.Institution, &e.Degree, &e.FieldOfStudy, &e.StartDate, &e.EndDate, &e.IsCurrent, &e.ClaimStatus, &note, &sources, &e.VerifiedAt, &e.Ordinal)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.VerificationNote = note.String
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &e.VerificationSources); err != nil {
			return nil, fmt.Errorf("decode education sources: %w", err)
		}
	}
	return e, nil
}

func (db *DB) UpdateEmploymentVerification(ctx context.Context, id string, status ClaimStatus, note string, sources []string, at time.Time) error {
	data, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	res, err := db.connection.ExecContext(ctx, `
		UPDATE employment
		SET claim_status = $1, verification_note = $2, verification_sources = $3, verified_at = $4
		WHERE id = $5`,
		status, note, data, at, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateEducationVerification(ctx context.Context, id string, status ClaimStatus, note string, sources []string, at time.Time) error {
	data, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	res, err := db.connection.ExecContext(ctx, `
		UPDATE education
		SET claim_status = $1, verification_note = $2, verification_sources = $3, verified_at = $4
		WHERE id = $5`,
		status, note, data, at, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) CountPendingClaims(ctx context.Context, candidateID string) (int, int, error) {
	var pendingEmployment, pendingEducation int
	err := db.connection.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employment WHERE candidate_id = $1 AND claim_status = $2`,
		candidateID, ClaimPending).Scan(&pendingEmployment)
	if err != nil {
		return 0, 0, err
	}
	err = db.connection.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM education WHERE candidate_id = $1 AND claim_status = $2`,
		candidateID, ClaimPending).Scan(&pendingEducation)
	if err != nil {
		return 0, 0, err
	}
	return pendingEmployment, pendingEducation, nil
}

func (db *DB) CompleteCandidate(ctx context.Context, candidateID string, at time.Time) error {
	res, err := db.connection.ExecContext(ctx, `
		UPDATE candidates
		SET verification_status = $1, verified_at = $2, updated_at = NOW()
		WHERE id = $3`,
		StatusCompleted, at, candidateID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecountBatchProgress recomputes verified_count from the candidates
// table instead of incrementing, so out-of-order completions converge.
func (db *DB) RecountBatchProgress(ctx context.Context, batchID string, at time.Time) (*Batch, error) {
	_, err := db.connection.ExecContext(ctx, `
		UPDATE candidate_batches b
		SET verified_count = (
			SELECT COUNT(*) FROM candidates c
			WHERE c.batch_id = b.id AND c.verification_status = $1
		)
		WHERE b.id = $2`,
		StatusCompleted, batchID,
	)
	if err != nil {
		return nil, err
	}

	_, err = db.connection.ExecContext(ctx, `
		UPDATE candidate_batches
		SET status = $1, completed_at = $2
		WHERE id = $3 AND verified_count = total_candidates AND status <> $1`,
		StatusCompleted, at, batchID,
	)
	if err != nil {
		return nil, err
	}

	return db.GetBatch(ctx, batchID)
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
