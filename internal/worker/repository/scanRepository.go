package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/reloop/portal/internal/models"
)

var ErrInvalidScanMode = errors.New("invalid scan mode")

type ScanRepository interface {
	SaveScan(ctx context.Context, record *models.ScanRecord) error
	ListRecentByWorker(ctx context.Context, workerID string, limit int) ([]models.ScanRecord, error)
	Ping(ctx context.Context) error
}

type ScanRepositoryImpl struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) ScanRepository {
	return &ScanRepositoryImpl{db: db}
}

// SaveScan inserts record, assigning an ID and timestamp when they are unset.
func (r *ScanRepositoryImpl) SaveScan(ctx context.Context, record *models.ScanRecord) error {
	if !record.ScanMode.Valid() {
		return ErrInvalidScanMode
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.ScannedAt.IsZero() {
		record.ScannedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
        INSERT INTO scan_journal (id, worker_id, user_id, scan_mode, bag_id, qr_payload, status, scanned_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID.String(),
		record.WorkerID,
		record.UserID,
		string(record.ScanMode),
		record.BagID,
		record.QRPayload,
		string(record.Status),
		record.ScannedAt,
	)
	return err
}

func (r *ScanRepositoryImpl) ListRecentByWorker(ctx context.Context, workerID string, limit int) ([]models.ScanRecord, error) {
	if limit <= 0 {
		limit = 5
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
        SELECT id, worker_id, user_id, scan_mode, bag_id, qr_payload, status, scanned_at
        FROM scan_journal
        WHERE worker_id = $1
        ORDER BY scanned_at DESC
        LIMIT $2
    `
	rows, err := r.db.QueryContext(ctx, query, workerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ScanRecord, 0, limit)
	for rows.Next() {
		var (
			rec    models.ScanRecord
			id     string
			mode   string
			status string
		)
		if err := rows.Scan(&id, &rec.WorkerID, &rec.UserID, &mode, &rec.BagID, &rec.QRPayload, &status, &rec.ScannedAt); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		rec.ScanMode = models.ScanMode(mode)
		rec.Status = models.ScanStatus(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ScanRepositoryImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
