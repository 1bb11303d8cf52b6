package models

import (
	"time"

	"github.com/google/uuid"
)

type ScanMode string

const (
	ScanModeCheckout ScanMode = "checkout"
	ScanModeRecycle  ScanMode = "recycle"
)

// Valid reports whether m is one of the modes a worker can scan in.
func (m ScanMode) Valid() bool {
	return m == ScanModeCheckout || m == ScanModeRecycle
}

type ScanStatus string

const (
	ScanStatusSuccess ScanStatus = "success"
	ScanStatusFault   ScanStatus = "fault"
)

// ScanRecord is one entry of the portal's scan journal.
type ScanRecord struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	WorkerID  string     `json:"worker_id" db:"worker_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	ScanMode  ScanMode   `json:"scan_mode" db:"scan_mode"`
	BagID     string     `json:"bag_id" db:"bag_id"`
	QRPayload string     `json:"qr_payload" db:"qr_payload"`
	Status    ScanStatus `json:"status" db:"status"`
	ScannedAt time.Time  `json:"scanned_at" db:"scanned_at"`
}
