package dto

import (
	"strings"

	"github.com/reloop/portal/internal/backend"
	"github.com/reloop/portal/internal/models"
)

// ScanRequest holds the form fields of a scan submission; the image travels separately.
type ScanRequest struct {
	UserID   string `validate:"required"`
	ScanMode string `validate:"required,oneof=checkout recycle"`
}

func (s *ScanRequest) Normalize() {
	s.UserID = strings.TrimSpace(s.UserID)
	s.ScanMode = strings.ToLower(strings.TrimSpace(s.ScanMode))
	if s.ScanMode == "" {
		s.ScanMode = string(models.ScanModeCheckout)
	}
}

func (s *ScanRequest) Validate() error {
	return validate.Struct(s)
}

type WorkerProfileResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	BagsScanned int    `json:"bags_scanned"`
	FaultScans  int    `json:"fault_scans"`
	Accuracy    int    `json:"accuracy"`
}

type WorkerDashboardResponse struct {
	WorkerProfileResponse
	RecentScans []models.ScanRecord `json:"recent_scans"`
}

type ScanResponse struct {
	Message   string `json:"message"`
	BagID     string `json:"bag_id"`
	QRPayload string `json:"qr_payload"`
	UserID    string `json:"user_id"`
	ScanMode  string `json:"scan_mode"`
}

type BagHistoryResponse struct {
	QRPayload string `json:"qr_payload"`
	backend.BagSummary
}
