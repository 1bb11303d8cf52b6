package service

import (
	"context"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/reloop/portal/internal/backend"
	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
	"github.com/reloop/portal/internal/models"
	"github.com/reloop/portal/internal/qr"
	"github.com/reloop/portal/internal/worker/repository"
)

// Image is an uploaded camera frame or picture.
type Image struct {
	Data     []byte
	Filename string
}

type WorkerService interface {
	Dashboard(ctx context.Context, token, workerID string) (*dto.WorkerDashboardResponse, error)
	Profile(ctx context.Context, token string) (*dto.WorkerProfileResponse, error)
	Scan(ctx context.Context, token, workerID string, req dto.ScanRequest, img Image) (*dto.ScanResponse, error)
	CheckBag(ctx context.Context, token string, img Image) (*dto.BagHistoryResponse, error)
}

type WorkerServiceImpl struct {
	api         backend.API
	scans       repository.ScanRepository
	decode      func([]byte) (string, error)
	recentLimit int
	log         *zap.Logger
}

func NewWorkerService(api backend.API, scans repository.ScanRepository, recentLimit int, log *zap.Logger) *WorkerServiceImpl {
	return &WorkerServiceImpl{
		api:         api,
		scans:       scans,
		decode:      qr.Decode,
		recentLimit: recentLimit,
		log:         log,
	}
}

func (s *WorkerServiceImpl) Dashboard(ctx context.Context, token, workerID string) (*dto.WorkerDashboardResponse, error) {
	profile, err := s.Profile(ctx, token)
	if err != nil {
		return nil, err
	}

	recent, err := s.scans.ListRecentByWorker(ctx, workerID, s.recentLimit)
	if err != nil {
		// The dashboard still renders without the journal.
		s.log.Error("list recent scans failed", zap.String("worker_id", workerID), zap.Error(err))
		recent = nil
	}
	if recent == nil {
		recent = []models.ScanRecord{}
	}

	return &dto.WorkerDashboardResponse{
		WorkerProfileResponse: *profile,
		RecentScans:           recent,
	}, nil
}

func (s *WorkerServiceImpl) Profile(ctx context.Context, token string) (*dto.WorkerProfileResponse, error) {
	profile, err := s.api.WorkerProfile(ctx, token)
	if err != nil {
		s.log.Error("fetch worker profile failed", zap.Error(err))
		return nil, customerrors.FromBackend(err)
	}

	return &dto.WorkerProfileResponse{
		ID:          string(profile.ID),
		Name:        profile.FullName,
		Email:       profile.Email,
		BagsScanned: profile.BagsScanned,
		FaultScans:  profile.FaultScans,
		Accuracy:    Accuracy(profile.BagsScanned, profile.FaultScans),
	}, nil
}

// Scan validates the form, decodes the QR code locally and forwards the scan
// to the backend. Every forwarded scan is journaled, whether or not the backend accepted it.
func (s *WorkerServiceImpl) Scan(ctx context.Context, token, workerID string, req dto.ScanRequest, img Image) (*dto.ScanResponse, error) {
	req.Normalize()
	if err := scanRequestError(req.Validate()); err != nil {
		return nil, err
	}
	if len(img.Data) == 0 {
		return nil, customerrors.ErrMissingImage
	}

	payload, err := s.decodeImage(img)
	if err != nil {
		return nil, err
	}

	result, scanErr := s.api.ScanQR(ctx, token, backend.ScanUpload{
		Image:     img.Data,
		Filename:  img.Filename,
		UserID:    req.UserID,
		ScanMode:  req.ScanMode,
		WorkerID:  workerID,
		QRPayload: payload,
	})

	record := &models.ScanRecord{
		WorkerID:  workerID,
		UserID:    req.UserID,
		ScanMode:  models.ScanMode(req.ScanMode),
		QRPayload: payload,
		Status:    models.ScanStatusSuccess,
	}
	if scanErr != nil {
		record.Status = models.ScanStatusFault
	} else {
		record.BagID = result.BagID
	}
	s.journal(ctx, record)

	if scanErr != nil {
		s.log.Error("scan rejected",
			zap.String("worker_id", workerID), zap.String("user_id", req.UserID), zap.Error(scanErr))
		return nil, customerrors.FromBackend(scanErr)
	}

	bagID := result.BagID
	if bagID == "" {
		bagID = payload
	}
	message := result.Message
	if message == "" {
		message = "Bag scanned successfully"
	}

	s.log.Info("bag scanned",
		zap.String("worker_id", workerID),
		zap.String("user_id", req.UserID),
		zap.String("scan_mode", req.ScanMode),
		zap.String("bag_id", bagID),
	)
	return &dto.ScanResponse{
		Message:   message,
		BagID:     bagID,
		QRPayload: payload,
		UserID:    req.UserID,
		ScanMode:  req.ScanMode,
	}, nil
}

func (s *WorkerServiceImpl) CheckBag(ctx context.Context, token string, img Image) (*dto.BagHistoryResponse, error) {
	if len(img.Data) == 0 {
		return nil, customerrors.ErrMissingImage
	}

	payload, err := s.decodeImage(img)
	if err != nil {
		return nil, err
	}

	summary, err := s.api.AboutBag(ctx, token, img.Data, img.Filename)
	if err != nil {
		s.log.Error("bag lookup failed", zap.String("qr_payload", payload), zap.Error(err))
		return nil, customerrors.FromBackend(err)
	}
	if summary.Transactions == nil {
		summary.Transactions = []backend.BagEvent{}
	}

	return &dto.BagHistoryResponse{
		QRPayload:  payload,
		BagSummary: *summary,
	}, nil
}

func (s *WorkerServiceImpl) decodeImage(img Image) (string, error) {
	payload, err := s.decode(img.Data)
	switch {
	case err == nil:
		return payload, nil
	case errors.Is(err, qr.ErrInvalidImage):
		return "", customerrors.ErrBadRequest
	default:
		s.log.Info("qr decode failed", zap.String("filename", img.Filename), zap.Error(err))
		return "", customerrors.ErrQRNotFound
	}
}

func (s *WorkerServiceImpl) journal(ctx context.Context, record *models.ScanRecord) {
	if err := s.scans.SaveScan(context.WithoutCancel(ctx), record); err != nil {
		s.log.Error("journal scan failed", zap.String("worker_id", record.WorkerID), zap.Error(err))
	}
}

func scanRequestError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "UserID":
			return customerrors.ErrMissingUserID
		case "ScanMode":
			return customerrors.ErrInvalidScanMode
		}
	}
	return customerrors.ErrBadRequest
}

// Accuracy is the share of non-faulty scans as a rounded percentage.
// It is 100 when there are no scans.
func Accuracy(scanned, faults int) int {
	if scanned <= 0 {
		return 100
	}
	faults = min(max(faults, 0), scanned)
	return int(math.Round(float64(scanned-faults) / float64(scanned) * 100))
}
