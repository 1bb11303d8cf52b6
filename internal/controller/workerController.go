package controller

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
	"github.com/reloop/portal/internal/middleware"
	workerservice "github.com/reloop/portal/internal/worker/service"
)

type WorkerController struct {
	workerService  workerservice.WorkerService
	maxUploadBytes int64
}

func NewWorkerController(workerService workerservice.WorkerService, maxUploadBytes int64) *WorkerController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &WorkerController{workerService: workerService, maxUploadBytes: maxUploadBytes}
}

func (c *WorkerController) Dashboard(w http.ResponseWriter, r *http.Request) error {
	claims, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return customerrors.ErrUnauthorized
	}

	res, err := c.workerService.Dashboard(r.Context(), claims.AccessToken, claims.Subject)
	if err != nil {
		return err
	}
	return respond(w, http.StatusOK, res)
}

func (c *WorkerController) Profile(w http.ResponseWriter, r *http.Request) error {
	token, err := accessToken(r)
	if err != nil {
		return err
	}

	res, err := c.workerService.Profile(r.Context(), token)
	if err != nil {
		return err
	}
	return respond(w, http.StatusOK, res)
}

// Scan accepts a multipart form with qr_image, user_id and scan_mode.
// A submission without a user id is refused before its upload is judged.
func (c *WorkerController) Scan(w http.ResponseWriter, r *http.Request) error {
	claims, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return customerrors.ErrUnauthorized
	}

	form, err := c.readUpload(w, r)
	req := dto.ScanRequest{
		UserID:   form.values.Get("user_id"),
		ScanMode: form.values.Get("scan_mode"),
	}
	if strings.TrimSpace(req.UserID) == "" {
		return customerrors.ErrMissingUserID
	}
	if err != nil {
		return err
	}

	res, err := c.workerService.Scan(r.Context(), claims.AccessToken, claims.Subject, req, form.image)
	if err != nil {
		return err
	}
	return respond(w, http.StatusCreated, res)
}

func (c *WorkerController) CheckBag(w http.ResponseWriter, r *http.Request) error {
	token, err := accessToken(r)
	if err != nil {
		return err
	}

	form, err := c.readUpload(w, r)
	if err != nil {
		return err
	}

	res, err := c.workerService.CheckBag(r.Context(), token, form.image)
	if err != nil {
		return err
	}
	return respond(w, http.StatusOK, res)
}

const (
	maxFieldBytes     = 64 << 10
	formOverheadBytes = 1 << 20
)

type uploadForm struct {
	values url.Values
	image  workerservice.Image
}

// readUpload streams the submission part by part, so the text fields are
// known even when the qr_image part is rejected. A body that is not
// multipart carries no image.
func (c *WorkerController) readUpload(w http.ResponseWriter, r *http.Request) (uploadForm, error) {
	form := uploadForm{values: url.Values{}}
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes+formOverheadBytes)

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return form, uploadError(err)
		}
		form.values = r.Form
		return form, nil
	}
	if err != nil {
		return form, uploadError(err)
	}

	tooLarge := false
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return form, uploadError(err)
		}

		if part.FormName() == "qr_image" && part.FileName() != "" {
			data, err := readPart(part, c.maxUploadBytes)
			switch {
			case errors.Is(err, errPartTooLarge):
				tooLarge = true
			case err != nil:
				return form, uploadError(err)
			default:
				form.image = workerservice.Image{Data: data, Filename: part.FileName()}
			}
		} else if part.FileName() == "" {
			value, err := readPart(part, maxFieldBytes)
			if errors.Is(err, errPartTooLarge) {
				return form, customerrors.ErrBadRequest
			}
			if err != nil {
				return form, uploadError(err)
			}
			form.values.Add(part.FormName(), string(value))
		}

		if _, err := io.Copy(io.Discard, part); err != nil {
			return form, uploadError(err)
		}
		_ = part.Close()
	}

	if tooLarge {
		return form, customerrors.ErrImageTooLarge
	}
	return form, nil
}

var errPartTooLarge = errors.New("form part too large")

func readPart(part *multipart.Part, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errPartTooLarge
	}
	return data, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return customerrors.ErrImageTooLarge
	}
	return customerrors.ErrBadRequest
}
