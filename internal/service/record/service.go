package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/medportal/portal-api/internal/model"
	"github.com/medportal/portal-api/internal/repository"
	apperrors "github.com/medportal/portal-api/pkg/errors"
	"github.com/medportal/portal-api/pkg/logger"
)

// MaxFileSize is the upload ceiling.
const MaxFileSize = 5 << 20 // 5 MiB

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// FileUpload carries one submitted file into the intake pipeline.
type FileUpload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

type Service struct {
	repo     repository.MedicalRecordRepository
	userRepo repository.UserRepository
	dir      string
	log      *logger.Logger
}

func NewService(repo repository.MedicalRecordRepository, userRepo repository.UserRepository,
	dir string, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		dir:      dir,
		log:      log,
	}
}

// Upload validates and stores one file. Checks run in a fixed order:
// transport errors, directory writability, content-sniffed MIME allow-list,
// then the size ceiling. The stored name is a generated token; the original
// name survives only as display metadata. If the metadata insert fails after
// the file hit disk, the file is deleted again best-effort.
func (s *Service) Upload(ctx context.Context, patient *model.Identity, upload *FileUpload, description string) (*model.MedicalRecord, error) {
	if upload == nil || upload.Name == "" || upload.Reader == nil {
		return nil, apperrors.Validation("no file was selected for upload")
	}
	if upload.Size > MaxFileSize {
		return nil, apperrors.Validation("file is too large")
	}

	if err := s.ensureWritableDir(); err != nil {
		return nil, apperrors.Storage(err)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, MaxFileSize+1))
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to read upload: %w", err))
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("no file was selected for upload")
	}

	mtype := mimetype.Detect(data)
	if !allowedTypes[mtype.String()] {
		return nil, apperrors.Validation("invalid file type, allowed types: PDF, JPEG, PNG")
	}

	if len(data) > MaxFileSize {
		return nil, apperrors.Validation("file is too large, maximum size is 5 MiB")
	}

	// Opaque token decouples storage identity from user input and makes
	// concurrent uploads collision-free.
	token := uuid.NewString() + mtype.Extension()
	path := filepath.Join(s.dir, token)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("failed to store file: %w", err))
	}

	record := &model.MedicalRecord{
		PatientID: patient.UserID,
		FileName:  filepath.Base(upload.Name),
		FilePath:  token,
	}
	if desc := strings.TrimSpace(description); desc != "" {
		record.Description = &desc
	}

	if err := s.repo.Create(ctx, record); err != nil {
		// Compensating delete, not a transaction: an orphaned file is
		// tolerated if even the delete fails.
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Error(rmErr, "failed to remove stored file after insert failure",
				"path", path)
		}
		return nil, apperrors.Storage(err)
	}

	return record, nil
}

// ListForPatient returns the patient's own records newest first.
func (s *Service) ListForPatient(ctx context.Context, patient *model.Identity) ([]*model.MedicalRecord, error) {
	records, err := s.repo.ListForPatient(ctx, patient.UserID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return records, nil
}

// PatientDetail is the doctor-facing view: patient identity plus records.
// A missing patient reads the same as one the doctor may not see.
func (s *Service) PatientDetail(ctx context.Context, patientID uuid.UUID) (*model.PatientDetail, error) {
	patient, err := s.userRepo.GetPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundOrUnauthorized("patient")
		}
		return nil, apperrors.Storage(err)
	}

	records, err := s.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	return &model.PatientDetail{
		ID:           patient.ID,
		Username:     patient.Username,
		RegisteredAt: patient.CreatedAt,
		Records:      records,
	}, nil
}

func (s *Service) ensureWritableDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	probe, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("upload directory is not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
