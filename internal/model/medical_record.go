package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is the metadata for one uploaded file. FilePath is the
// generated storage token, never the user-supplied name; FileName is kept
// only for display.
type MedicalRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	FilePath    string    `db:"file_path" json:"file_path"`
	Description *string   `db:"description" json:"description,omitempty"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
}
