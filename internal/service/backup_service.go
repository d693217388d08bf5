package service

import (
	"context"
	"log"

	"studyquest/internal/codec"
	"studyquest/internal/models"
)

// BackupService handles manual export/import of the household aggregates as
// a single portable blob, and optionally mails the blob to the parent.
type BackupService struct {
	household *Household
	email     *EmailService
}

// NewBackupService creates a new backup service
func NewBackupService(household *Household, email *EmailService) *BackupService {
	return &BackupService{household: household, email: email}
}

// Export serializes the current aggregates into the portable blob.
func (s *BackupService) Export() (string, error) {
	stats := s.household.StatsSnapshot()
	return codec.ExportBlob(&stats, s.household.PrizesSnapshot(), s.household.WorksheetsSnapshot())
}

// Import restores aggregates from a blob. The payload is validated in full
// before any mutation, so a malformed blob changes nothing. Prize and
// worksheet sections replace wholesale when present; the stats section is
// merged over defaults so older backups cannot null out newer fields.
func (s *BackupService) Import(blob string) error {
	payload, err := codec.ImportBlob(blob)
	if err != nil {
		return err
	}

	return s.household.mutate(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error) {
		if payload.Stats != nil {
			*stats = *codec.MergeStats(payload.Stats)
		}
		if payload.Prizes != nil {
			prizes = payload.Prizes
		}
		if payload.Worksheets != nil {
			worksheets = payload.Worksheets
		}
		return prizes, worksheets, nil
	})
}

// EmailBackup exports the blob and mails it to the parent.
func (s *BackupService) EmailBackup(ctx context.Context, toEmail string) error {
	blob, err := s.Export()
	if err != nil {
		return err
	}

	if err := s.email.SendBackupEmail(ctx, toEmail, blob); err != nil {
		return err
	}

	log.Printf("Backup emailed to %s (%d bytes)", toEmail, len(blob))
	return nil
}
