package handler

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"repwatch-console/constant"
	"repwatch-console/dto"
	"repwatch-console/entities"
	"repwatch-console/repository"
)

// IngestDependencies is what the upload-event consumer hands each worker.
type IngestDependencies struct {
	Repo repository.ConsoleRepository
}

// UploadEventHandler records a capture-client upload as a web_images row.
// Date/time are normalized to the zero-padded forms the range query depends
// on before the row is inserted.
func UploadEventHandler(ctx context.Context, msg amqp.Delivery, deps IngestDependencies) error {
	var event dto.UploadEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal upload event")
		return err
	}

	date, err := normalizeDate(event.Date)
	if err != nil {
		return err
	}
	clock, err := normalizeTime(event.Time)
	if err != nil {
		return err
	}

	status := constant.RecordingStatus(event.Status)
	if status == "" {
		status = constant.RecordingStatusUploaded
	}
	recType := constant.RecordingType(event.Type)
	if recType == "" {
		recType = constant.RecordingTypeRecording
	}

	rec := &entities.Recording{
		UserID:   event.UserID,
		FileName: event.FileName,
		Date:     date,
		Time:     clock,
		Status:   status,
		Type:     recType,
	}
	if err := deps.Repo.CreateRecording(ctx, rec); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint("user_id", event.UserID).Msg("failed to insert recording row")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Uint("user_id", event.UserID).
		Str("file_name", event.FileName).
		Str("date", date).
		Str("time", clock).
		Msg("recording upload recorded")
	return nil
}

func normalizeDate(raw string) (string, error) {
	var y, m, d int
	if _, err := fmt.Sscanf(raw, "%d-%d-%d", &y, &m, &d); err != nil {
		return "", fmt.Errorf("bad date %q: %w", raw, err)
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", fmt.Errorf("bad date %q", raw)
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), nil
}

func normalizeTime(raw string) (string, error) {
	var h, m, s int
	if _, err := fmt.Sscanf(raw, "%d:%d:%d", &h, &m, &s); err != nil {
		return "", fmt.Errorf("bad time %q: %w", raw, err)
	}
	if h > 23 || m > 59 || s > 59 || h < 0 || m < 0 || s < 0 {
		return "", fmt.Errorf("bad time %q", raw)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s), nil
}
