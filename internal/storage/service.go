package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"backend-safewalk/internal/db"

	"github.com/google/uuid"
)

var ErrEmptyClip = errors.New("audio clip is empty")

// Clip is a stored SOS audio recording. Ref is the handle an alert carries.
type Clip struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Ref       string    `json:"ref"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db  db.Querier
	dir string
}

func NewService(q db.Querier, dir string) *Service {
	return &Service{db: q, dir: dir}
}

// SaveAudioClip writes the recording to disk and records it, returning the
// clip whose Ref an SOS alert can reference.
func (s *Service) SaveAudioClip(ctx context.Context, userID string, data []byte, contentType string) (Clip, error) {
	if len(data) == 0 {
		return Clip{}, ErrEmptyClip
	}

	clip := Clip{
		ID:        uuid.NewString(),
		UserID:    userID,
		SizeBytes: len(data),
		CreatedAt: time.Now().UTC(),
	}
	clip.Ref = "sos_" + userID + "_" + clip.ID + extensionFor(contentType)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Clip{}, err
	}
	if err := os.WriteFile(filepath.Join(s.dir, clip.Ref), data, 0o644); err != nil {
		return Clip{}, err
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO audio_clips (id, user_id, ref, content_type, size_bytes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, clip.ID, clip.UserID, clip.Ref, contentType, clip.SizeBytes, clip.CreatedAt)
	if err != nil {
		return Clip{}, err
	}
	return clip, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".webm"
	}
}
