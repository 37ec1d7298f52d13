package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Storage is the seam to an object store. The production deployment still
// runs the simulated backend; swapping in S3 or GCS only requires a new
// implementation of this interface.
type Storage interface {
	Store(ctx context.Context, applicationID, fileName string, r io.Reader) (url string, err error)
	Remove(ctx context.Context, url string) error
}

// SimulatedStorage fabricates a locator and writes nothing anywhere. Every
// call logs a warning so nobody mistakes it for a real backend.
type SimulatedStorage struct {
	baseURL string
	logger  *slog.Logger
}

func NewSimulatedStorage(baseURL string, logger *slog.Logger) *SimulatedStorage {
	if baseURL == "" {
		baseURL = "/uploads/loans"
	}
	return &SimulatedStorage{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (s *SimulatedStorage) Store(ctx context.Context, applicationID, fileName string, r io.Reader) (string, error) {
	size, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), strings.ReplaceAll(fileName, " ", "_"))
	url := fmt.Sprintf("%s/%s/%s", s.baseURL, applicationID, name)

	s.logger.Warn("simulated storage: file was NOT persisted, only its locator",
		"file_name", fileName,
		"application_id", applicationID,
		"size_bytes", size,
		"url", url)

	return url, nil
}

func (s *SimulatedStorage) Remove(ctx context.Context, url string) error {
	s.logger.Warn("simulated storage: nothing to remove for locator", "url", url)
	return nil
}
