package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/linemk/storefront/internal/media"
)

const (
	MaxUploadFiles = 5
	MaxUploadSize  = 5 << 20

	// столько байт mimetype читает для определения типа
	sniffLen = 3072
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// File — загружаемый файл; Size берётся из multipart-заголовка
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

type UploadService interface {
	Upload(ctx context.Context, f File) (string, error)
	UploadMany(ctx context.Context, files []File) ([]string, error)
}

type uploadService struct {
	log      *slog.Logger
	uploader media.Uploader
}

func NewUploadService(log *slog.Logger, uploader media.Uploader) UploadService {
	return &uploadService{log: log, uploader: uploader}
}

// Upload проверяет размер и тип файла по содержимому и отправляет его на хостинг.
func (s *uploadService) Upload(ctx context.Context, f File) (string, error) {
	const op = "service.UploadService.Upload"
	logger := s.log.With(slog.String("op", op), slog.String("file", f.Name))

	if f.Size > MaxUploadSize {
		return "", fmt.Errorf("%s: %s: %w", op, f.Name, ErrFileTooLarge)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%s: failed to read file: %w", op, err)
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		logger.Warn("rejected file", slog.String("mime", mtype.String()))
		return "", fmt.Errorf("%s: %s (%s): %w", op, f.Name, mtype.String(), ErrUnsupportedMediaType)
	}

	url, err := s.uploader.Upload(ctx, f.Name, io.MultiReader(bytes.NewReader(head), f.Reader))
	if err != nil {
		logger.Error("upload failed", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("file uploaded", slog.String("url", url))
	return url, nil
}

// UploadMany загружает до MaxUploadFiles файлов по очереди.
func (s *uploadService) UploadMany(ctx context.Context, files []File) ([]string, error) {
	const op = "service.UploadService.UploadMany"

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoFiles)
	}
	if len(files) > MaxUploadFiles {
		return nil, fmt.Errorf("%s: got %d, max %d: %w", op, len(files), MaxUploadFiles, ErrTooManyFiles)
	}
	for _, f := range files {
		if f.Size > MaxUploadSize {
			return nil, fmt.Errorf("%s: %s: %w", op, f.Name, ErrFileTooLarge)
		}
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.Upload(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}
