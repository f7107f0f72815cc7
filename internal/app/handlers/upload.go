package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/linemk/storefront/internal/service"
)

// лимит тела запроса с запасом на служебные части multipart
const maxUploadBody = service.MaxUploadFiles*service.MaxUploadSize + 1<<20

// UploadHandler обрабатывает POST /api/upload, файл в поле "image"
func UploadHandler(log *slog.Logger, uploadService service.UploadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UploadHandler"
		logger := log.With(slog.String("op", op))

		r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+1<<20)
		file, header, err := r.FormFile("image")
		if err != nil {
			logger.Error("failed to read upload", slog.Any("error", err))
			respondUploadFormError(w, logger, err)
			return
		}
		defer file.Close()

		url, err := uploadService.Upload(r.Context(), service.File{Name: header.Filename, Size: header.Size, Reader: file})
		if err != nil {
			logger.Error("upload failed", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, Response{Success: true, Message: "File uploaded successfully", File: url})
	}
}

// UploadMultipleHandler обрабатывает POST /api/upload/multiple, до 5 файлов в поле "images"
func UploadMultipleHandler(log *slog.Logger, uploadService service.UploadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UploadMultipleHandler"
		logger := log.With(slog.String("op", op))

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			logger.Error("failed to parse multipart form", slog.Any("error", err))
			respondUploadFormError(w, logger, err)
			return
		}

		headers := r.MultipartForm.File["images"]
		if len(headers) > service.MaxUploadFiles {
			respondError(w, logger, service.ErrTooManyFiles)
			return
		}

		files := make([]service.File, 0, len(headers))
		for _, h := range headers {
			f, err := h.Open()
			if err != nil {
				logger.Error("failed to open part", slog.Any("error", err))
				respondMessage(w, logger, http.StatusInternalServerError, "Error uploading file")
				return
			}
			defer f.Close()
			files = append(files, service.File{Name: h.Filename, Size: h.Size, Reader: f})
		}

		urls, err := uploadService.UploadMany(r.Context(), files)
		if err != nil {
			logger.Error("upload failed", slog.Any("error", err))
			respondError(w, logger, err)
			return
		}

		count := len(urls)
		writeJSON(w, logger, http.StatusOK, Response{
			Success: true,
			Message: "Files uploaded successfully",
			Files:   urls,
			Count:   &count,
		})
	}
}

func respondUploadFormError(w http.ResponseWriter, log *slog.Logger, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile):
		respondError(w, log, service.ErrNoFiles)
	case errors.As(err, &maxErr):
		respondError(w, log, service.ErrFileTooLarge)
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, multipart.ErrMessageTooLarge):
		respondMessage(w, log, http.StatusBadRequest, "No file uploaded")
	default:
		respondMessage(w, log, http.StatusBadRequest, "Error uploading file")
	}
}
