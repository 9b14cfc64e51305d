// Package upload implements the three-step video submission protocol:
// request an upload target, PUT the file bytes directly to it, confirm with
// the API. Only the confirm step is allowed to touch the cached assignment.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/cache"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// --- Error Definitions ---
var (
	ErrInvalidContentType = errors.New("a video content type is required")
	ErrFileMissing        = errors.New("video file does not exist")
	ErrTransferRejected   = errors.New("storage rejected the video upload")
)

// transferTimeout bounds the direct PUT. Video files are large; the API
// client's default timeout would cut healthy uploads short.
const transferTimeout = 10 * time.Minute

// Uploader runs the submission protocol for assignment videos.
type Uploader struct {
	api      *api.Client
	store    cache.Store[domain.Assignment]
	transfer *http.Client // used only for the direct PUT to the presigned URL
	logger   *zap.Logger
}

// NewUploader creates an uploader. A nil transfer client falls back to a
// default with transferTimeout.
func NewUploader(apiClient *api.Client, store cache.Store[domain.Assignment], transfer *http.Client, logger *zap.Logger) *Uploader {
	if transfer == nil {
		transfer = &http.Client{Timeout: transferTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{api: apiClient, store: store, transfer: transfer, logger: logger}
}

// SubmitVideo moves the video at filePath to remote storage for the given
// assignment and flips the cached assignment to submitted once the server
// confirms. The temporary file is removed on every exit path. On any failure
// before the confirm step the assignment keeps its prior status.
func (u *Uploader) SubmitVideo(ctx context.Context, assignmentID, filePath, contentType string) (*domain.Assignment, error) {
	defer func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			u.logger.Warn("failed to remove temporary video file",
				zap.String("path", filePath), zap.Error(err))
		}
	}()

	if !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, ErrInvalidContentType
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, ErrFileMissing
	}

	// Step 1: negotiate the upload target. Failure here has no side effects.
	target, err := u.api.RequestUploadURL(ctx, assignmentID, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to request upload URL: %w", err)
	}

	// Step 2: direct transfer of the raw bytes. A non-2xx response aborts
	// the protocol; no confirmation is attempted.
	if err := u.put(ctx, target.UploadURL, filePath, contentType, info.Size()); err != nil {
		return nil, err
	}

	// Step 3: confirm. This is the only step that mutates the assignment.
	confirm := api.ConfirmUploadRequest{
		ObjectKey:   target.ObjectKey,
		FileName:    filepath.Base(filePath),
		FileSize:    info.Size(),
		ContentType: contentType,
	}
	assignment, err := u.api.ConfirmUpload(ctx, assignmentID, confirm)
	if err != nil {
		// The remote object is now orphaned; there is no recovery path, so
		// at least leave the key in the log.
		u.logger.Error("upload confirmation failed, remote object orphaned",
			zap.String("assignmentId", assignmentID),
			zap.String("objectKey", target.ObjectKey), zap.Error(err))
		return nil, fmt.Errorf("failed to confirm upload: %w", err)
	}

	if err := u.store.Upsert(ctx, *assignment, cache.WithStatus(domain.SyncSynced)); err != nil {
		return nil, fmt.Errorf("failed to cache submitted assignment: %w", err)
	}
	u.logger.Info("video submitted",
		zap.String("assignmentId", assignmentID),
		zap.Int64("size", info.Size()))
	return assignment, nil
}

// put streams the file bytes to the presigned URL with the negotiated
// content type.
func (u *Uploader) put(ctx context.Context, uploadURL, filePath, contentType string, size int64) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := u.transfer.Do(req)
	if err != nil {
		return fmt.Errorf("video transfer failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		u.logger.Warn("storage rejected upload",
			zap.String("url", uploadURL), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w (status %d)", ErrTransferRejected, resp.StatusCode)
	}
	return nil
}
