package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/store"
	pkgerrors "github.com/lambda-art/lambdaart-api/pkg/errors"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
	"github.com/lambda-art/lambdaart-api/pkg/retry"
)

// StagedFile is a file staged for upload as part of a module save
type StagedFile struct {
	Data        []byte
	FileName    string
	ContentType string
}

// SaveModuleInput is a complete module save request: the draft plus
// any freshly staged media files
type SaveModuleInput struct {
	Draft        models.ModuleDraft
	Icon         *StagedFile
	GalleryFiles []*StagedFile
}

// EditorService runs the module save pipeline:
// validate, probe store connectivity, upload staged media, write.
type EditorService struct {
	store       store.Store
	uploader    MediaUploader
	probePolicy retry.Policy
}

// NewEditorService creates a new editor service instance
func NewEditorService(catalogStore store.Store, uploader MediaUploader) *EditorService {
	return &EditorService{
		store:       catalogStore,
		uploader:    uploader,
		probePolicy: retry.ConnectivityProbePolicy(),
	}
}

// SaveModule runs the full save pipeline for a create or update.
//
// Validation failures halt the save before any side effect. A failed
// connectivity probe aborts the save with no partial effect. Media
// uploads are all-or-nothing relative to the write: if the icon upload
// or any gallery upload fails, no module write happens and no uploaded
// URL is committed to the draft. A store write failure is surfaced
// verbatim; already-uploaded media is not rolled back.
func (s *EditorService) SaveModule(ctx context.Context, input SaveModuleInput) (*models.Module, error) {
	draft := input.Draft
	mode := "update"
	if draft.ID == "" {
		mode = "create"
	}

	// 1. Synchronous field checks; all failures surface at once
	hasIcon := draft.IconSrc != "" || input.Icon != nil
	if errs := draft.Validate(hasIcon); errs != nil {
		metrics.ModuleSaves.WithLabelValues(mode, "validation_failed").Inc()
		return nil, &ValidationError{Fields: errs}
	}

	// 2. Bounded connectivity probe before touching media or store
	if err := s.probeConnectivity(ctx); err != nil {
		metrics.ModuleSaves.WithLabelValues(mode, "unreachable").Inc()
		return nil, err
	}

	// 3. Staged icon upload; failure aborts the whole save
	if input.Icon != nil {
		iconURL, err := s.uploadFile(ctx, input.Icon)
		if err != nil {
			metrics.ModuleSaves.WithLabelValues(mode, "upload_failed").Inc()
			metrics.MediaUploads.WithLabelValues("icon", "error").Inc()
			return nil, pkgerrors.UploadError(fmt.Sprintf("icon upload failed: %v", err))
		}
		metrics.MediaUploads.WithLabelValues("icon", "success").Inc()
		draft.IconSrc = iconURL
	}

	// 4. Concurrent gallery uploads, joined before the write.
	// All-or-nothing: one failure discards every URL from this batch.
	if len(input.GalleryFiles) > 0 {
		urls, err := s.uploadGallery(ctx, input.GalleryFiles)
		if err != nil {
			metrics.ModuleSaves.WithLabelValues(mode, "upload_failed").Inc()
			return nil, err
		}
		draft.Gallery = append(draft.Gallery, urls...)
	}

	// 5. Store write with fully resolved URLs
	module := draft.ToModule()

	var saved *models.Module
	var err error
	if mode == "create" {
		saved, err = s.store.CreateModule(ctx, module)
	} else {
		saved, err = s.store.UpdateModule(ctx, module)
	}
	if err != nil {
		metrics.ModuleSaves.WithLabelValues(mode, "store_error").Inc()
		logger.Error("Module write failed",
			zap.String("mode", mode),
			zap.String("slug", draft.Slug),
			zap.Error(err))
		// Surfaced verbatim; uploaded media from this save is not
		// rolled back
		return nil, err
	}

	metrics.ModuleSaves.WithLabelValues(mode, "success").Inc()
	logger.Info("Module saved",
		zap.String("mode", mode),
		zap.String("id", saved.ID),
		zap.String("slug", saved.Slug))

	return saved, nil
}

// DeleteModule removes a module after probing connectivity
func (s *EditorService) DeleteModule(ctx context.Context, id string) error {
	if err := s.probeConnectivity(ctx); err != nil {
		return err
	}
	return s.store.DeleteModule(ctx, id)
}

// probeConnectivity pings the store with linearly backed-off retries.
// Exhaustion means the operation that triggered the probe is aborted.
func (s *EditorService) probeConnectivity(ctx context.Context) error {
	err := retry.Do(ctx, s.probePolicy, "store_connectivity_probe", func() error {
		return s.store.Ping(ctx)
	})
	if err != nil {
		metrics.ConnectivityProbes.WithLabelValues("error").Inc()
		return pkgerrors.UnavailableError("store connectivity probe failed")
	}

	metrics.ConnectivityProbes.WithLabelValues("success").Inc()
	return nil
}

// uploadFile validates and uploads one staged file
func (s *EditorService) uploadFile(ctx context.Context, file *StagedFile) (string, error) {
	if err := s.uploader.ValidateImageType(file.ContentType); err != nil {
		return "", err
	}
	if err := s.uploader.ValidateImageSize(file.Data); err != nil {
		return "", err
	}
	return s.uploader.UploadImage(ctx, file.Data, file.FileName, file.ContentType)
}

// uploadGallery fans the staged gallery files out concurrently and
// joins before returning. Order of returned URLs matches input order.
func (s *EditorService) uploadGallery(ctx context.Context, files []*StagedFile) ([]string, error) {
	urls := make([]string, len(files))
	uploadErrs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file *StagedFile) {
			defer wg.Done()
			url, err := s.uploadFile(ctx, file)
			if err != nil {
				uploadErrs[i] = err
				return
			}
			urls[i] = url
		}(i, file)
	}
	wg.Wait()

	for i, err := range uploadErrs {
		if err != nil {
			metrics.MediaUploads.WithLabelValues("gallery", "error").Inc()
			logger.Warn("Gallery upload batch failed, discarding batch",
				zap.Int("failed_index", i),
				zap.Int("batch_size", len(files)),
				zap.Error(err))
			return nil, pkgerrors.UploadError(fmt.Sprintf("gallery upload failed: %v", err))
		}
	}

	metrics.MediaUploads.WithLabelValues("gallery", "success").Add(float64(len(files)))
	return urls, nil
}
