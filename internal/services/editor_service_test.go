package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lambda-art/lambdaart-api/internal/models"
	pkgerrors "github.com/lambda-art/lambdaart-api/pkg/errors"
	"github.com/lambda-art/lambdaart-api/pkg/retry"
)

func fastProbePolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   1.0,
		Linear:       true,
	}
}

func newTestEditorService(catalogStore *MockStore, uploader *MockUploader) *EditorService {
	svc := NewEditorService(catalogStore, uploader)
	svc.probePolicy = fastProbePolicy()
	return svc
}

func validDraft() models.ModuleDraft {
	return models.ModuleDraft{
		Slug:      "perlage",
		Title:     "Perlage",
		ShortDesc: "Initiation au perlage artisanal",
		LongDesc:  "Un parcours complet sur les techniques de perlage.",
		IconSrc:   "https://cdn.example.com/icons/perlage.png",
	}
}

func TestSaveModule_ValidationFailureHaltsBeforeSideEffects(t *testing.T) {
	mockStore := new(MockStore)
	mockUploader := new(MockUploader)
	svc := newTestEditorService(mockStore, mockUploader)

	draft := validDraft()
	draft.Slug = "Not A Slug"
	draft.Title = ""

	saved, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: draft})

	require.Error(t, err)
	assert.Nil(t, saved)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "slug")
	assert.Contains(t, validationErr.Fields, "title")

	// Nothing was probed, uploaded or written
	mockStore.AssertNotCalled(t, "Ping", mock.Anything)
	mockStore.AssertNotCalled(t, "CreateModule", mock.Anything, mock.Anything)
	mockUploader.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveModule_MissingIconReportedWhenNothingStaged(t *testing.T) {
	mockStore := new(MockStore)
	mockUploader := new(MockUploader)
	svc := newTestEditorService(mockStore, mockUploader)

	draft := validDraft()
	draft.IconSrc = ""

	_, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: draft})

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "iconSrc")
}

func TestSaveModule_StagedIconSatisfiesIconRequirement(t *testing.T) {
	mockStore := new(MockStore)
	mockUploader := new(MockUploader)
	svc := newTestEditorService(mockStore, mockUploader)

	draft := validDraft()
	draft.IconSrc = ""
	icon := &StagedFile{Data: []byte("png-bytes"), FileName: "icon.png", ContentType: "image/png"}

	mockStore.On("Ping", mock.Anything).Return(nil)
	mockUploader.On("ValidateImageType", "image/png").Return(nil)
	mockUploader.On("ValidateImageSize", icon.Data).Return(nil)
	mockUploader.On("UploadImage", mock.Anything, icon.Data, "icon.png", "image/png").
		Return("https://cdn.example.com/uploads/icon.png", nil)
	mockStore.On("CreateModule", mock.Anything, mock.MatchedBy(func(m *models.Module) bool {
		return m.IconSrc == "https://cdn.example.com/uploads/icon.png"
	})).Return(&models.Module{ID: "id-1", Slug: "perlage"}, nil)

	saved, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: draft, Icon: icon})

	require.NoError(t, err)
	assert.Equal(t, "id-1", saved.ID)
	mockStore.AssertExpectations(t)
	mockUploader.AssertExpectations(t)
}

func TestSaveModule_ProbeFailureAbortsBeforeUploads(t *testing.T) {
	mockStore := new(MockStore)
	mockUploader := new(MockUploader)
	svc := newTestEditorService(mockStore, mockUploader)

	mockStore.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	input := SaveModuleInput{
		Draft: validDraft(),
		Icon:  &StagedFile{Data: []byte("x"), FileName: "a.png", ContentType: "image/png"},
	}
	_, err := svc.SaveModule(context.Background(), input)

	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrUnavailable))

	// The probe retries before giving up: initial attempt plus retries
	mockStore.AssertNumberOfCalls(t, "Ping", 3)
	mockUploader.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "CreateModule", mock.Anything, mock.Anything)
}

func TestSaveModule_ProbeRecoversWithinRetryBudget(t *testing.T) {
	mockStore := new(MockStore)
	mockUploader := new(MockUploader)
	svc := newTestEditorService(mockStore, mockUploader)

	mockStore.On("Ping", mock.Anything).Return(errors.New("timeout")).Once()
	mockStore.On("Ping", mock.Anything).Return(nil).Once()
	mockStore.On("CreateModule", mock.Anything, mock.Anything).
		Return(&models.Module{ID: "id-1", Slug: "perlage"}, nil)

	saved, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: validDraft()})

	require.NoError(t, err)
	assert.Equal(t, "id-1", saved.ID)
	mockStore.AssertExpectations(t)
}

func TestSaveModule_IconUploadFailureAbortsSave(t *testing.T) {
	mockStore := new(MockStore)
	mockUploader := new(MockUploader)
	svc := newTestEditorService(mockStore, mockUploader)

	icon := &StagedFile{Data: []byte("x"), FileName: "a.png", ContentType: "image/png"}

	mockStore.On("Ping", mock.Anything).Return(nil)
	mockUploader.On("ValidateImageType", "image/png").Return(nil)
	mockUploader.On("ValidateImageSize", icon.Data).Return(nil)
	mockUploader.On("UploadImage", mock.Anything, icon.Data, "a.png", "image/png").
		Return("", errors.New("service degraded"))

	_, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: validDraft(), Icon: icon})

	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrUploadFailed))
	mockStore.AssertNotCalled(t, "CreateModule", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "UpdateModule", mock.Anything, mock.Anything)
}

func TestSaveModule_GalleryUploadsAreAllOrNothing(t *testing.T) {
	mockStore := new(MockStore)
	mockUploader := new(MockUploader)
	svc := newTestEditorService(mockStore, mockUploader)

	files := []*StagedFile{
		{Data: []byte("one"), FileName: "one.jpg", ContentType: "image/jpeg"},
		{Data: []byte("two"), FileName: "two.jpg", ContentType: "image/jpeg"},
		{Data: []byte("three"), FileName: "three.jpg", ContentType: "image/jpeg"},
	}

	mockStore.On("Ping", mock.Anything).Return(nil)
	mockUploader.On("ValidateImageType", "image/jpeg").Return(nil)
	for _, f := range files {
		mockUploader.On("ValidateImageSize", f.Data).Return(nil)
	}
	mockUploader.On("UploadImage", mock.Anything, []byte("one"), "one.jpg", "image/jpeg").
		Return("https://cdn.example.com/one.jpg", nil)
	mockUploader.On("UploadImage", mock.Anything, []byte("two"), "two.jpg", "image/jpeg").
		Return("", errors.New("quota exceeded"))
	mockUploader.On("UploadImage", mock.Anything, []byte("three"), "three.jpg", "image/jpeg").
		Return("https://cdn.example.com/three.jpg", nil)

	draft := validDraft()
	draft.Gallery = []string{"https://cdn.example.com/existing.jpg"}

	_, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: draft, GalleryFiles: files})

	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrUploadFailed))

	// The batch is discarded; no write with partial gallery happens
	mockStore.AssertNotCalled(t, "CreateModule", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "UpdateModule", mock.Anything, mock.Anything)
}

func TestSaveModule_GallerySuccessAppendsInInputOrder(t *testing.T) {
	mockStore := new(MockStore)
	mockUploader := new(MockUploader)
	svc := newTestEditorService(mockStore, mockUploader)

	files := []*StagedFile{
		{Data: []byte("one"), FileName: "one.jpg", ContentType: "image/jpeg"},
		{Data: []byte("two"), FileName: "two.jpg", ContentType: "image/jpeg"},
	}

	mockStore.On("Ping", mock.Anything).Return(nil)
	mockUploader.On("ValidateImageType", "image/jpeg").Return(nil)
	mockUploader.On("ValidateImageSize", mock.Anything).Return(nil)
	mockUploader.On("UploadImage", mock.Anything, []byte("one"), "one.jpg", "image/jpeg").
		Return("https://cdn.example.com/one.jpg", nil)
	mockUploader.On("UploadImage", mock.Anything, []byte("two"), "two.jpg", "image/jpeg").
		Return("https://cdn.example.com/two.jpg", nil)

	var written *models.Module
	mockStore.On("CreateModule", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			written = args.Get(1).(*models.Module)
		}).
		Return(&models.Module{ID: "id-1", Slug: "perlage"}, nil)

	draft := validDraft()
	draft.Gallery = []string{"https://cdn.example.com/existing.jpg"}

	_, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: draft, GalleryFiles: files})

	require.NoError(t, err)
	require.NotNil(t, written)
	assert.Equal(t, []string{
		"https://cdn.example.com/existing.jpg",
		"https://cdn.example.com/one.jpg",
		"https://cdn.example.com/two.jpg",
	}, written.Gallery)
}

func TestSaveModule_CreateVersusUpdateByDraftID(t *testing.T) {
	t.Run("empty id creates", func(t *testing.T) {
		mockStore := new(MockStore)
		svc := newTestEditorService(mockStore, new(MockUploader))

		mockStore.On("Ping", mock.Anything).Return(nil)
		mockStore.On("CreateModule", mock.Anything, mock.Anything).
			Return(&models.Module{ID: "new-id", Slug: "perlage"}, nil)

		saved, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: validDraft()})

		require.NoError(t, err)
		assert.Equal(t, "new-id", saved.ID)
		mockStore.AssertNotCalled(t, "UpdateModule", mock.Anything, mock.Anything)
	})

	t.Run("existing id updates", func(t *testing.T) {
		mockStore := new(MockStore)
		svc := newTestEditorService(mockStore, new(MockUploader))

		draft := validDraft()
		draft.ID = "existing-id"

		mockStore.On("Ping", mock.Anything).Return(nil)
		mockStore.On("UpdateModule", mock.Anything, mock.MatchedBy(func(m *models.Module) bool {
			return m.ID == "existing-id"
		})).Return(&models.Module{ID: "existing-id", Slug: "perlage"}, nil)

		saved, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: draft})

		require.NoError(t, err)
		assert.Equal(t, "existing-id", saved.ID)
		mockStore.AssertNotCalled(t, "CreateModule", mock.Anything, mock.Anything)
	})
}

func TestSaveModule_StoreWriteErrorSurfacedVerbatim(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestEditorService(mockStore, new(MockUploader))

	writeErr := errors.New("duplicate key value violates unique constraint")
	mockStore.On("Ping", mock.Anything).Return(nil)
	mockStore.On("CreateModule", mock.Anything, mock.Anything).Return(nil, writeErr)

	_, err := svc.SaveModule(context.Background(), SaveModuleInput{Draft: validDraft()})

	assert.Equal(t, writeErr, err)
}

func TestDeleteModule_ProbesBeforeDeleting(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestEditorService(mockStore, new(MockUploader))

	mockStore.On("Ping", mock.Anything).Return(nil)
	mockStore.On("DeleteModule", mock.Anything, "id-1").Return(nil)

	err := svc.DeleteModule(context.Background(), "id-1")

	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestDeleteModule_ProbeFailureBlocksDelete(t *testing.T) {
	mockStore := new(MockStore)
	svc := newTestEditorService(mockStore, new(MockUploader))

	mockStore.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	err := svc.DeleteModule(context.Background(), "id-1")

	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrUnavailable))
	mockStore.AssertNotCalled(t, "DeleteModule", mock.Anything, mock.Anything)
}

func TestValidationError_MessageListsFieldsInOrder(t *testing.T) {
	err := &ValidationError{Fields: models.FieldErrors{
		"title": "Le titre est requis",
		"slug":  "Le slug est requis",
	}}

	fields := make([]string, 0, len(err.Fields))
	for field := range err.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	assert.Contains(t, err.Error(), "slug")
	assert.Contains(t, err.Error(), "title")
	assert.Equal(t, []string{"slug", "title"}, fields)
}
