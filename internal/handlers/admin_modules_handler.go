package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/services"
	"github.com/lambda-art/lambdaart-api/internal/store"
)

// AdminModulesHandler handles the dashboard module CRUD. Saves go
// through the editor pipeline; reads and deletes hit the store
// directly.
type AdminModulesHandler struct {
	editor *services.EditorService
	store  store.Store
}

func NewAdminModulesHandler(editor *services.EditorService, catalogStore store.Store) *AdminModulesHandler {
	return &AdminModulesHandler{
		editor: editor,
		store:  catalogStore,
	}
}

// ListModules handles GET /api/v1/admin/modules
func (h *AdminModulesHandler) ListModules(c *gin.Context) {
	modules, err := h.store.ListModules(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

// GetModule handles GET /api/v1/admin/modules/:id
func (h *AdminModulesHandler) GetModule(c *gin.Context) {
	module, err := h.store.GetModuleByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}

// CreateModule handles POST /api/v1/admin/modules.
// The request is multipart: a "module" field with the draft JSON, an
// optional "icon" file and any number of "gallery" files.
func (h *AdminModulesHandler) CreateModule(c *gin.Context) {
	input, err := h.parseSaveInput(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid module payload", err)
		return
	}
	input.Draft.ID = ""

	saved, err := h.editor.SaveModule(c.Request.Context(), *input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// UpdateModule handles PUT /api/v1/admin/modules/:id
func (h *AdminModulesHandler) UpdateModule(c *gin.Context) {
	input, err := h.parseSaveInput(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid module payload", err)
		return
	}
	input.Draft.ID = c.Param("id")

	saved, err := h.editor.SaveModule(c.Request.Context(), *input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// DeleteModule handles DELETE /api/v1/admin/modules/:id
func (h *AdminModulesHandler) DeleteModule(c *gin.Context) {
	if err := h.editor.DeleteModule(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseSaveInput extracts the module draft and staged files from a
// multipart save request
func (h *AdminModulesHandler) parseSaveInput(c *gin.Context) (*services.SaveModuleInput, error) {
	draftJSON := c.PostForm("module")

	var draft models.ModuleDraft
	if err := json.Unmarshal([]byte(draftJSON), &draft); err != nil {
		return nil, err
	}

	input := &services.SaveModuleInput{Draft: draft}

	if iconHeader, err := c.FormFile("icon"); err == nil {
		icon, readErr := readStagedFile(iconHeader)
		if readErr != nil {
			return nil, readErr
		}
		input.Icon = icon
	}

	if form, err := c.MultipartForm(); err == nil {
		for _, galleryHeader := range form.File["gallery"] {
			file, readErr := readStagedFile(galleryHeader)
			if readErr != nil {
				return nil, readErr
			}
			input.GalleryFiles = append(input.GalleryFiles, file)
		}
	}

	return input, nil
}

func readStagedFile(header *multipart.FileHeader) (*services.StagedFile, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &services.StagedFile{
		Data:        data,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
