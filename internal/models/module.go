package models

import (
	"time"

	"github.com/lambda-art/lambdaart-api/pkg/slug"
)

// Module represents a training module (course) in the catalog
type Module struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	ShortDesc string    `json:"shortDesc"`
	LongDesc  string    `json:"longDesc"`
	IconSrc   string    `json:"iconSrc"`
	Gallery   []string  `json:"gallery"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// HasRequiredFields reports whether the record carries the fields the
// public catalog needs to render it. Records failing this check are
// dropped from the mirror with a warning, not treated as fatal.
func (m *Module) HasRequiredFields() bool {
	return m.Slug != "" && m.IconSrc != "" && m.Title != "" && m.ShortDesc != ""
}

// ModuleDraft is the editable form state for a module save.
// IconSrc/Gallery hold already-resolved URLs; freshly staged files are
// carried separately by the editor and resolved to URLs before the write.
type ModuleDraft struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	ShortDesc string   `json:"shortDesc"`
	LongDesc  string   `json:"longDesc"`
	IconSrc   string   `json:"iconSrc"`
	Gallery   []string `json:"gallery"`
}

// FieldErrors maps field names to user-facing validation messages
type FieldErrors map[string]string

const maxShortDescLen = 160

// Validate performs the synchronous field checks for a module save.
// All failing fields are reported at once; any failure halts the save.
// hasIcon is true when the draft either references an existing icon URL
// or has a new icon file staged for upload.
func (d *ModuleDraft) Validate(hasIcon bool) FieldErrors {
	errs := FieldErrors{}

	if d.Slug == "" {
		errs["slug"] = "Le slug est requis"
	} else if !slug.IsValid(d.Slug) {
		errs["slug"] = "Le slug ne peut contenir que des lettres minuscules, des chiffres et des tirets"
	}

	if d.Title == "" {
		errs["title"] = "Le titre est requis"
	}

	if d.ShortDesc == "" {
		errs["shortDesc"] = "La description courte est requise"
	} else if len([]rune(d.ShortDesc)) > maxShortDescLen {
		errs["shortDesc"] = "La description courte ne peut pas dépasser 160 caractères"
	}

	if d.LongDesc == "" {
		errs["longDesc"] = "La description longue est requise"
	}

	if !hasIcon {
		errs["iconSrc"] = "L'icône du module est requise"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ToModule converts a draft into a Module ready for a store write
func (d *ModuleDraft) ToModule() *Module {
	gallery := d.Gallery
	if gallery == nil {
		gallery = []string{}
	}

	return &Module{
		ID:        d.ID,
		Slug:      d.Slug,
		Title:     d.Title,
		ShortDesc: d.ShortDesc,
		LongDesc:  d.LongDesc,
		IconSrc:   d.IconSrc,
		Gallery:   gallery,
	}
}

// PublicModuleResponse is the catalog card payload for the landing page
type PublicModuleResponse struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	ShortDesc string `json:"shortDesc"`
	IconSrc   string `json:"iconSrc"`
	Link      string `json:"link"`
}

// ToPublicResponse converts a Module to its catalog card form
func (m *Module) ToPublicResponse(baseURL string) PublicModuleResponse {
	return PublicModuleResponse{
		Slug:      m.Slug,
		Title:     m.Title,
		ShortDesc: m.ShortDesc,
		IconSrc:   m.IconSrc,
		Link:      baseURL + "/modules/" + m.Slug,
	}
}
