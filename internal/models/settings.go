package models

// SettingsKey is the well-known key of the global settings document
const SettingsKey = "global"

// Settings is the global settings singleton. It is created lazily on
// first save; reads against a missing document yield zero values and
// callers fall back to configured defaults.
type Settings struct {
	WhatsappNumber string `json:"whatsappNumber,omitempty"`
}

// SettingsPatch carries the fields of a merge-write. Only non-nil
// fields are written; existing unrelated fields are preserved.
type SettingsPatch struct {
	WhatsappNumber *string `json:"whatsappNumber,omitempty"`
}
