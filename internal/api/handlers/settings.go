package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/podcast-studio/backend/internal/db"
)

// settingsKeys defines which keys are allowed and their display metadata
var settingsKeys = []SettingDef{
	{Key: "openai_api_key", Label: "OpenAI API Key", Group: "ai", Placeholder: "sk-...", Secret: true},
	{Key: "openai_base_url", Label: "OpenAI Base URL", Group: "ai", Placeholder: "https://api.openai.com", Secret: false},
	{Key: "openai_chat_model", Label: "Chat Model", Group: "ai", Placeholder: "gpt-4o-mini", Secret: false},
	{Key: "transcription_language", Label: "Default Language", Group: "ai", Placeholder: "auto", Secret: false},
	{Key: "feed_base_url", Label: "Feed Base URL", Group: "publishing", Placeholder: "https://example.com", Secret: false},
}

type SettingDef struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Group       string `json:"group"`
	Placeholder string `json:"placeholder"`
	Secret      bool   `json:"secret"`
}

type SettingsHandler struct {
	database *db.Database
}

func NewSettingsHandler(database *db.Database) *SettingsHandler {
	return &SettingsHandler{database: database}
}

const settingsMask = "••••••••"

// GetSettings returns all settings (secrets are masked)
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.database.GetAllSettings()
	if err != nil {
		jsonError(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	type SettingResponse struct {
		SettingDef
		Value    string `json:"value"`
		HasValue bool   `json:"has_value"`
	}

	var result []SettingResponse
	for _, def := range settingsKeys {
		val := all[def.Key]
		masked := val
		hasValue := val != ""
		if def.Secret && hasValue {
			// Show only last 4 chars
			if len(val) > 4 {
				masked = settingsMask + val[len(val)-4:]
			} else {
				masked = settingsMask
			}
		}
		result = append(result, SettingResponse{
			SettingDef: def,
			Value:      masked,
			HasValue:   hasValue,
		})
	}
	jsonResponse(w, result, http.StatusOK)
}

// UpdateSettings saves settings from the request body. Masked values are
// skipped so a round-tripped secret never overwrites the stored one; an
// explicit empty string clears the key.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	allowed := make(map[string]bool)
	for _, def := range settingsKeys {
		allowed[def.Key] = true
	}

	for key, value := range updates {
		if !allowed[key] {
			continue
		}
		if strings.HasPrefix(value, settingsMask) {
			continue
		}
		if err := h.database.SetSetting(key, value); err != nil {
			jsonError(w, "failed to save setting: "+key, http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
