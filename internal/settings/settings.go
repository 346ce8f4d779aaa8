// Package settings implements the versioned, default-filled vault
// configuration, its validation rules, and JSON patch merging.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/oxidian/engine/internal/errs"
)

// SchemaVersion is the current on-disk settings format version.
const SchemaVersion = 2

// EditorSettings covers the note editor's appearance and behavior.
type EditorSettings struct {
	FontSize        int    `json:"font_size" validate:"gte=8,lte=48"`
	TabSize         int    `json:"tab_size" validate:"oneof=2 4 8"`
	DefaultViewMode string `json:"default_view_mode" validate:"oneof=edit preview split"`
}

// VaultSettings covers vault-wide behaviors.
type VaultSettings struct {
	DeletedFilesBehavior string `json:"deleted_files_behavior" validate:"oneof=trash delete system-trash"`
	EncryptionEnabled    bool   `json:"encryption_enabled"`
}

// RememberSettings covers spaced-repetition review defaults.
type RememberSettings struct {
	CardsPerSession int `json:"cards_per_session" validate:"gt=0"`
	DefaultQuality  int `json:"default_quality" validate:"gte=0,lte=5"`
}

// Settings is the full versioned configuration record. PluginSettings
// preserves any unknown top-level object the host's plugin layer owns.
type Settings struct {
	SchemaVersion  int                    `json:"schema_version"`
	Editor         EditorSettings         `json:"editor" validate:"required"`
	Vault          VaultSettings          `json:"vault" validate:"required"`
	Remember       RememberSettings       `json:"remember" validate:"required"`
	PluginSettings map[string]interface{} `json:"plugin_settings,omitempty"`
}

// Default returns a Settings record with every field at its default value.
func Default() Settings {
	return Settings{
		SchemaVersion: SchemaVersion,
		Editor: EditorSettings{
			FontSize:        16,
			TabSize:         4,
			DefaultViewMode: "edit",
		},
		Vault: VaultSettings{
			DeletedFilesBehavior: "trash",
			EncryptionEnabled:    false,
		},
		Remember: RememberSettings{
			CardsPerSession: 20,
			DefaultQuality:  3,
		},
	}
}

var validate = validator.New()

// Validate runs struct-tag validation plus cross-field rules not
// expressible as tags, and returns a list of human-readable issues. An
// empty list means valid.
func Validate(s Settings) []string {
	var issues []string

	if err := validate.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				issues = append(issues, describeFieldError(fe))
			}
		} else {
			issues = append(issues, err.Error())
		}
	}

	if s.SchemaVersion <= 0 {
		issues = append(issues, "schema_version must be positive")
	}

	return issues
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Namespace(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", fe.Namespace(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", fe.Namespace(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Namespace(), fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	default:
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
}

func sidecarPath(vaultDir string) string {
	return filepath.Join(vaultDir, ".oxidian", "settings.json")
}

// Load reads .oxidian/settings.json, returning defaults if absent. Older
// files missing newer fields load cleanly because every sub-record
// supplies its own defaults before unmarshaling over them.
func Load(vaultDir string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(sidecarPath(vaultDir))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, errs.Wrap(errs.IOFailure, err, "reading settings.json")
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), errs.Wrap(errs.InvalidInput, err, "malformed settings.json")
	}
	return s, nil
}

// Save validates then persists s atomically.
func Save(vaultDir string, s Settings) error {
	if issues := Validate(s); len(issues) > 0 {
		return errs.New(errs.InvalidInput, "invalid settings: %v", issues)
	}

	dir := filepath.Join(vaultDir, ".oxidian")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.IOFailure, err, "creating .oxidian directory")
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "marshaling settings.json")
	}

	path := sidecarPath(vaultDir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(errs.IOFailure, err, "writing settings.json")
	}
	return os.Rename(tmp, path)
}

// Merge deep-merges a JSON patch into current: at each level, object
// values are merged recursively; non-object values are replaced.
func Merge(current Settings, patch json.RawMessage) (Settings, error) {
	currentMap, err := toMap(current)
	if err != nil {
		return current, errs.Wrap(errs.InvalidInput, err, "encoding current settings")
	}

	var patchMap map[string]interface{}
	if err := json.Unmarshal(patch, &patchMap); err != nil {
		return current, errs.Wrap(errs.InvalidInput, err, "malformed settings patch")
	}

	merged := mergeMaps(currentMap, patchMap)

	mergedData, err := json.Marshal(merged)
	if err != nil {
		return current, errs.Wrap(errs.InvalidInput, err, "re-encoding merged settings")
	}

	var result Settings
	if err := json.Unmarshal(mergedData, &result); err != nil {
		return current, errs.Wrap(errs.InvalidInput, err, "decoding merged settings")
	}
	return result, nil
}

func toMap(s Settings) (map[string]interface{}, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func mergeMaps(base, patch map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, patchVal := range patch {
		baseVal, exists := out[k]
		baseObj, baseIsObj := baseVal.(map[string]interface{})
		patchObj, patchIsObj := patchVal.(map[string]interface{})
		if exists && baseIsObj && patchIsObj {
			out[k] = mergeMaps(baseObj, patchObj)
		} else {
			out[k] = patchVal
		}
	}
	return out
}
