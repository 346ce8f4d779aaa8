package vault

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/oxidian/engine/internal/errs"
	"github.com/oxidian/engine/internal/frontmatter"
)

// obsidianConfig mirrors the subset of Obsidian's own config file this
// engine reads to discover vaults by name.
type obsidianConfig struct {
	Vaults map[string]struct {
		Path string `json:"path"`
	} `json:"vaults"`
}

// ResolveVaultDir turns a vault name, "~"-relative path, or absolute path
// into a validated absolute directory. A bare name is looked up by
// directory basename in Obsidian's own config file, falling back to the
// VLT_VAULT_PATH environment variable if that config isn't readable.
func ResolveVaultDir(name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return validateVaultDir(name)
	}
	if strings.HasPrefix(name, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errs.Wrap(errs.IOFailure, err, "resolving home directory")
		}
		return validateVaultDir(filepath.Join(home, name[1:]))
	}

	vaults, err := discoverVaults()
	if err != nil {
		if p := os.Getenv("VLT_VAULT_PATH"); p != "" {
			return validateVaultDir(p)
		}
		return "", err
	}

	path, ok := vaults[name]
	if !ok {
		available := make([]string, 0, len(vaults))
		for k := range vaults {
			available = append(available, k)
		}
		return "", errs.New(errs.NotFound, "vault %q not found; available: %s", name, strings.Join(available, ", "))
	}
	return validateVaultDir(path)
}

func validateVaultDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errs.New(errs.NotFound, "vault directory not found: %s", path)
	}
	if !info.IsDir() {
		return "", errs.New(errs.InvalidInput, "vault path is not a directory: %s", path)
	}
	return path, nil
}

func discoverVaults() (map[string]string, error) {
	configPath := obsidianConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, err, "reading %s", configPath)
	}

	var cfg obsidianConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Wrap(errs.InvalidInput, err, "parsing %s", configPath)
	}

	vaults := make(map[string]string, len(cfg.Vaults))
	for _, entry := range cfg.Vaults {
		vaults[filepath.Base(entry.Path)] = entry.Path
	}
	return vaults, nil
}

func obsidianConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, "Library", "Application Support")
	}
	return filepath.Join(configDir, "obsidian", "obsidian.json")
}

// ResolveNote finds a note's vault-relative path by title: a path-suffix
// pass when title contains "/", then an exact-filename pass, then a
// frontmatter-aliases pass. Hidden directories and .trash are skipped.
func (v *Vault) ResolveNote(title string) (string, error) {
	if strings.Contains(title, "/") {
		if rel, ok := v.resolveNoteByPathSuffix(title); ok {
			return rel, nil
		}
	}

	target := title + ".md"
	var found string
	filepath.WalkDir(v.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() && (strings.HasPrefix(name, ".") || name == ".trash") {
			return filepath.SkipDir
		}
		if !d.IsDir() && name == target {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if found != "" {
		rel, _ := filepath.Rel(v.Dir, found)
		return filepath.ToSlash(rel), nil
	}

	filepath.WalkDir(v.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() && (strings.HasPrefix(name, ".") || name == ".trash") {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(name, ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		fm, _, ok := frontmatter.Parse(string(data))
		if !ok {
			return nil
		}
		for _, alias := range fm.Aliases {
			if strings.EqualFold(alias, title) {
				found = path
				return filepath.SkipAll
			}
		}
		return nil
	})
	if found != "" {
		rel, _ := filepath.Rel(v.Dir, found)
		return filepath.ToSlash(rel), nil
	}

	return "", errs.New(errs.NotFound, "note %q not found in vault", title)
}

func (v *Vault) resolveNoteByPathSuffix(title string) (string, bool) {
	suffix := strings.TrimPrefix(title, "/")
	if !strings.HasSuffix(suffix, ".md") {
		suffix += ".md"
	}

	if strings.HasPrefix(title, "/") {
		candidate := filepath.Join(v.Dir, suffix)
		if _, err := os.Stat(candidate); err == nil {
			rel, _ := filepath.Rel(v.Dir, candidate)
			return filepath.ToSlash(rel), true
		}
		return "", false
	}

	var found string
	suffixSlash := "/" + suffix
	filepath.WalkDir(v.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() && (strings.HasPrefix(name, ".") || name == ".trash") {
			return filepath.SkipDir
		}
		rel, _ := filepath.Rel(v.Dir, path)
		rel = filepath.ToSlash(rel)
		if !d.IsDir() && (rel == suffix || strings.HasSuffix("/"+rel, suffixSlash)) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if found == "" {
		return "", false
	}
	rel, _ := filepath.Rel(v.Dir, found)
	return filepath.ToSlash(rel), true
}
