package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

const versionLayout = "20060102150405"

var upTemplate = template.Must(template.New("up").Parse(`-- Migration: {{.Name}}
-- Created: {{.Created}}
-- Description: {{.Description}}

`))

var downTemplate = template.Must(template.New("down").Parse(`-- Migration: {{.Name}} (Rollback)
-- Created: {{.Created}}

`))

// ErrEmptyName is returned when a migration name sanitizes to nothing
var ErrEmptyName = errors.New("migration name must contain letters or digits")

// NewMigration describes a freshly scaffolded up/down pair
type NewMigration struct {
	Version     string
	Name        string
	Description string
	Created     string
	UpPath      string
	DownPath    string
}

// Entry is one migration found in a source
type Entry struct {
	Version string
	Name    string
	HasDown bool
}

// CreateMigration scaffolds an empty up/down pair in dir, versioned by the current time
func CreateMigration(dir, name, description string) (*NewMigration, error) {
	return createAt(dir, name, description, time.Now().UTC())
}

func createAt(dir, name, description string, now time.Time) (*NewMigration, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, ErrEmptyName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := now.Format(versionLayout)
	base := filepath.Join(dir, version+"_"+slug)
	nm := &NewMigration{
		Version:     version,
		Name:        slug,
		Description: description,
		Created:     now.Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	if err := writeTemplate(nm.UpPath, upTemplate, nm); err != nil {
		return nil, err
	}
	if err := writeTemplate(nm.DownPath, downTemplate, nm); err != nil {
		_ = os.Remove(nm.UpPath)
		return nil, err
	}
	return nm, nil
}

func writeTemplate(path string, tmpl *template.Template, data *NewMigration) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// sanitizeName lowercases name and joins its words with single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the migrations in fsys ordered by version.
// A missing directory lists as empty.
func ListMigrations(fsys fs.FS) ([]Entry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byBase := make(map[string]*Entry)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base, down := strings.CutSuffix(e.Name(), ".down.sql")
		if !down {
			var up bool
			if base, up = strings.CutSuffix(e.Name(), ".up.sql"); !up {
				continue
			}
		}
		version, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		entry, seen := byBase[base]
		if !seen {
			entry = &Entry{Version: version, Name: name}
			byBase[base] = entry
		}
		if down {
			entry.HasDown = true
		}
	}

	out := make([]Entry, 0, len(byBase))
	for _, e := range byBase {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
