package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/multierr"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// Dialects lists every dialect directory a migration must exist in.
var Dialects = []string{DialectPostgres, DialectSQLite}

// dialectTemplates hold the starting body for each dialect. Postgres wraps
// statements in a transaction block; SQLite has no ALTER COLUMN, so changes
// there usually rebuild the table.
var dialectTemplates = map[string]string{
	DialectPostgres: `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`,
	DialectSQLite: `-- +goose Up
-- %[1]s
-- sqlite cannot alter column types; copy into a new table and rename when needed

-- +goose Down
-- rollback %[1]s
`,
}

// CreateSQLMigration writes <root>/<dialect>/<YYYYMMDDHHMMSS>_<name>.sql for
// every dialect with one shared version, so ValidateEmbedded keeps passing.
// Nothing is left behind when any file cannot be written.
func CreateSQLMigration(root, name string, now time.Time) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("dir is required")
	}
	safe, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}

	version := now.UTC().Format("20060102150405")
	filename := fmt.Sprintf("%s_%s.sql", version, safe)

	paths := make([]string, 0, len(Dialects))
	for _, dialect := range Dialects {
		dir := filepath.Join(root, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, multierr.Append(fmt.Errorf("mkdir %q: %w", dir, err), removeAll(paths))
		}
		full := filepath.Join(dir, filename)
		if _, err := os.Stat(full); err == nil {
			return nil, multierr.Append(fmt.Errorf("migration already exists: %s", full), removeAll(paths))
		}
		body := fmt.Sprintf(dialectTemplates[dialect], safe)
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			return nil, multierr.Append(fmt.Errorf("write migration %q: %w", full, err), removeAll(paths))
		}
		paths = append(paths, full)
	}
	return paths, nil
}

func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name is required")
	}
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	return safe, nil
}

func removeAll(paths []string) error {
	var err error
	for _, p := range paths {
		err = multierr.Append(err, os.Remove(p))
	}
	return err
}
