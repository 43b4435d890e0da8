package repositories

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations
var migrations embed.FS

type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "not found"
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}

type ErrUserExists struct {
	Username string
}

func (e *ErrUserExists) Error() string {
	return fmt.Sprintf("user %s already exists", e.Username)
}

func IsUserExists(err error) bool {
	var exists *ErrUserExists
	return errors.As(err, &exists)
}

// readMigrations returns the embedded migration scripts for a dialect in file name order.
func readMigrations(dialect string) ([]string, error) {
	dir := "migrations/" + dialect
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(migrations, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", name, err)
		}
		scripts = append(scripts, string(b))
	}

	return scripts, nil
}
