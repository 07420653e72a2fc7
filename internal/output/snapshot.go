package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxNameLen = 50

// SnapshotStore writes raw captured markup for offline troubleshooting.
// Nothing in the pipeline reads these files back.
type SnapshotStore struct {
	dir string
	now func() time.Time
}

func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir, now: time.Now}
}

func (s *SnapshotStore) Save(url string, attempt int, html string) (string, error) {
	name := fmt.Sprintf("page_content_%s_attempt_%d_%s.html", SanitizeName(url), attempt, s.now().Format(timestampLayout))
	path := filepath.Join(s.dir, name)

	if err := ensureDir(path); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// SanitizeName replaces every character outside [A-Za-z0-9] with '_' and
// keeps the first 50 characters.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == maxNameLen {
			break
		}
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
