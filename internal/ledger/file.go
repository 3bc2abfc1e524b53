package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"artfetch/internal/fileutil"
)

func fileName(kind Kind) string {
	return string(kind) + ".log"
}

func columns(kind Kind) []string {
	switch kind {
	case KindSuccess:
		return []string{"path", "artist", "album", "output", "timestamp"}
	case KindFailed:
		return []string{"path", "artist", "album", "reason", "timestamp"}
	default:
		return []string{"path", "artist", "album", "output", "reason", "timestamp"}
	}
}

func (l *Ledger) path(kind Kind) string {
	return filepath.Join(l.dir, fileName(kind))
}

func (l *Ledger) loadFile(kind Kind) error {
	file, err := os.Open(l.path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening %s ledger: %w", kind, err)
	}
	defer file.Close()

	want := len(columns(kind))
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != want {
			continue
		}
		l.upsert(kind, entryFromFields(kind, fields))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s ledger: %w", kind, err)
	}
	return nil
}

func entryFromFields(kind Kind, fields []string) Entry {
	entry := Entry{Key: fields[0], Artist: fields[1], Album: fields[2]}
	switch kind {
	case KindSuccess:
		entry.Output = fields[3]
	case KindFailed:
		entry.Reason = fields[3]
	default:
		entry.Output = fields[3]
		entry.Reason = fields[4]
	}
	if ts, err := time.Parse(time.RFC3339, fields[len(fields)-1]); err == nil {
		entry.Timestamp = ts
	}
	return entry
}

func entryFields(kind Kind, entry Entry) []string {
	timestamp := entry.Timestamp.UTC().Format(time.RFC3339)
	switch kind {
	case KindSuccess:
		return []string{entry.Key, entry.Artist, entry.Album, entry.Output, timestamp}
	case KindFailed:
		return []string{entry.Key, entry.Artist, entry.Album, entry.Reason, timestamp}
	default:
		return []string{entry.Key, entry.Artist, entry.Album, entry.Output, entry.Reason, timestamp}
	}
}

func (l *Ledger) writeFile(kind Kind) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# artfetch %s ledger\n", kind)
	fmt.Fprintf(&b, "# %s\n", strings.Join(columns(kind), "|"))

	for _, entry := range l.Entries(kind) {
		fields := entryFields(kind, entry)
		for i, field := range fields {
			fields[i] = sanitizeField(field)
		}
		b.WriteString(strings.Join(fields, "|"))
		b.WriteByte('\n')
	}

	if err := fileutil.WriteFileAtomic(l.path(kind), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s ledger: %w", kind, err)
	}
	return nil
}

// sanitizeField keeps a value from breaking the line format.
func sanitizeField(value string) string {
	value = strings.ReplaceAll(value, "|", "/")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(value)
}
