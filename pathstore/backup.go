package pathstore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	backupPathPrefix        = "Path:"
	backupDescriptionPrefix = "Description:"
)

// BackupEntry one path/description pair of the backup log
type BackupEntry struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// backupWriter appends pairs to the backup log
type backupWriter struct {
	file *os.File
}

func openBackup(name string) (*backupWriter, error) {
	file, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file %s: %w", name, err)
	}
	return &backupWriter{file: file}, nil
}

// Write appends one pair. Newlines are folded so each field stays on one line.
func (w *backupWriter) Write(path, description string) error {
	_, err := fmt.Fprintf(w.file, "%s %s\n%s %s\n\n", backupPathPrefix, oneLine(path), backupDescriptionPrefix, oneLine(description))
	return err
}

func (w *backupWriter) Close() error {
	return w.file.Close()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ReadBackup reads the pairs of a backup log
func ReadBackup(name string) ([]BackupEntry, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file %s: %w", name, err)
	}
	defer file.Close()
	return parseBackup(file)
}

// parseBackup pairs every Description line with the Path line before it;
// unpaired lines are dropped
func parseBackup(r io.Reader) ([]BackupEntry, error) {
	entries := []BackupEntry{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	pending := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, backupPathPrefix):
			pending = strings.TrimSpace(strings.TrimPrefix(line, backupPathPrefix))
		case strings.HasPrefix(line, backupDescriptionPrefix):
			description := strings.TrimSpace(strings.TrimPrefix(line, backupDescriptionPrefix))
			if pending != "" && description != "" {
				entries = append(entries, BackupEntry{Path: pending, Description: description})
			}
			pending = ""
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return entries, nil
}
