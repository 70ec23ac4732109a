package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JournalRecord is a single line in the history journal
type JournalRecord struct {
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
	RawInput  string    `json:"rawInput"`
	Kind      Kind      `json:"kind"`
	Line      int       `json:"-"` // Line number in the journal (1-indexed)
}

// Entry converts the record back into a history entry
func (r JournalRecord) Entry() HistoryEntry {
	return HistoryEntry{Timestamp: r.Timestamp, RawInput: r.RawInput, Kind: r.Kind}
}

// Journal appends history entries to a JSONL file so they outlive the process.
// It is write-only from the store's point of view; reading goes through ReadJournal.
type Journal struct {
	path string
	mu   sync.Mutex
}

// OpenJournal prepares a journal at path, creating parent directories
func OpenJournal(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	return &Journal{path: path}, nil
}

// Path returns the journal file location
func (j *Journal) Path() string {
	return j.path
}

// Append writes one record for entry
func (j *Journal) Append(sessionID string, entry HistoryEntry) error {
	line, err := json.Marshal(JournalRecord{
		SessionID: sessionID,
		Timestamp: entry.Timestamp,
		RawInput:  entry.RawInput,
		Kind:      entry.Kind,
	})
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// journalState holds state for incremental JSONL parsing
type journalState struct {
	records    []JournalRecord
	lineNumber int
	offset     int64
}

// processLine parses a single JSONL line. Malformed lines are skipped.
// Returns the number of bytes consumed (for offset tracking).
func (js *journalState) processLine(line []byte) int {
	lineLen := len(line) + 1 // +1 for newline
	js.lineNumber++

	var record JournalRecord
	if err := json.Unmarshal(line, &record); err != nil {
		return lineLen
	}
	if record.RawInput == "" {
		return lineLen
	}
	if record.Kind == "" {
		record.Kind = KindCommand
	}
	record.Line = js.lineNumber
	js.records = append(js.records, record)
	return lineLen
}

// ReadJournal reads every record in the journal at path
func ReadJournal(path string) ([]JournalRecord, error) {
	records, _, _, err := ReadJournalFrom(path, 0, 0)
	return records, err
}

// ReadJournalFrom reads records starting at a byte offset.
// Returns records found, the new offset, the new line number, and any error.
// A missing journal is not an error.
func ReadJournalFrom(path string, offset int64, startLine int) (records []JournalRecord, newOffset int64, newLine int, err error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, offset, startLine, nil
		}
		return nil, offset, startLine, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	if offset > 0 {
		if _, err := file.Seek(offset, 0); err != nil {
			return nil, offset, startLine, fmt.Errorf("seek journal: %w", err)
		}
	}

	js := &journalState{lineNumber: startLine, offset: offset}

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		js.offset += int64(js.processLine(scanner.Bytes()))
	}

	return js.records, js.offset, js.lineNumber, scanner.Err()
}
