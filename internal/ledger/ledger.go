// Package ledger implements the tamper-evident run history: an append-only
// JSONL file where every record hashes its payload and chains to the
// previous record's hash. A harness that edits its own history breaks the
// chain, and `skep ledger verify` will say exactly where.
package ledger

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const (
	// SchemaVersion is the current record schema version.
	SchemaVersion = 1

	// RelativePath is the ledger location under the base directory.
	RelativePath = "ledger/runs.jsonl"
)

// Record is a single append-only event in the run ledger.
type Record struct {
	SchemaVersion int             `json:"schema_version"`
	EventID       string          `json:"event_id"`
	RunID         string          `json:"run_id"`
	TS            string          `json:"ts"`
	Suite         string          `json:"suite"`
	Action        string          `json:"action"`
	Details       json.RawMessage `json:"details"`
	PrevHash      string          `json:"prev_hash"`
	PayloadHash   string          `json:"payload_hash"`
	Hash          string          `json:"hash"`
}

// AppendInput contains the caller-supplied fields for one event.
type AppendInput struct {
	RunID   string
	Suite   string
	Action  string
	Details any
}

// VerifyResult is the machine-readable verify output contract.
type VerifyResult struct {
	Pass             bool   `json:"pass"`
	RecordCount      int    `json:"record_count"`
	FirstBrokenIndex int    `json:"first_broken_index"`
	Message          string `json:"message,omitempty"`
}

// payload is the hashed portion of a record (everything except the hashes
// derived from it).
type payload struct {
	SchemaVersion int             `json:"schema_version"`
	EventID       string          `json:"event_id"`
	RunID         string          `json:"run_id"`
	TS            string          `json:"ts"`
	Suite         string          `json:"suite"`
	Action        string          `json:"action"`
	Details       json.RawMessage `json:"details"`
	PrevHash      string          `json:"prev_hash"`
}

// Path returns the absolute ledger file path for a base directory.
func Path(baseDir string) string {
	return filepath.Join(baseDir, RelativePath)
}

// Append appends one event with lock + fsync durability.
func Append(baseDir string, input AppendInput) (Record, error) {
	if strings.TrimSpace(input.RunID) == "" {
		return Record{}, fmt.Errorf("run_id is required")
	}
	if strings.TrimSpace(input.Action) == "" {
		return Record{}, fmt.Errorf("action is required")
	}

	ledgerPath := Path(baseDir)
	ledgerDir := filepath.Dir(ledgerPath)
	if err := os.MkdirAll(ledgerDir, 0755); err != nil {
		return Record{}, fmt.Errorf("create ledger dir: %w", err)
	}

	lockFile, err := os.OpenFile(ledgerPath+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return Record{}, fmt.Errorf("open ledger lock: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return Record{}, fmt.Errorf("lock ledger: %w", err)
	}
	defer func() {
		_ = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
	}()

	ledgerFile, err := os.OpenFile(ledgerPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return Record{}, fmt.Errorf("open ledger: %w", err)
	}
	defer ledgerFile.Close()

	prevHash, err := readLastHash(ledgerFile)
	if err != nil {
		return Record{}, err
	}

	details, err := normalizeDetails(input.Details)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		SchemaVersion: SchemaVersion,
		EventID:       newEventID(),
		RunID:         input.RunID,
		TS:            time.Now().UTC().Format(time.RFC3339Nano),
		Suite:         input.Suite,
		Action:        input.Action,
		Details:       details,
		PrevHash:      prevHash,
	}

	payloadHash, hashValue, err := computeHashes(record)
	if err != nil {
		return Record{}, err
	}
	record.PayloadHash = payloadHash
	record.Hash = hashValue

	line, err := json.Marshal(record)
	if err != nil {
		return Record{}, fmt.Errorf("marshal ledger record: %w", err)
	}

	if _, err := ledgerFile.Seek(0, io.SeekEnd); err != nil {
		return Record{}, fmt.Errorf("seek ledger end: %w", err)
	}
	if _, err := ledgerFile.Write(append(line, '\n')); err != nil {
		return Record{}, fmt.Errorf("append ledger record: %w", err)
	}
	if err := ledgerFile.Sync(); err != nil {
		return Record{}, fmt.Errorf("fsync ledger: %w", err)
	}
	if err := syncDirectory(ledgerDir); err != nil {
		return Record{}, err
	}

	return record, nil
}

// Load loads all ledger events in append order. A missing ledger is an
// empty ledger, not an error.
func Load(baseDir string) ([]Record, error) {
	file, err := os.Open(Path(baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("decode ledger line %d: %w", lineNum, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	return records, nil
}

// Verify verifies the on-disk ledger chain and reports the first broken
// index without failing the call for chain mismatches.
func Verify(baseDir string) (VerifyResult, error) {
	records, err := Load(baseDir)
	if err != nil {
		return VerifyResult{}, err
	}

	result := VerifyResult{
		Pass:             true,
		RecordCount:      len(records),
		FirstBrokenIndex: -1,
	}

	prevHash := ""
	for i, record := range records {
		if err := validateRecord(record); err != nil {
			return broken(result, i, err.Error()), nil
		}
		if record.PrevHash != prevHash {
			return broken(result, i, fmt.Sprintf("prev_hash mismatch: got %q want %q", record.PrevHash, prevHash)), nil
		}

		payloadHash, hashValue, err := computeHashes(record)
		if err != nil {
			return broken(result, i, err.Error()), nil
		}
		if record.PayloadHash != payloadHash {
			return broken(result, i, "payload_hash mismatch"), nil
		}
		if record.Hash != hashValue {
			return broken(result, i, "hash mismatch"), nil
		}
		prevHash = record.Hash
	}

	return result, nil
}

// broken marks a verify result failed at the 1-based record index.
func broken(result VerifyResult, index int, message string) VerifyResult {
	result.Pass = false
	result.FirstBrokenIndex = index + 1
	result.Message = message
	return result
}

// RunRecords returns the records belonging to one run, in append order.
func RunRecords(baseDir, runID string) ([]Record, error) {
	records, err := Load(baseDir)
	if err != nil {
		return nil, err
	}
	var matched []Record
	for _, record := range records {
		if record.RunID == runID {
			matched = append(matched, record)
		}
	}
	if len(matched) == 0 {
		return nil, os.ErrNotExist
	}
	return matched, nil
}

func readLastHash(file *os.File) (string, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek ledger start: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lastHash := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return "", fmt.Errorf("decode existing ledger record: %w", err)
		}
		lastHash = record.Hash
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan ledger: %w", err)
	}
	return lastHash, nil
}

func validateRecord(record Record) error {
	if record.SchemaVersion != SchemaVersion {
		return fmt.Errorf("schema_version mismatch: got %d want %d", record.SchemaVersion, SchemaVersion)
	}
	if strings.TrimSpace(record.EventID) == "" {
		return fmt.Errorf("event_id is required")
	}
	if strings.TrimSpace(record.RunID) == "" {
		return fmt.Errorf("run_id is required")
	}
	if strings.TrimSpace(record.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if strings.TrimSpace(record.TS) == "" {
		return fmt.Errorf("ts is required")
	}
	t, err := time.Parse(time.RFC3339Nano, record.TS)
	if err != nil {
		return fmt.Errorf("invalid ts: %w", err)
	}
	if t.UTC().Format(time.RFC3339Nano) != record.TS {
		return fmt.Errorf("ts must be UTC RFC3339Nano")
	}
	if strings.TrimSpace(record.PayloadHash) == "" {
		return fmt.Errorf("payload_hash is required")
	}
	if strings.TrimSpace(record.Hash) == "" {
		return fmt.Errorf("hash is required")
	}
	if _, err := normalizeDetails(record.Details); err != nil {
		return err
	}
	return nil
}

func computeHashes(record Record) (payloadHash string, hashValue string, err error) {
	details, err := normalizeDetails(record.Details)
	if err != nil {
		return "", "", err
	}
	p := payload{
		SchemaVersion: record.SchemaVersion,
		EventID:       record.EventID,
		RunID:         record.RunID,
		TS:            record.TS,
		Suite:         record.Suite,
		Action:        record.Action,
		Details:       details,
		PrevHash:      record.PrevHash,
	}
	payloadBytes, err := json.Marshal(p)
	if err != nil {
		return "", "", fmt.Errorf("marshal payload: %w", err)
	}
	payloadHash = hashHex(payloadBytes)
	hashValue = hashHex([]byte(payloadHash + "\n" + record.PrevHash))
	return payloadHash, hashValue, nil
}

// normalizeDetails canonicalizes arbitrary details into compact JSON so the
// payload hash is stable regardless of how the caller encoded them.
func normalizeDetails(details any) (json.RawMessage, error) {
	if details == nil {
		return json.RawMessage([]byte("{}")), nil
	}

	if raw, ok := details.(json.RawMessage); ok {
		details = []byte(raw)
	}

	switch v := details.(type) {
	case []byte:
		if len(bytes.TrimSpace(v)) == 0 {
			return json.RawMessage([]byte("{}")), nil
		}
		var parsed any
		if err := json.Unmarshal(v, &parsed); err != nil {
			return nil, fmt.Errorf("details must be valid JSON: %w", err)
		}
		normalized, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("marshal details: %w", err)
		}
		return json.RawMessage(normalized), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal details: %w", err)
		}
		var parsed any
		if err := json.Unmarshal(encoded, &parsed); err != nil {
			return nil, fmt.Errorf("details must be valid JSON: %w", err)
		}
		normalized, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("marshal details: %w", err)
		}
		return json.RawMessage(normalized), nil
	}
}

func syncDirectory(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open directory for fsync: %w", err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		if errors.Is(err, syscall.EINVAL) {
			return nil
		}
		return fmt.Errorf("fsync directory: %w", err)
	}
	return nil
}

func newEventID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("evt-%d", time.Now().UnixNano())
	}
	return "evt-" + hex.EncodeToString(b[:])
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
