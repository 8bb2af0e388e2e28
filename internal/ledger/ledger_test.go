package ledger

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndLoad(t *testing.T) {
	dir := t.TempDir()

	first, err := Append(dir, AppendInput{
		RunID:   "run-1",
		Suite:   "unit",
		Action:  "run.started",
		Details: map[string]any{"cases": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, first.SchemaVersion)
	assert.Empty(t, first.PrevHash)
	assert.NotEmpty(t, first.Hash)
	assert.True(t, strings.HasPrefix(first.EventID, "evt-"))

	second, err := Append(dir, AppendInput{
		RunID:  "run-1",
		Suite:  "unit",
		Action: "run.finished",
	})
	require.NoError(t, err)
	assert.Equal(t, first.Hash, second.PrevHash)

	records, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run.started", records[0].Action)
	assert.Equal(t, "run.finished", records[1].Action)
	assert.JSONEq(t, `{"cases":3}`, string(records[0].Details))
}

func TestAppend_RequiresRunIDAndAction(t *testing.T) {
	dir := t.TempDir()

	_, err := Append(dir, AppendInput{Action: "run.started"})
	assert.Error(t, err)

	_, err = Append(dir, AppendInput{RunID: "run-1"})
	assert.Error(t, err)
}

func TestLoad_MissingLedgerIsEmpty(t *testing.T) {
	records, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestVerify_IntactChain(t *testing.T) {
	dir := t.TempDir()
	for _, action := range []string{"run.started", "case.finished", "run.finished"} {
		_, err := Append(dir, AppendInput{RunID: "run-1", Suite: "unit", Action: action})
		require.NoError(t, err)
	}

	result, err := Verify(dir)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, 3, result.RecordCount)
	assert.Equal(t, -1, result.FirstBrokenIndex)
}

func TestVerify_EmptyLedgerPasses(t *testing.T) {
	result, err := Verify(t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, 0, result.RecordCount)
}

func TestVerify_TamperedRecordReportsIndex(t *testing.T) {
	dir := t.TempDir()
	for _, action := range []string{"run.started", "run.finished"} {
		_, err := Append(dir, AppendInput{RunID: "run-1", Suite: "unit", Action: action})
		require.NoError(t, err)
	}

	path := Path(dir)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var tampered Record
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &tampered))
	tampered.Action = "run.erased"
	edited, err := json.Marshal(tampered)
	require.NoError(t, err)
	lines[1] = string(edited)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	result, err := Verify(dir)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, 2, result.FirstBrokenIndex)
	assert.Contains(t, result.Message, "payload_hash")
}

func TestVerify_BrokenPrevHash(t *testing.T) {
	dir := t.TempDir()
	for _, action := range []string{"run.started", "run.finished"} {
		_, err := Append(dir, AppendInput{RunID: "run-1", Suite: "unit", Action: action})
		require.NoError(t, err)
	}

	path := Path(dir)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	// Drop the first record so the second one chains to nothing.
	require.NoError(t, os.WriteFile(path, []byte(lines[1]+"\n"), 0644))

	result, err := Verify(dir)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, 1, result.FirstBrokenIndex)
	assert.Contains(t, result.Message, "prev_hash")
}

func TestRunRecords(t *testing.T) {
	dir := t.TempDir()
	_, err := Append(dir, AppendInput{RunID: "run-1", Action: "run.started"})
	require.NoError(t, err)
	_, err = Append(dir, AppendInput{RunID: "run-2", Action: "run.started"})
	require.NoError(t, err)
	_, err = Append(dir, AppendInput{RunID: "run-1", Action: "run.finished"})
	require.NoError(t, err)

	records, err := RunRecords(dir, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run.started", records[0].Action)
	assert.Equal(t, "run.finished", records[1].Action)

	_, err = RunRecords(dir, "run-9")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
