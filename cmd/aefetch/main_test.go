package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "waitTime": [
    {"hospName": "Tuen Mun Hospital", "t1wt": "0 minute", "t2wt": "less than 15 minutes",
     "t3p50": "2 hours", "t3p95": "over 4 hours", "t45p50": "3 hours", "t45p95": "over 6 hours"},
    {"hospName": "Queen Mary Hospital", "t1wt": "0 minute", "t2wt": "less than 15 minutes",
     "t3p50": "38 minutes", "t3p95": "1.5 hours", "t45p50": "-", "t45p95": "-"}
  ],
  "updateTime": "17/10/2026 9:45am"
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aedwtdata-en.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePayload), 0o600))
	return path
}

func TestRun_FileTable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-file", writeFixture(t)}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	lines := strings.Split(stdout.String(), "\n")
	assert.Contains(t, lines[0], "WAIT (III)")
	assert.Contains(t, lines[1], "Queen Mary Hospital")
	assert.Contains(t, lines[1], "short")
	assert.Contains(t, lines[2], "Tuen Mun Hospital")
	assert.Contains(t, lines[2], "long")
}

func TestRun_FileJSONNearest(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"-file", writeFixture(t), "-json", "-sort", "nearest", "-lat", "22.3916", "-lng", "113.9770"}
	code := run(context.Background(), args, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &snap))
	require.Len(t, snap.Hospitals, 2)
	assert.Equal(t, "17/10/2026 9:45am", snap.UpdateTime)
	assert.Equal(t, "Tuen Mun Hospital", snap.Hospitals[0].HospitalName)
	require.NotNil(t, snap.Hospitals[0].DistanceKm)
}

func TestRun_FetchFallsBack(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, samplePayload)
	}))
	defer fallback.Close()

	var stdout, stderr bytes.Buffer
	args := []string{"-primary", primary.URL, "-fallback", fallback.URL, "-sort", "name"}
	code := run(context.Background(), args, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Queen Mary Hospital")
	assert.Contains(t, stderr.String(), "feed endpoint failed")
}

func TestRun_FetchFails(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-primary", down.URL, "-fallback", down.URL}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unable to fetch A&E waiting-time data")
	assert.Empty(t, stdout.String())
}

func TestRun_InvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"-sort", "distance"},
		{"-triage", "V"},
		{"-lang", "fr"},
		{"-lat", "22.3"},
		{"-lat", "NaN", "-lng", "114.1"},
		{"-lat", "22.3", "-lng", "-Inf"},
		{"-lat", "95", "-lng", "114.1"},
	} {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(context.Background(), args, &stdout, &stderr), args)
		assert.NotEmpty(t, stderr.String(), args)
	}
}
