package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
)

const esolatBody = `{
	"prayerTime": [
		{"hijri":"1447-03-08","date":"01-Sep-2025","day":"Monday","imsak":"05:44:00","fajr":"05:54:00","syuruk":"07:03:00","dhuhr":"13:11:00","asr":"16:18:00","maghrib":"19:15:00","isha":"20:24:00"},
		{"hijri":"1447-03-09","date":"02-Sep-2025","day":"Tuesday","imsak":"05:44:00","fajr":"05:54:00","syuruk":"07:03:00","dhuhr":"13:11:00","asr":"16:17:00","maghrib":"19:15:00","isha":"20:24:00"}
	],
	"status": "OK!"
}`

// run executes the CLI with args and returns stdout and the exit code.
func run(t *testing.T, args ...string) (string, int) {
	t.Helper()

	var stdout bytes.Buffer
	root := newRootCmd(&stdout, io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), exitCode(err)
}

// isolate points the data directory at a temp dir and disables the API.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SOLAT_DATA_DIR", dir)
	t.Setenv("SOLAT_USE_API", "false")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

// ----------------------------------------------------------------------------
// Exit codes
// ----------------------------------------------------------------------------

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), exitFailure},
		{"usage", withCode(exitUsage, errors.New("bad flag")), exitUsage},
		{"wrapped", errors.Join(errors.New("ctx"), withCode(exitWriteError, errors.New("disk full"))), exitWriteError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}

	assert.Nil(t, withCode(exitUsage, nil))
}

func TestLookupError(t *testing.T) {
	assert.Equal(t, exitUsage, exitCode(lookupError(solat.ErrUnknownZone)))
	assert.Equal(t, exitUsage, exitCode(lookupError(solat.ErrInvalidDate)))
	assert.Equal(t, exitNoEntries, exitCode(lookupError(source.ErrTableNotFound)))
	assert.Equal(t, exitFailure, exitCode(lookupError(source.ErrBadResponse)))
}

// ----------------------------------------------------------------------------
// fetch
// ----------------------------------------------------------------------------

func TestFetchRequests(t *testing.T) {
	tests := []struct {
		name      string
		opts      fetchOptions
		wantZones []string
		wantErr   bool
	}{
		{"single zone", fetchOptions{zones: []string{"sgr01"}, period: "month"}, []string{"SGR01"}, false},
		{"repeated and comma separated", fetchOptions{zones: []string{"SGR01,WLY01", "sgr01"}, period: "week"}, []string{"SGR01", "WLY01"}, false},
		{"duration", fetchOptions{zones: []string{"SGR01"}, period: "duration", start: "2025-09-01", end: "2025-09-30"}, []string{"SGR01"}, false},
		{"duration missing end", fetchOptions{zones: []string{"SGR01"}, period: "duration", start: "2025-09-01"}, nil, true},
		{"bad period", fetchOptions{zones: []string{"SGR01"}, period: "daily"}, nil, true},
		{"unknown zone", fetchOptions{zones: []string{"XYZ99"}, period: "month"}, nil, true},
		{"no zone", fetchOptions{zones: []string{" , "}, period: "month"}, nil, true},
		{"out with many zones", fetchOptions{zones: []string{"SGR01", "WLY01"}, period: "month", out: "x.csv"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs, err := fetchRequests(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var zones []string
			for _, r := range reqs {
				zones = append(zones, r.Zone)
			}
			assert.Equal(t, tt.wantZones, zones)
		})
	}
}

func TestFetchCommand(t *testing.T) {
	dir := isolate(t)

	var mu sync.Mutex
	var gotZones []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotZones = append(gotZones, r.URL.Query().Get("zone"))
		mu.Unlock()
		io.WriteString(w, esolatBody)
	}))
	defer srv.Close()
	t.Setenv("ESOLAT_URL", srv.URL+"/index.php?r=esolatApi/takwimsolat")

	out, code := run(t, "fetch", "--zone", "SGR01", "--zone", "WLY01", "--period", "year")
	require.Equal(t, 0, code)

	lines := strings.Fields(out)
	sort.Strings(lines)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(filepath.Base(lines[0]), "waktusolat_SGR01_year_"))
	assert.True(t, strings.HasPrefix(filepath.Base(lines[1]), "waktusolat_WLY01_year_"))
	for _, path := range lines {
		assert.Equal(t, dir, filepath.Dir(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "01-Sep-2025")
	}

	sort.Strings(gotZones)
	assert.Equal(t, []string{"SGR01", "WLY01"}, gotZones)
}

func TestFetchCommand_OutAndDuration(t *testing.T) {
	isolate(t)
	outdir := t.TempDir()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		io.WriteString(w, esolatBody)
	}))
	defer srv.Close()
	t.Setenv("ESOLAT_URL", srv.URL+"/index.php?r=esolatApi/takwimsolat")

	out, code := run(t, "fetch", "--period", "duration", "--start", "2025-09-01", "--end", "2025-09-02",
		"--outdir", outdir, "--out", "sept.csv")
	require.Equal(t, 0, code)
	assert.Equal(t, filepath.Join(outdir, "sept.csv"), strings.TrimSpace(out))
}

func TestFetchCommand_ExitCodes(t *testing.T) {
	isolate(t)

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"prayerTime": [], "status": "OK!"}`)
	}))
	defer empty.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	t.Run("bad range", func(t *testing.T) {
		_, code := run(t, "fetch", "--period", "duration", "--start", "2025-09-30", "--end", "2025-09-01")
		assert.Equal(t, exitUsage, code)
	})

	t.Run("no entries", func(t *testing.T) {
		t.Setenv("ESOLAT_URL", empty.URL+"/index.php?r=esolatApi/takwimsolat")
		_, code := run(t, "fetch", "--retries", "1")
		assert.Equal(t, exitNoEntries, code)
	})

	t.Run("fetch failure", func(t *testing.T) {
		t.Setenv("ESOLAT_URL", failing.URL+"/index.php?r=esolatApi/takwimsolat")
		t.Setenv("ESOLAT_BACKOFF", "1ms")
		_, code := run(t, "fetch", "--retries", "2")
		assert.Equal(t, exitFailure, code)
	})

	t.Run("unwritable outdir", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, esolatBody)
		}))
		defer srv.Close()
		t.Setenv("ESOLAT_URL", srv.URL+"/index.php?r=esolatApi/takwimsolat")

		_, code := run(t, "fetch", "--outdir", filepath.Join(blocker, "sub"))
		assert.Equal(t, exitWriteError, code)
	})
}

// ----------------------------------------------------------------------------
// resolve / lookup / zones
// ----------------------------------------------------------------------------

const semicolonTable = "Tarikh;Hari;Subuh;Zohor;Asar;Maghrib;Isyak\n" +
	"04-Sep-2025;Khamis;05:53;13:10;16:16;19:14;20:23\n" +
	"05-Sep-2025;Jumaat;05:53;13:09;16:15;19:13;20:22\n"

func TestResolveCommand(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "any-name.txt", semicolonTable)

	out, code := run(t, "resolve", "--file", path, "--date", "5/9/2025")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "SGR01")
	assert.Contains(t, out, "2025-09-05 (matched)")
	assert.Regexp(t, `fajr\s+05:53`, out)
	assert.Regexp(t, `sunrise\s+-`, out)

	out, code = run(t, "resolve", "--file", path, "--date", "2025-09-04", "--json")
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"fajr": "05:53"`)
}

func TestResolveCommand_Miss(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "t.csv", semicolonTable)

	out, code := run(t, "resolve", "--file", path, "--date", "2025-09-20")
	assert.Equal(t, exitNoEntries, code)
	assert.Contains(t, out, "unmatched")
	assert.Contains(t, out, "2025-09-04 .. 2025-09-05")
}

func TestResolveCommand_Errors(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "t.csv", semicolonTable)

	_, code := run(t, "resolve", "--file", filepath.Join(dir, "missing.csv"), "--date", "2025-09-05")
	assert.Equal(t, exitUsage, code, "missing file")

	_, code = run(t, "resolve", "--file", path, "--date", "someday")
	assert.Equal(t, exitUsage, code, "bad date")

	_, code = run(t, "resolve", "--file", path, "--date", "2025-09-05", "--delimiter", "pipe")
	assert.Equal(t, exitUsage, code, "bad delimiter")

	empty := writeFile(t, dir, "empty.csv", "")
	_, code = run(t, "resolve", "--file", empty, "--date", "2025-09-05")
	assert.Equal(t, exitFailure, code, "structural failure")
}

func TestLookupCommand_DataDir(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "waktusolat_WLY01_month_2025-09.csv", semicolonTable)

	out, code := run(t, "lookup", "--zone", "wly01", "--date", "Sep 5, 2025")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "WLY01")
	assert.Regexp(t, `isha\s+20:22`, out)

	_, code = run(t, "lookup", "--zone", "SGR01", "--date", "2025-09-05")
	assert.Equal(t, exitNoEntries, code, "no table for SGR01")
}

func TestZonesCommand(t *testing.T) {
	isolate(t)

	out, code := run(t, "zones")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "SGR01")

	out, code = run(t, "zones", "--state", "wilayah persekutuan")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "WLY01")
	assert.NotContains(t, out, "SGR01")

	_, code = run(t, "zones", "--state", "Atlantis")
	assert.Equal(t, exitNoEntries, code)
}

func TestPublishCommand_RequiresBroker(t *testing.T) {
	isolate(t)

	_, code := run(t, "publish")
	assert.Equal(t, exitUsage, code)
}

func TestInvalidConfigIsUsageError(t *testing.T) {
	isolate(t)
	t.Setenv("SOLAT_PERIOD", "fortnight")

	_, code := run(t, "zones")
	assert.Equal(t, exitUsage, code)
}
