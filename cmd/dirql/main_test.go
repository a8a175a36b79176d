package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMainLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func writeDataFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunQueryMode(t *testing.T) {
	path := writeDataFile(t, t.TempDir(), "users.csv", "id,name\n1,alice\n")
	code := run([]string{path, "--query", "select name from users"})
	assert.Equal(t, exitOK, code)
}

func TestRunUnknownMode(t *testing.T) {
	code := run([]string{"--mode", "json", "--query", "select 1"})
	assert.Equal(t, exitFatal, code)
}

func TestRunNoMatches(t *testing.T) {
	pattern := filepath.Join(t.TempDir(), "*.csv")
	code := run([]string{pattern, "--query", "select 1"})
	assert.Equal(t, exitNoMatches, code)
}

func TestRunNothingLoadable(t *testing.T) {
	path := writeDataFile(t, t.TempDir(), "bad.csv", "a,b\n1\n")
	code := run([]string{path, "--query", "select 1"})
	assert.Equal(t, exitParse, code)
}

func TestRunQueryError(t *testing.T) {
	path := writeDataFile(t, t.TempDir(), "users.csv", "id\n1\n")
	code := run([]string{path, "--query", "select * from missing"})
	assert.Equal(t, exitQuery, code)
}

func TestRunMalformedPattern(t *testing.T) {
	code := run([]string{"[", "--query", "select 1"})
	assert.Equal(t, exitFatal, code)
}

func TestResolveHistoryFileOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "hist")
	got := resolveHistoryFile(override, testMainLogger())
	assert.Equal(t, override, got)
}

func TestExitErrorMessage(t *testing.T) {
	e := &exitError{code: exitNoMatches}
	assert.Equal(t, "exit 2", e.Error())
}
