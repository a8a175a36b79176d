package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirql/internal/engine"
	"dirql/internal/render"
)

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	eng, err := engine.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = eng.Close()
	})

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	var out bytes.Buffer
	s, err := New(eng, WithOutput(&out), WithLogger(log))
	require.NoError(t, err)
	return s, &out
}

func writeDataFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDispatchLoadAndQuery(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	path := writeDataFile(t, t.TempDir(), "a.csv", "id,name\n1,alice\n2,bob\n")

	require.NoError(t, s.Dispatch(ctx, ".load "+path))
	assert.Contains(t, out.String(), "loaded a (2 rows) from "+path)
	assert.Equal(t, []string{"a"}, s.TableNames())

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, "select name from a where id = 2"))
	assert.Equal(t, "name\n----\nbob\n", out.String())
}

func TestDispatchBlankLine(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.Dispatch(context.Background(), "   "))
	assert.Empty(t, s.History())
}

func TestHistoryRecordsFailures(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	require.Error(t, s.Dispatch(ctx, "select broken ("))
	require.Error(t, s.Dispatch(ctx, ".nope"))

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, ".history"))
	assert.Equal(t, "   1  select broken (\n   2  .nope\n   3  .history\n", out.String())
}

func TestLoadReplacesSameSource(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeDataFile(t, dir, "users.csv", "id,name\n1,alice\n")

	require.NoError(t, s.Dispatch(ctx, ".load "+path))
	writeDataFile(t, dir, "users.csv", "id,name\n1,carol\n2,dave\n")
	out.Reset()
	require.NoError(t, s.Dispatch(ctx, ".load "+path))

	assert.Contains(t, out.String(), "loaded users (2 rows)")
	assert.Equal(t, []string{"users"}, s.TableNames())

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, "select name from users where id = 1"))
	assert.Contains(t, out.String(), "carol")
}

func TestLoadCollisionGetsSuffix(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	dirA := t.TempDir()
	dirB := t.TempDir()
	pathA := writeDataFile(t, dirA, "users.csv", "id\n1\n")
	pathB := writeDataFile(t, dirB, "users.csv", "id\n2\n")

	require.NoError(t, s.Dispatch(ctx, ".load "+pathA))
	require.NoError(t, s.Dispatch(ctx, ".load "+pathB))

	assert.Equal(t, []string{"users", "users_2"}, s.TableNames())
	assert.Contains(t, out.String(), "loaded users_2 (1 rows)")

	tbl, ok := s.Table("users_2")
	require.True(t, ok)
	assert.Equal(t, pathB, tbl.SourcePath())
}

func TestLoadForceReplacesCollision(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	pathA := writeDataFile(t, t.TempDir(), "users.csv", "id\n1\n")
	pathB := writeDataFile(t, t.TempDir(), "users.csv", "id\n2\n3\n")

	require.NoError(t, s.Dispatch(ctx, ".load "+pathA))
	require.NoError(t, s.Dispatch(ctx, ".load! "+pathB))

	assert.Equal(t, []string{"users"}, s.TableNames())
	assert.Contains(t, out.String(), "loaded users (2 rows)")

	tbl, ok := s.Table("users")
	require.True(t, ok)
	assert.Equal(t, pathB, tbl.SourcePath())
}

func TestLoadCollisionWithUserCreatedTable(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	path := writeDataFile(t, t.TempDir(), "users.csv", "id\n1\n")

	require.NoError(t, s.Dispatch(ctx, "CREATE TABLE users (id INTEGER)"))
	out.Reset()
	require.NoError(t, s.Dispatch(ctx, ".load "+path))

	assert.Contains(t, out.String(), "table name collision")
	assert.Contains(t, out.String(), ".load!")
	assert.Empty(t, s.TableNames())
}

func TestLoadNoMatches(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	err := s.Dispatch(context.Background(), ".load "+filepath.Join(t.TempDir(), "*.csv"))
	require.ErrorIs(t, err, ErrNoMatches)
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeDataFile(t, dir, "a.csv", "id\n1\n")
	writeDataFile(t, dir, "b.csv", "id\n2\n")
	writeDataFile(t, dir, "notes.txt", "not loadable")

	require.NoError(t, s.Dispatch(ctx, ".load "+dir))
	assert.Equal(t, []string{"a", "b"}, s.TableNames())
	assert.NotContains(t, out.String(), "notes")
}

func TestLoadRaggedFileDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeDataFile(t, dir, "bad.csv", "a,b\n1\n")
	writeDataFile(t, dir, "good.csv", "id\n1\n")

	require.NoError(t, s.Dispatch(ctx, ".load "+dir))
	assert.Contains(t, out.String(), "error:")
	assert.Contains(t, out.String(), "loaded good (1 rows)")
	assert.Equal(t, []string{"good"}, s.TableNames())
}

func TestModeSwitch(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Dispatch(ctx, ".mode"))
	assert.Equal(t, "table\n", out.String())

	require.NoError(t, s.Dispatch(ctx, ".mode tree"))
	assert.Equal(t, render.ModeTree, s.Mode())

	err := s.Dispatch(ctx, ".mode json")
	require.Error(t, err)
	assert.Equal(t, render.ModeTree, s.Mode(), "failed switch keeps the current mode")
}

func TestTreeModeQueryOutput(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	path := writeDataFile(t, t.TempDir(), "a.csv", "id\n7\n")
	require.NoError(t, s.Dispatch(ctx, ".load "+path))
	require.NoError(t, s.Dispatch(ctx, ".mode tree"))

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, "select id from a"))
	assert.Equal(t, "result: 1 rows\n  row 1\n    id: 7\n", out.String())
}

func TestTreeShowsTableSchema(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	path := writeDataFile(t, t.TempDir(), "users.csv", "id,name\n1,alice\n")
	require.NoError(t, s.Dispatch(ctx, ".load "+path))

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, ".tree users"))
	assert.Equal(t, "users: "+path+"\n  id: integer\n  name: text\n", out.String())
}

func TestTreeShowsDirectory(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeDataFile(t, dir, "a.csv", "id\n1\n")

	require.NoError(t, s.Dispatch(ctx, ".tree "+dir))
	assert.Equal(t, filepath.Base(dir)+"\n  a.csv\n", out.String())
}

func TestTablesListing(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	path := writeDataFile(t, t.TempDir(), "users.csv", "id,name\n1,alice\n2,bob\n")
	require.NoError(t, s.Dispatch(ctx, ".load "+path))

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, ".tables"))
	assert.Contains(t, out.String(), "users")
	assert.Contains(t, out.String(), path)
	assert.Contains(t, out.String(), "2")
}

func TestExportWithoutResult(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	err := s.Dispatch(context.Background(), ".export")
	require.ErrorIs(t, err, ErrNoResult)
}

func TestExportToFile(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeDataFile(t, dir, "a.csv", "id,name\n1,alice\n")
	require.NoError(t, s.Dispatch(ctx, ".load "+path))
	require.NoError(t, s.Dispatch(ctx, "select id, name from a"))

	target := filepath.Join(dir, "out.csv")
	require.NoError(t, s.Dispatch(ctx, ".export "+target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,alice\n", string(data))
}

func TestExportNullAsEmptyField(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Dispatch(ctx, "select 'x' as a, NULL as b"))

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, ".export"))
	assert.Equal(t, "a,b\nx,\n", out.String())
}

func TestChangeDirectory(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, s.Dispatch(ctx, ".cd "+dir))
	assert.Equal(t, dir, s.WorkingDir())

	// Relative patterns now resolve against the new directory.
	writeDataFile(t, dir, "a.csv", "id\n1\n")
	require.NoError(t, s.Dispatch(ctx, ".load a.csv"))
	assert.Equal(t, []string{"a"}, s.TableNames())

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, ".cd"))
	assert.Equal(t, dir+"\n", out.String())
}

func TestChangeDirectoryToFile(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	path := writeDataFile(t, t.TempDir(), "a.csv", "id\n1\n")
	err := s.Dispatch(context.Background(), ".cd "+path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestSQLErrorKeepsSessionUsable(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	ctx := context.Background()
	path := writeDataFile(t, t.TempDir(), "a.csv", "id\n1\n")
	require.NoError(t, s.Dispatch(ctx, ".load "+path))

	require.ErrorIs(t, s.Dispatch(ctx, "select * from missing"), engine.ErrSQL)

	out.Reset()
	require.NoError(t, s.Dispatch(ctx, "select id from a"))
	assert.Contains(t, out.String(), "1")
}

func TestQuit(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.ErrorIs(t, s.Dispatch(context.Background(), ".quit"), ErrExit)
}

func TestHelp(t *testing.T) {
	t.Parallel()

	s, out := newTestSession(t)
	require.NoError(t, s.Dispatch(context.Background(), ".help"))
	assert.Contains(t, out.String(), ".load")
	assert.Contains(t, out.String(), ".quit")
}
