package render

import (
	"os"
	"path/filepath"
	"testing"

	"dirql/internal/table"
)

func sampleResult() *table.QueryResult {
	return &table.QueryResult{
		Columns: []string{"id", "name"},
		Types:   []table.ColumnType{table.TypeInteger, table.TypeText},
		Rows: []table.Row{
			table.NewRow("1", "alice"),
			table.NewRow("42", "bob"),
		},
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"table", ModeTable, true},
		{"tree", ModeTree, true},
		{" TREE ", ModeTree, true},
		{"json", ModeTable, false},
		{"", ModeTable, false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResultTableAlignment(t *testing.T) {
	t.Parallel()

	got := Result(sampleResult(), ModeTable)
	want := "id  name\n" +
		"--  -----\n" +
		" 1  alice\n" +
		"42  bob\n"
	if got != want {
		t.Errorf("table output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestResultTableNullVsEmpty(t *testing.T) {
	t.Parallel()

	res := &table.QueryResult{
		Columns: []string{"a", "b"},
		Types:   []table.ColumnType{table.TypeText, table.TypeText},
		Rows: []table.Row{
			{table.NewCell(""), table.NullCell()},
		},
	}
	got := Result(res, ModeTable)
	want := "a  b\n" +
		"-  ----\n" +
		"   NULL\n"
	if got != want {
		t.Errorf("null rendering mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestResultTableNoRows(t *testing.T) {
	t.Parallel()

	res := &table.QueryResult{
		Columns: []string{"id"},
		Types:   []table.ColumnType{table.TypeInteger},
	}
	got := Result(res, ModeTable)
	want := "id\n--\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResultTree(t *testing.T) {
	t.Parallel()

	got := Result(sampleResult(), ModeTree)
	want := "result: 2 rows\n" +
		"  row 1\n" +
		"    id: 1\n" +
		"    name: alice\n" +
		"  row 2\n" +
		"    id: 42\n" +
		"    name: bob\n"
	if got != want {
		t.Errorf("tree output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestTableTree(t *testing.T) {
	t.Parallel()

	tbl := table.New("users", []string{"id", "name"}, []table.Row{
		table.NewRow("1", "alice"),
	}, "/data/users.csv")
	got := Tree(TableTree(tbl))
	want := "users: /data/users.csv\n" +
		"  id: integer\n" +
		"  name: text\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestDirTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.csv", "a.csv", filepath.Join("sub", "c.toml")} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	node, err := DirTree(root)
	if err != nil {
		t.Fatal(err)
	}
	got := Tree(node)
	want := filepath.Base(root) + "\n" +
		"  a.csv\n" +
		"  b.csv\n" +
		"  sub\n" +
		"    c.toml\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestDirTreeMissingPath(t *testing.T) {
	t.Parallel()

	if _, err := DirTree(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}
