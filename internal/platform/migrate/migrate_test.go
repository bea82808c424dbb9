package migrate

import (
	"testing"
	"testing/fstest"

	"edgelink.local/migrations"
)

func TestListSQLFiles_SortsByBaseName(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_link_audit.sql":   {Data: []byte("SELECT 2;")},
		"0001_short_links.sql":  {Data: []byte("SELECT 1;")},
		"README.md":             {Data: []byte("docs")},
		"nested/0003_extra.SQL": {Data: []byte("SELECT 3;")},
		"nested/notes.txt":      {Data: []byte("x")},
	}

	got, err := ListSQLFiles(fsys)
	if err != nil {
		t.Fatalf("ListSQLFiles: %v", err)
	}
	want := []string{"0001_short_links.sql", "0002_link_audit.sql", "nested/0003_extra.SQL"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListSQLFiles_EmbeddedSchema(t *testing.T) {
	got, err := ListSQLFiles(migrations.FS)
	if err != nil {
		t.Fatalf("ListSQLFiles: %v", err)
	}
	if len(got) < 2 || got[0] != "0001_short_links.sql" {
		t.Fatalf("unexpected embedded migrations: %v", got)
	}
}

func TestSource(t *testing.T) {
	if _, err := source(Options{}); err == nil {
		t.Fatal("expected error without a source")
	}
	if _, err := source(Options{Dir: "/definitely/not/here"}); err == nil {
		t.Fatal("expected error for a missing dir")
	}
	fsys := fstest.MapFS{}
	got, err := source(Options{FS: fsys})
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, ok := got.(fstest.MapFS); !ok {
		t.Fatalf("got %T, want fstest.MapFS", got)
	}
}
