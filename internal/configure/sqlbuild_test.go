package configure

import (
	"testing"

	"droidseed/internal/testutil/testlog"
)

func TestInsertStatementQuoting(t *testing.T) {
	testlog.Start(t)
	got := InsertStatement("tasks",
		[]string{"title", "order", "completed", "due"},
		[]any{"buy milk", 3, true, nil})
	want := `INSERT INTO tasks ("title","[order]","completed","due") VALUES ('buy milk',3,1,NULL);`
	if got != want {
		t.Fatalf("statement mismatch:\n got=%s\nwant=%s", got, want)
	}
}

func TestInsertStatementEscapesQuotes(t *testing.T) {
	testlog.Start(t)
	got := InsertStatement("recipes", []string{"title"}, []any{"grandma's pie"})
	want := `INSERT INTO recipes ("title") VALUES ('grandma''s pie');`
	if got != want {
		t.Fatalf("quote doubling: got=%s", got)
	}
}

func TestSQLValueRendering(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"", "''"},
		{false, "0"},
		{int64(42), "42"},
		{12.5, "12.5"},
	}
	for _, c := range cases {
		if got := SQLValue(c.in); got != c.want {
			t.Fatalf("SQLValue(%v)=%q want %q", c.in, got, c.want)
		}
	}
}
