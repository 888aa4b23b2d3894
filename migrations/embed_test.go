package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEveryUpHasDown(t *testing.T) {
	names, err := fs.Glob(FS, "*.up.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no migrations embedded")
	}
	for _, up := range names {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(FS, down); err != nil {
			t.Fatalf("%s has no matching %s", up, down)
		}
	}
}

func TestSchemaCoversServiceTables(t *testing.T) {
	names, _ := fs.Glob(FS, "*.up.sql")
	var all strings.Builder
	for _, n := range names {
		b, err := fs.ReadFile(FS, n)
		if err != nil {
			t.Fatalf("read %s: %v", n, err)
		}
		all.Write(b)
	}
	schema := all.String()
	for _, table := range []string{
		"outbox_events", "inbox_events",
		"schedule_days", "schedule_windows", "exception_dates",
		"appointments", "booking_idempotency_keys",
		"practice_areas", "practice_area_images", "attorneys", "blog_posts", "contact_messages",
		"notifications",
	} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("missing table %s", table)
		}
	}
}
