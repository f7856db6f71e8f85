package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRoomCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	content := "rooms:\n  - id: \"1\"\n    name: Sala 1\n  - id: \"2\"\n    name: \" Sala 2 \"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	rooms, err := LoadRoomCatalog(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	if rooms[1] != (CatalogRoom{ID: "2", Name: "Sala 2"}) {
		t.Fatalf("unexpected room: %+v", rooms[1])
	}

	if _, err := LoadRoomCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseRoomCatalog(t *testing.T) {
	cases := map[string]struct {
		input string
		want  string
	}{
		"empty document": {input: "", want: "empty"},
		"no rooms":       {input: "rooms: []\n", want: "no rooms"},
		"missing id":     {input: "rooms:\n  - name: Sala 1\n", want: "id is required"},
		"missing name":   {input: "rooms:\n  - id: a\n", want: "name is required"},
		"duplicate id":   {input: "rooms:\n  - id: a\n    name: A\n  - id: a\n    name: B\n", want: "duplicate id"},
		"unknown key":    {input: "rooms:\n  - id: a\n    name: A\n    floor: 2\n", want: "decode"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRoomCatalog(strings.NewReader(tc.input))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
