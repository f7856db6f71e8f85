package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogRoom is one room of the catalog file.
type CatalogRoom struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type roomCatalogFile struct {
	Rooms []CatalogRoom `yaml:"rooms"`
}

// LoadRoomCatalog reads a YAML room catalog of the form
//
//	rooms:
//	  - id: "1"
//	    name: Sala 1
func LoadRoomCatalog(path string) ([]CatalogRoom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open room catalog: %w", err)
	}
	defer f.Close()
	return ParseRoomCatalog(f)
}

// ParseRoomCatalog decodes a room catalog, rejecting unknown keys, empty ids or
// names, and duplicate ids.
func ParseRoomCatalog(r io.Reader) ([]CatalogRoom, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file roomCatalogFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("room catalog is empty")
		}
		return nil, fmt.Errorf("decode room catalog: %w", err)
	}
	if len(file.Rooms) == 0 {
		return nil, fmt.Errorf("room catalog lists no rooms")
	}

	seen := make(map[string]struct{}, len(file.Rooms))
	rooms := make([]CatalogRoom, 0, len(file.Rooms))
	for i, room := range file.Rooms {
		room.ID = strings.TrimSpace(room.ID)
		room.Name = strings.TrimSpace(room.Name)
		if room.ID == "" {
			return nil, fmt.Errorf("room catalog entry %d: id is required", i)
		}
		if room.Name == "" {
			return nil, fmt.Errorf("room catalog entry %d: name is required", i)
		}
		if _, dup := seen[room.ID]; dup {
			return nil, fmt.Errorf("room catalog entry %d: duplicate id %q", i, room.ID)
		}
		seen[room.ID] = struct{}{}
		rooms = append(rooms, room)
	}
	return rooms, nil
}
