package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"jnigen/internal/names"
)

// Format selects the manifest encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatTOML
)

// FormatForPath picks TOML for *.toml and JSON for everything else.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

type tomlManifest struct {
	Crates []wireCrate `toml:"crates"`
}

// wireCrate keeps members as a pointer so an absent list can be told apart
// from an empty one.
type wireCrate struct {
	Name    string    `json:"name" toml:"name"`
	Members *[]Member `json:"members" toml:"members"`
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, []byte, error) {
	// #nosec G304 -- path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Decode(data, FormatForPath(path))
	if err != nil {
		var merr *Error
		if errors.As(err, &merr) && merr.Path == "" {
			merr.Path = path
		}
		return nil, data, err
	}
	m.Path = path
	return m, data, nil
}

// Decode parses manifest bytes and validates their structure. Unknown keys
// and crates without a members list are rejected.
func Decode(data []byte, format Format) (*Manifest, error) {
	var wire []wireCrate
	switch format {
	case FormatTOML:
		var doc tomlManifest
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, &Error{Msg: "invalid TOML", Err: err}
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, &Error{Field: undecoded[0].String(), Msg: "unknown key"}
		}
		wire = doc.Crates
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, &Error{Msg: "empty document"}
		}
		var doc *[]wireCrate
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, &Error{Msg: "invalid JSON", Err: err}
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, &Error{Msg: "trailing data after manifest"}
		}
		if doc == nil {
			return nil, &Error{Msg: "manifest must be an array of crates"}
		}
		wire = *doc
	}

	crates := make([]Crate, len(wire))
	for i, c := range wire {
		if c.Members == nil {
			return nil, &Error{Field: fmt.Sprintf("crates[%d].members", i), Msg: "missing members list"}
		}
		crates[i] = Crate{Name: c.Name, Members: *c.Members}
	}
	m := &Manifest{Crates: crates}
	if err := validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

func validate(m *Manifest) error {
	for ci, c := range m.Crates {
		crateField := fmt.Sprintf("crates[%d]", ci)
		if strings.TrimSpace(c.Name) == "" {
			return &Error{Field: crateField + ".name", Msg: "missing crate name"}
		}
		for mi, mem := range c.Members {
			field := fmt.Sprintf("%s.members[%d]", crateField, mi)
			if mem.Kind == "" {
				return &Error{Field: field + ".type", Msg: "missing member type"}
			}
			if mem.Kind != KindFunction && !skippedKinds[mem.Kind] {
				return &Error{Field: field + ".type", Msg: fmt.Sprintf("unknown member type %q", mem.Kind)}
			}
			if _, err := names.ParseQualified(mem.Name); err != nil {
				return &Error{Field: field + ".name", Err: err}
			}
			if mem.Kind != KindFunction {
				continue
			}
			seen := make(map[string]struct{}, len(mem.Inputs))
			for ii, in := range mem.Inputs {
				inField := fmt.Sprintf("%s.inputs[%d]", field, ii)
				if strings.TrimSpace(in.Name) == "" {
					return &Error{Field: inField + ".name", Msg: "missing parameter name"}
				}
				if strings.TrimSpace(in.Type) == "" {
					return &Error{Field: inField + ".type", Msg: "missing parameter type"}
				}
				if _, dup := seen[in.Name]; dup {
					return &Error{Field: inField + ".name", Msg: fmt.Sprintf("duplicate parameter %q", in.Name)}
				}
				seen[in.Name] = struct{}{}
			}
			if mem.Output != nil && strings.TrimSpace(*mem.Output) == "" {
				return &Error{Field: field + ".output", Msg: "empty output type"}
			}
		}
	}
	return nil
}
