package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Address is the stable module/entity identity key.
type Address struct {
	Module string `json:"module"`
	Name   string `json:"name"`
}

// String renders the address as "module/name".
func (a Address) String() string {
	return a.Module + "/" + a.Name
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a.Module == "" && a.Name == ""
}

// ParseAddress splits "module/name" at the first slash. The second result is
// false when s carries no slash or either half is empty.
func ParseAddress(s string) (Address, bool) {
	mod, name, ok := strings.Cut(s, "/")
	if !ok || mod == "" || name == "" {
		return Address{}, false
	}
	return Address{Module: mod, Name: name}, true
}

// ExportKey builds the "kind/module/name" key of an export record.
func ExportKey(kind Kind, addr Address) string {
	return string(kind) + "/" + addr.String()
}

// Link is a relation reference after resolution. An empty Address means the
// target is not in the graph and the reference renders as plain text.
type Link struct {
	Text    string   `json:"text"`
	Kind    Kind     `json:"kind"`
	Address *Address `json:"address,omitempty"`
}

// Linked reports whether the reference resolved to a known entity.
func (l Link) Linked() bool {
	return l.Address != nil
}

// ExportRecord is the machine-readable form of one entity handed to renderers.
type ExportRecord struct {
	Kind        Kind                `json:"kind"`
	Module      string              `json:"module"`
	Name        string              `json:"name"`
	Path        string              `json:"path"`
	Description string              `json:"description,omitempty"`
	Feature     string              `json:"feature,omitempty"`
	Detail      Detail              `json:"detail,omitempty"`
	Relations   RelationSet         `json:"relations"`
	Links       map[Relation][]Link `json:"links"`
	Rank        float64             `json:"rank"`
	Coverage    *CoverageAnalysis   `json:"coverage"`
}

// Address returns the record's module/name key.
func (r *ExportRecord) Address() Address {
	return Address{Module: r.Module, Name: r.Name}
}

// Key returns the record's "kind/module/name" key.
func (r *ExportRecord) Key() string {
	return ExportKey(r.Kind, r.Address())
}

// UnmarshalJSON restores the Detail payload according to Kind.
func (r *ExportRecord) UnmarshalJSON(data []byte) error {
	type plain ExportRecord
	aux := struct {
		*plain
		Detail json.RawMessage `json:"detail,omitempty"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d, err := DecodeDetail(r.Kind, aux.Detail)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.Kind, r.Name, err)
	}
	r.Detail = d
	return nil
}

// DecodeDetail decodes a JSON payload into the Detail type for kind.
// An empty payload yields the zero Detail of that kind.
func DecodeDetail(kind Kind, raw json.RawMessage) (Detail, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	switch kind {
	case Screen:
		var d ScreenDetail
		err := json.Unmarshal(raw, &d)
		return d, err
	case Fragment:
		var d FragmentDetail
		err := json.Unmarshal(raw, &d)
		return d, err
	case Action:
		var d ActionDetail
		err := json.Unmarshal(raw, &d)
		return d, err
	case Module:
		var d ModuleDetail
		err := json.Unmarshal(raw, &d)
		return d, err
	case Table:
		var d TableDetail
		err := json.Unmarshal(raw, &d)
		return d, err
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

// ExportMap is keyed by "kind/module/name".
type ExportMap map[string]*ExportRecord

// Snapshot is the durable hand-off artifact written once per run.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Entities    ExportMap `json:"entities"`
}
