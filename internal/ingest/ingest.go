// Package ingest loads and validates the annotation scanner's output.
//
// The scanner emits one document per run, in JSON or YAML:
//
//	features:
//	  - name: billing
//	    screens:    [{name, path, description, route, requiresAuth, usesComponents, ...}]
//	    components: [{name, path, props, usedInScreens, ...}]
//	    actions:    [{name, path, method, requiresAuth, usesTables, ...}]
//	    modules:    [{name, path, category, usedInActions, ...}]
//	    tables:     [{name, path, columns, usedInActions, ...}]
//	uncategorized: {screens: [...], ...}
//
// Records failing validation are excluded individually; the rest load.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/annodoc/internal/model"
)

// ErrMalformedRecord is wrapped by every Exclusion.
var ErrMalformedRecord = errors.New("malformed record")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Document is the top-level scanner output.
type Document struct {
	Features      []Feature `json:"features" yaml:"features"`
	Uncategorized *Bucket   `json:"uncategorized,omitempty" yaml:"uncategorized,omitempty"`
}

// Feature is one labelled bucket of records.
type Feature struct {
	Name string `json:"name" yaml:"name"`
	Bucket `yaml:",inline"`
}

// Bucket holds records per kind.
type Bucket struct {
	Screens    []Record `json:"screens,omitempty" yaml:"screens,omitempty"`
	Components []Record `json:"components,omitempty" yaml:"components,omitempty"`
	Actions    []Record `json:"actions,omitempty" yaml:"actions,omitempty"`
	Modules    []Record `json:"modules,omitempty" yaml:"modules,omitempty"`
	Tables     []Record `json:"tables,omitempty" yaml:"tables,omitempty"`
}

type kindRecords struct {
	kind    model.Kind
	records []Record
}

func (b *Bucket) byKind() []kindRecords {
	return []kindRecords{
		{model.Screen, b.Screens},
		{model.Fragment, b.Components},
		{model.Action, b.Actions},
		{model.Module, b.Modules},
		{model.Table, b.Tables},
	}
}

// Record is one raw entity as the scanner writes it. Kind-specific fields
// are ignored on kinds that do not carry them.
type Record struct {
	Name        string `json:"name" yaml:"name" validate:"required,notblank"`
	Path        string `json:"path" yaml:"path" validate:"required,notblank"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Route        string   `json:"route,omitempty" yaml:"route,omitempty"`
	Method       string   `json:"method,omitempty" yaml:"method,omitempty"`
	RequiresAuth bool     `json:"requiresAuth,omitempty" yaml:"requiresAuth,omitempty"`
	Category     string   `json:"category,omitempty" yaml:"category,omitempty"`
	Props        []string `json:"props,omitempty" yaml:"props,omitempty"`
	Columns      []string `json:"columns,omitempty" yaml:"columns,omitempty"`

	UsedInScreens    []string `json:"usedInScreens,omitempty" yaml:"usedInScreens,omitempty"`
	UsedInComponents []string `json:"usedInComponents,omitempty" yaml:"usedInComponents,omitempty"`
	UsedInActions    []string `json:"usedInActions,omitempty" yaml:"usedInActions,omitempty"`
	UsedInModules    []string `json:"usedInModules,omitempty" yaml:"usedInModules,omitempty"`
	UsesComponents   []string `json:"usesComponents,omitempty" yaml:"usesComponents,omitempty"`
	UsesActions      []string `json:"usesActions,omitempty" yaml:"usesActions,omitempty"`
	UsesModules      []string `json:"usesModules,omitempty" yaml:"usesModules,omitempty"`
	UsesTables       []string `json:"usesTables,omitempty" yaml:"usesTables,omitempty"`
}

// Exclusion explains why one record was left out of the graph.
type Exclusion struct {
	Feature string
	Kind    model.Kind
	Name    string
	Reason  string
}

func (e Exclusion) Error() string {
	name := e.Name
	if strings.TrimSpace(name) == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%s %s in feature %q: %s", e.Kind, name, e.Feature, e.Reason)
}

func (e Exclusion) Unwrap() error { return ErrMalformedRecord }

// Result is the loaded scanner output.
type Result struct {
	Features   []model.FeatureCollection
	Exclusions []Exclusion
}

// Count returns the number of entities accepted across all features.
func (r *Result) Count() int {
	n := 0
	for i := range r.Features {
		n += r.Features[i].Count()
	}
	return n
}

// Load reads the scanner output at path. Files ending in .yaml or .yml are
// YAML; anything else is JSON.
func Load(path string, logger *slog.Logger) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scanner output: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	doc, err := Decode(data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return Convert(doc, logger), nil
}

// Decode parses a scanner document.
func Decode(data []byte, isYAML bool) (*Document, error) {
	var doc Document
	if isYAML {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Convert turns a document into feature collections, excluding invalid
// records. Each exclusion is logged at Warn.
func Convert(doc *Document, logger *slog.Logger) *Result {
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{}

	add := func(name string, b *Bucket) {
		fc := model.FeatureCollection{Name: name, Entities: make(map[model.Kind][]model.Entity)}
		for _, group := range b.byKind() {
			for _, rec := range group.records {
				if ex, ok := check(name, group.kind, &rec); !ok {
					logger.Warn("excluding record",
						"feature", ex.Feature, "kind", ex.Kind, "name", ex.Name, "reason", ex.Reason)
					res.Exclusions = append(res.Exclusions, ex)
					continue
				}
				fc.Entities[group.kind] = append(fc.Entities[group.kind], rec.entity(name, group.kind))
			}
		}
		res.Features = append(res.Features, fc)
	}

	for i := range doc.Features {
		name := strings.TrimSpace(doc.Features[i].Name)
		if name == "" {
			name = model.Uncategorized
		}
		add(name, &doc.Features[i].Bucket)
	}
	if doc.Uncategorized != nil {
		add(model.Uncategorized, doc.Uncategorized)
	}
	return res
}

func check(feature string, kind model.Kind, rec *Record) (Exclusion, bool) {
	err := validate.Struct(rec)
	if err == nil {
		return Exclusion{}, true
	}
	ex := Exclusion{Feature: feature, Kind: kind, Name: rec.Name}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		var missing []string
		for _, fe := range verrs {
			// A whitespace-only value is as absent as an empty one.
			missing = append(missing, strings.ToLower(fe.Field())+" required")
		}
		ex.Reason = strings.Join(missing, ", ")
	} else {
		ex.Reason = err.Error()
	}
	return ex, false
}

func (r *Record) entity(feature string, kind model.Kind) model.Entity {
	return model.Entity{
		Kind:        kind,
		Name:        r.Name,
		Path:        r.Path,
		Description: r.Description,
		Feature:     feature,
		Relations:   r.relations(),
		Detail:      r.detail(kind),
	}
}

func (r *Record) relations() model.RelationSet {
	rs := model.RelationSet{
		model.UsedInScreens:    r.UsedInScreens,
		model.UsedInComponents: r.UsedInComponents,
		model.UsedInActions:    r.UsedInActions,
		model.UsedInModules:    r.UsedInModules,
		model.UsesComponents:   r.UsesComponents,
		model.UsesActions:      r.UsesActions,
		model.UsesModules:      r.UsesModules,
		model.UsesTables:       r.UsesTables,
	}
	return rs.Clone()
}

func (r *Record) detail(kind model.Kind) model.Detail {
	switch kind {
	case model.Screen:
		return model.ScreenDetail{Route: r.Route, RequiresAuth: r.RequiresAuth}
	case model.Fragment:
		return model.FragmentDetail{Props: r.Props}
	case model.Action:
		return model.ActionDetail{Method: r.Method, RequiresAuth: r.RequiresAuth}
	case model.Module:
		return model.ModuleDetail{Category: r.Category}
	case model.Table:
		return model.TableDetail{Columns: r.Columns}
	}
	return nil
}
