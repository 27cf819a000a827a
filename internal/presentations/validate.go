package presentations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// validateDocument checks every slide in the document. The title is an
// unconstrained display string; a blank one is allowed.
func validateDocument(_ string, slides []Slide) error {
	fields := map[string]string{}
	for i, slide := range slides {
		if err := validateSlide(slide); err != nil {
			var slideErr *ValidationError
			if errors.As(err, &slideErr) {
				for field, msg := range slideErr.Fields {
					fields[fmt.Sprintf("slides[%d].%s", i, field)] = msg
				}
				continue
			}
			fields[fmt.Sprintf("slides[%d]", i)] = err.Error()
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validateSlide checks a single slide envelope. Layout is the only required
// field; background settings are validated when present.
func validateSlide(slide Slide) error {
	err := validation.ValidateStruct(&slide,
		validation.Field(&slide.Layout, validation.Required),
		validation.Field(&slide.BackgroundColor, is.HexColor),
		validation.Field(&slide.BackgroundImage, validation.By(urlOrDataURI)),
	)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validation.Errors); ok {
		fields := make(map[string]string, len(fieldErrs))
		for field, ferr := range fieldErrs {
			fields[jsonFieldName(field)] = ferr.Error()
		}
		return &ValidationError{Fields: fields}
	}
	return &ValidationError{Fields: map[string]string{"slide": err.Error()}}
}

func urlOrDataURI(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "data:") {
		return is.DataURI.Validate(raw)
	}
	return is.URL.Validate(raw)
}

func jsonFieldName(structField string) string {
	switch structField {
	case "Layout":
		return "layout"
	case "BackgroundColor":
		return "background_color"
	case "BackgroundImage":
		return "background_image"
	case "Content":
		return "content"
	default:
		return structField
	}
}

// snapshotSchema constrains what a version row may persist. The ledger is
// append-only, so a malformed snapshot would be frozen forever; rows are
// checked before insert.
var snapshotSchemaDocument = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"required": []any{
		"title",
		"slides",
		"created_at",
		"updated_at",
	},
	"properties": map[string]any{
		"title": map[string]any{"type": "string"},
		"slides": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"layout"},
				"properties": map[string]any{
					"layout":           map[string]any{"type": "string", "minLength": 1},
					"content":          map[string]any{"type": "object"},
					"background_color": map[string]any{"type": "string"},
					"background_image": map[string]any{"type": "string"},
				},
			},
		},
		"restored_from": map[string]any{"type": "string"},
		"updated_by":    map[string]any{"type": "string"},
		"created_at":    map[string]any{"type": "string"},
		"updated_at":    map[string]any{"type": "string"},
	},
}

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

func compiledSnapshotSchema() (*jsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		encoded, err := json.Marshal(snapshotSchemaDocument)
		if err != nil {
			snapshotSchemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("snapshot.json", bytes.NewReader(encoded)); err != nil {
			snapshotSchemaErr = err
			return
		}
		snapshotSchema, snapshotSchemaErr = compiler.Compile("snapshot.json")
	})
	return snapshotSchema, snapshotSchemaErr
}

// validateSnapshot round-trips the snapshot through JSON and validates the
// result against the compiled schema.
func validateSnapshot(snapshot Snapshot) error {
	schema, err := compiledSnapshotSchema()
	if err != nil {
		return fmt.Errorf("presentations: compile snapshot schema: %w", err)
	}
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("presentations: encode snapshot: %w", err)
	}
	var document any
	if err := json.Unmarshal(encoded, &document); err != nil {
		return fmt.Errorf("presentations: decode snapshot: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return nil
}
