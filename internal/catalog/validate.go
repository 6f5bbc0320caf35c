package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://catalog.json"

// validateDocument checks raw catalog JSON against the embedded schema.
func validateDocument(raw []byte) error {
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fmt.Errorf("parse catalog schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, schemaDoc); err != nil {
		return fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid catalog JSON: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

// validateCategories performs the structural checks the schema cannot express.
// Returns a combined error describing all problems found, or nil if valid.
func validateCategories(categories []Category) error {
	var problems []string

	if len(categories) == 0 {
		problems = append(problems, "catalog has no categories")
	}

	catIDs := make(map[string]bool, len(categories))
	for _, cat := range categories {
		if cat.ID == "" {
			problems = append(problems, "category with empty ID")
		}
		if catIDs[cat.ID] {
			problems = append(problems, fmt.Sprintf("duplicate category ID: %q", cat.ID))
		}
		catIDs[cat.ID] = true

		if len(cat.Goals) == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no goals", cat.ID))
		}

		goalIDs := make(map[string]bool, len(cat.Goals))
		for _, g := range cat.Goals {
			if g.ID == "" {
				problems = append(problems, fmt.Sprintf("category %q has a goal with empty ID", cat.ID))
			}
			if goalIDs[g.ID] {
				problems = append(problems, fmt.Sprintf("category %q: duplicate goal ID %q", cat.ID, g.ID))
			}
			goalIDs[g.ID] = true
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
