package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Resource names double as schema identifiers.
const (
	ResourceService        = "service"
	ResourceTeamMember     = "teamMember"
	ResourceTestimonial    = "testimonial"
	ResourceLegalService   = "legalService"
	ResourceNavigationLink = "navigationLink"
	ResourceSiteSettings   = "siteSettings"
)

// Only required fields and container shapes are pinned. Optional fields
// receive defaults during the transform.
var recordSchemas = map[string]string{
	ResourceService: `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"slug": {"type": ["string", "null"]}
		}
	}`,
	ResourceTeamMember: `{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"email": {"type": ["string", "null"]},
			"phone": {"type": ["string", "null"]},
			"whatsapp": {"type": ["string", "null"]}
		}
	}`,
	ResourceTestimonial: `{
		"type": "object",
		"required": ["name", "testimonial"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"testimonial": {"type": "string", "minLength": 1}
		}
	}`,
	ResourceLegalService: `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"subtitles": {
				"type": ["array", "null"],
				"items": {
					"type": "object",
					"properties": {"title": {"type": ["string", "null"]}}
				}
			}
		}
	}`,
	ResourceNavigationLink: `{
		"type": "object",
		"required": ["label", "href"],
		"properties": {
			"label": {"type": "string", "minLength": 1},
			"href": {"type": "string", "minLength": 1},
			"isScroll": {"type": ["boolean", "null"]},
			"scrollTarget": {"type": ["string", "null"]}
		}
	}`,
	ResourceSiteSettings: `{"type": "object"}`,
}

var compiledSchemas = mustCompileSchemas(recordSchemas)

func mustCompileSchemas(sources map[string]string) map[string]*jsonschema.Schema {
	compiled := make(map[string]*jsonschema.Schema, len(sources))
	for name, source := range sources {
		schema, err := compileSchema(name, source)
		if err != nil {
			panic(fmt.Sprintf("transform: compile %s schema: %v", name, err))
		}
		compiled[name] = schema
	}
	return compiled
}

func compileSchema(name, source string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := name + ".json"
	if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// validateFields checks fields against the schema registered for resource.
func validateFields(resource string, id int64, fields map[string]any) error {
	schema, ok := compiledSchemas[resource]
	if !ok {
		return nil
	}
	if fields == nil {
		fields = map[string]any{}
	}
	if err := schema.Validate(fields); err != nil {
		return &TransformError{
			Resource: resource,
			ID:       id,
			Reason:   describeViolation(err),
			Err:      err,
		}
	}
	return nil
}

func describeViolation(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return "invalid record"
	}
	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			loc := strings.TrimSpace(node.InstanceLocation)
			if loc == "" {
				loc = "/"
			}
			issues = append(issues, loc+" "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return strings.Join(issues, "; ")
}
