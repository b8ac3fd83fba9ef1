package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("validation: front matter schema invalid")
	ErrSchemaValidation = errors.New("validation: front matter validation failed")
)

// ValidationIssue captures a single JSON Schema failure.
type ValidationIssue struct {
	Location string
	Keyword  string
	Message  string
}

// String renders the issue as "<location>: <message>".
func (i ValidationIssue) String() string {
	location := strings.TrimSpace(i.Location)
	if location == "" {
		location = "/"
	}
	if i.Message == "" {
		return location
	}
	return fmt.Sprintf("%s: %s", location, i.Message)
}

// PayloadValidationError surfaces front matter issues with their locations.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

func stringProps(names ...string) map[string]any {
	props := make(map[string]any, len(names))
	for _, name := range names {
		props[name] = map[string]any{"type": "string"}
	}
	return props
}

func closedObject(properties map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}

func idList() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "integer"}}
}

// FrontMatterSchema returns the JSON Schema describing an exported MDX front
// matter block. It checks types, enums and known keys only; required fields
// are the schema validator's concern.
func FrontMatterSchema() map[string]any {
	schemaProps := stringProps("image", "author", "publishDate", "modifiedDate")
	schemaProps["type"] = map[string]any{"enum": []any{"WebPage", "Article", "BlogPosting", "CreativeWork"}}
	schemaProps["breadcrumbs"] = map[string]any{
		"type":  "array",
		"items": closedObject(stringProps("name", "url")),
	}

	seoProps := stringProps("title", "description", "canonical")
	seoProps["schema"] = closedObject(schemaProps)

	props := stringProps("title", "slug", "date", "updated")
	props["id"] = map[string]any{"type": "integer", "minimum": 1}
	props["type"] = map[string]any{"enum": []any{"project", "post", "page"}}
	props["categories"] = idList()
	props["tags"] = idList()
	props["hero"] = closedObject(stringProps("title", "subtitle", "image", "video", "text_color", "background_color"))
	props["links"] = closedObject(stringProps("url", "image", "video"))
	props["featured"] = map[string]any{"type": "boolean"}
	props["seo"] = closedObject(seoProps)

	root := closedObject(props)
	root["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	return root
}

var (
	frontMatterOnce     sync.Once
	frontMatterCompiled *jsonschema.Schema
	frontMatterErr      error
)

func compiledFrontMatterSchema() (*jsonschema.Schema, error) {
	frontMatterOnce.Do(func() {
		frontMatterCompiled, frontMatterErr = compileSchema(FrontMatterSchema())
	})
	return frontMatterCompiled, frontMatterErr
}

// FrontMatterResult is the outcome of ValidateFrontMatter. Unknown keys are
// warnings; every other schema violation is an error.
type FrontMatterResult struct {
	Valid    bool              `json:"valid"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
	Issues   []ValidationIssue `json:"-"`
}

// ValidateFrontMatter validates fields against FrontMatterSchema.
func ValidateFrontMatter(fields map[string]any) FrontMatterResult {
	result := FrontMatterResult{Errors: []string{}, Warnings: []string{}}
	if fields == nil {
		result.Errors = append(result.Errors, "Front matter is missing")
		return result
	}

	err := ValidatePayload(fields)
	if err == nil {
		result.Valid = true
		return result
	}
	var payloadErr *PayloadValidationError
	if !errors.As(err, &payloadErr) {
		result.Errors = append(result.Errors, fmt.Sprintf("Front matter could not be validated: %v", err))
		return result
	}

	result.Issues = payloadErr.Issues
	for _, issue := range result.Issues {
		if strings.HasSuffix(issue.Keyword, "/additionalProperties") {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown front matter field at %s", issue.String()))
			continue
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Front matter %s", issue.String()))
	}
	result.Valid = len(result.Errors) == 0
	return result
}

// ValidatePayload validates payload against the front matter schema. Values
// are normalised through JSON first so YAML-decoded scalars compare the way
// the schema expects.
func ValidatePayload(payload map[string]any) error {
	compiled, err := compiledFrontMatterSchema()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	normalized, err := normalizePayload(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if err := compiled.Validate(normalized); err != nil {
		return &PayloadValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

func normalizePayload(payload map[string]any) (any, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("frontmatter.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("frontmatter.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Keyword:  strings.TrimSpace(node.KeywordLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	slices.SortStableFunc(issues, func(a, b ValidationIssue) int {
		if c := strings.Compare(a.Location, b.Location); c != 0 {
			return c
		}
		return strings.Compare(a.Keyword, b.Keyword)
	})
	return issues
}
