package textra

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed response.schema.json
var responseSchemaJSON string

type translateResponse struct {
	ResultSet struct {
		Result struct {
			Text string `json:"text"`
		} `json:"result"`
	} `json:"resultset"`
}

var loadResponseSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("response.schema.json", strings.NewReader(responseSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("response.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// ParseResponse extracts resultset.result.text from a response body.
func ParseResponse(body []byte) (string, error) {
	value, err := decodeStrictJSON(body)
	if err != nil {
		return "", fmt.Errorf("decode response JSON: %w", err)
	}

	schema, err := loadResponseSchema()
	if err != nil {
		return "", fmt.Errorf("load response schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return "", fmt.Errorf("response schema validation failed: %w", err)
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return parsed.ResultSet.Result.Text, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("response body is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("response contains trailing content")
	}
	return value, nil
}
