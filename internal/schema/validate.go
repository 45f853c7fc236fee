// Package schema validates relay configuration files against the embedded
// JSON schema.
package schema

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/relay-build/relay/internal/errors"
	schemafs "github.com/relay-build/relay/schema"
)

const configSchemaName = "config.schema.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		data, err := schemafs.FS.ReadFile(configSchemaName)
		if err != nil {
			compileErr = fmt.Errorf("read embedded schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("parse embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(configSchemaName, doc); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(configSchemaName)
	})
	return compiledSchema, compileErr
}

// ValidateConfig checks raw configuration JSON against the embedded schema.
// The returned error carries the validation exit class.
func ValidateConfig(data []byte) error {
	sch, err := compiled()
	if err != nil {
		return errors.Wrap(err, "schema validation unavailable")
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errors.Configf("config is not valid JSON: %v", err)
	}
	if err := sch.Validate(doc); err != nil {
		return &errors.RelayError{
			Kind:    errors.KindValidation,
			Message: fmt.Sprintf("config does not match schema: %v", err),
			Cause:   err,
		}
	}
	return nil
}
