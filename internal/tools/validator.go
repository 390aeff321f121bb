package tools

import (
	"errors"
	"fmt"
)

// ValidateCall checks call arguments against the registered schema.
func ValidateCall(reg *Registry, name string, args Args) error {
	if reg == nil {
		return errors.New("tool registry unavailable")
	}
	schema, ok := reg.Schema(name)
	if !ok {
		return fmt.Errorf("unsupported tool call: %s", name)
	}
	return ValidateArgs(schema, args)
}

// ValidateArgs performs required-field, type and minimum checks. A JSON null
// counts as absent.
func ValidateArgs(schema Schema, args Args) error {
	for _, field := range schema.Required {
		if val, exists := args[field]; !exists || val == nil {
			return fmt.Errorf("%s is required", field)
		}
	}
	for name, prop := range schema.Properties {
		val, exists := args[name]
		if !exists || val == nil || prop.HandlerTyped {
			continue
		}
		if err := validateProperty(name, prop, val); err != nil {
			return err
		}
	}
	return nil
}

func validateProperty(name string, prop Property, val interface{}) error {
	switch prop.Type {
	case "string":
		if _, ok := val.(string); !ok {
			return fmt.Errorf("%s must be string", name)
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return fmt.Errorf("%s must be boolean", name)
		}
	case "array":
		items, ok := val.([]interface{})
		if !ok {
			return fmt.Errorf("%s must be array", name)
		}
		if prop.Items != nil {
			for i, item := range items {
				if err := validateProperty(fmt.Sprintf("%s[%d]", name, i), *prop.Items, item); err != nil {
					return err
				}
			}
		}
	case "integer":
		n, ok := Args{name: val}.Int(name)
		if !ok {
			return fmt.Errorf("%s must be integer", name)
		}
		if prop.Minimum != nil && n < *prop.Minimum {
			return fmt.Errorf("%s must be >= %d", name, *prop.Minimum)
		}
	}
	return nil
}
