package bridge

import (
	"github.com/teemow/chattools/internal/toolkit"
)

// OpenAPIVersion is the OpenAPI version of the generated document.
const OpenAPIVersion = "3.1.0"

// OpenAPIDocument describes one POST /tools/{name} operation per tool.
// OpenWebUI reads the operation IDs and descriptions to build its tool list.
func OpenAPIDocument(defs []toolkit.Definition, version string) map[string]any {
	if version == "" {
		version = "dev"
	}

	paths := make(map[string]any, len(defs))
	for _, def := range defs {
		paths["/tools/"+def.Name] = map[string]any{
			"post": map[string]any{
				"operationId": def.Name,
				"summary":     def.Description,
				"description": def.Description,
				"requestBody": map[string]any{
					"required": false,
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": ParamsSchema(def.Params),
						},
					},
				},
				"responses": map[string]any{
					"200": map[string]any{
						"description": "Tool result",
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{"$ref": "#/components/schemas/CallResponse"},
							},
						},
					},
				},
			},
		}
	}

	return map[string]any{
		"openapi": OpenAPIVersion,
		"info": map[string]any{
			"title":       "chattools",
			"description": "Time, weather, geolocation and calendar tools for chat assistants.",
			"version":     version,
		},
		"paths": paths,
		"components": map[string]any{
			"schemas": map[string]any{
				"CallResponse": callResponseSchema(),
			},
		},
	}
}

// ParamsSchema returns the JSON schema of a tool's arguments object.
func ParamsSchema(params []toolkit.Param) map[string]any {
	properties := make(map[string]any, len(params))
	required := []string{}
	for _, p := range params {
		properties[p.Name] = map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func callResponseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"success": map[string]any{"type": "boolean"},
			"content": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{"type": "string"},
						"text": map[string]any{"type": "string"},
					},
				},
			},
			"data":       map[string]any{},
			"events":     map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			"error":      map[string]any{"type": "string"},
			"request_id": map[string]any{"type": "string"},
		},
		"required": []string{"success", "content", "events"},
	}
}
