// Package docs registers the OpenAPI document served by the swagger UI.
// Regenerate with `swag init -g cmd/mtbench/docs.go -o cmd/mtbench/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "produces": ["application/json"],
                "summary": "List supported models",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}}
            }
        },
        "/tasks": {
            "get": {
                "produces": ["application/json"],
                "summary": "List translation tasks",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TasksResponse"}}}
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Prepared translators and manager state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        },
        "/resolve": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Resolve tokenizer language codes for a model/task pair",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.ResolveRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ResolveResponse"}},
                    "404": {"description": "Unknown model or task", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unsupported combination", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/translate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/x-ndjson"],
                "summary": "Translate inputs, streaming one NDJSON line per result",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.TranslateRequest"}}],
                "responses": {
                    "200": {"description": "NDJSON stream of types.TranslateLine ending with types.TranslateDone", "schema": {"$ref": "#/definitions/types.TranslateLine"}},
                    "404": {"description": "Unknown model or task", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unsupported combination", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too busy", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Model backend unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {"type": "object", "properties": {"code": {"type": "integer"}, "error": {"type": "string"}}},
        "types.Model": {"type": "object", "properties": {
            "id": {"type": "string"}, "family": {"type": "string"}, "restriction": {"type": "string"},
            "tokenizer": {"type": "string"}, "model_kind": {"type": "string"}, "control": {"type": "string"}}},
        "types.ModelsResponse": {"type": "object", "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}}},
        "types.Task": {"type": "object", "properties": {"name": {"type": "string"}, "src_lang": {"type": "string"}, "tgt_lang": {"type": "string"}}},
        "types.TasksResponse": {"type": "object", "properties": {"tasks": {"type": "array", "items": {"$ref": "#/definitions/types.Task"}}}},
        "types.ResolveRequest": {"type": "object", "properties": {"model": {"type": "string"}, "task": {"type": "string"}}},
        "types.ResolveResponse": {"type": "object", "properties": {"src_lang": {"type": "string"}, "tgt_lang": {"type": "string"}}},
        "types.TranslateRequest": {"type": "object", "properties": {
            "model": {"type": "string"}, "task": {"type": "string"}, "quantize": {"type": "string"},
            "inputs": {"type": "array", "items": {"type": "string"}}, "offline": {"type": "boolean"}}},
        "types.TranslateLine": {"type": "object", "properties": {"index": {"type": "integer"}, "text": {"type": "string"}}},
        "types.StatusResponse": {"type": "object", "properties": {
            "state": {"type": "string"}, "last_error": {"type": "string"}, "loads_total": {"type": "integer"},
            "uptime_seconds": {"type": "integer"}, "server_time_unix": {"type": "integer"},
            "warmups_in_progress": {"type": "integer"}, "instances": {"type": "array", "items": {"type": "object"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "mtbench API",
	Description:      "HTTP API for MBART/MBART50/M2M100 translation benchmarking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
