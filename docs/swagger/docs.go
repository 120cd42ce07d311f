// Package swagger registers the OpenAPI document of the control API with swag.
// It follows the layout produced by swag init from the handler annotations.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    },
    "security": [{"ApiKeyAuth": []}],
    "paths": {
        "/integrity": {
            "get": {
                "description": "Performs the schema, snapshot and mirror checks without fixing anything.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Run All Integrity Checks",
                "responses": {
                    "200": {"description": "Combined Report", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/integrity/schema": {
            "get": {
                "description": "Checks that every table has the columns of its model.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Schema",
                "responses": {
                    "200": {"description": "Schema Report", "schema": {"$ref": "#/definitions/checks.SchemaReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity/snapshots": {
            "get": {
                "description": "Lists worlds flagged map_available without snapshot files. Fixing clears the flag until the next data sync.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Snapshots",
                "parameters": [
                    {"type": "boolean", "description": "Clear the map flag of broken worlds", "name": "fix", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Snapshot Report", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity/mirror": {
            "get": {
                "description": "Lists worlds whose snapshot is missing from the bucket. Fixing re-uploads the local files.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Mirror",
                "parameters": [
                    {"type": "boolean", "description": "Re-upload missing snapshots", "name": "fix", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Mirror Report", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Mirror disabled", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sync/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Sync Status",
                "responses": {
                    "200": {"description": "Status", "schema": {"$ref": "#/definitions/scheduler.Status"}}
                }
            }
        },
        "/sync/toggle/{world}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Toggle World Sync",
                "parameters": [
                    {"type": "string", "description": "World id", "name": "world", "in": "path", "required": true},
                    {"type": "string", "default": "data", "description": "Sync type (data, achievements)", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "New state", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}},
                    "404": {"description": "World not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sync/reset/{type}": {
            "post": {
                "description": "Drop queued and running syncs of a type and recreate its pool.",
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Reset Queue",
                "parameters": [
                    {"type": "string", "description": "Sync type (data, achievements)", "name": "type", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Reset", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sync/{type}": {
            "post": {
                "description": "Queue a sync of every open world with the type enabled.",
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Sync All Worlds",
                "parameters": [
                    {"type": "string", "description": "Sync type (data, achievements)", "name": "type", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Number of worlds queued", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Unknown sync type", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sync/{type}/{world}": {
            "post": {
                "description": "Queue a sync of one world. Worlds already queued are skipped.",
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Sync World",
                "parameters": [
                    {"type": "string", "description": "Sync type (data, achievements)", "name": "type", "in": "path", "required": true},
                    {"type": "string", "description": "World id (e.g. 'br52')", "name": "world", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}},
                    "400": {"description": "Unknown sync type", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "World not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "checks.SchemaReport": {
            "type": "object",
            "properties": {
                "matched": {"type": "boolean"},
                "tables": {"type": "object", "additionalProperties": {"$ref": "#/definitions/checks.TableReport"}},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "checks.TableReport": {
            "type": "object",
            "properties": {
                "missing_columns": {"type": "array", "items": {"type": "string"}},
                "type_mismatches": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"}
            }
        },
        "scheduler.PoolStatus": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "concurrency": {"type": "integer"},
                "queued": {"type": "array", "items": {"type": "string"}},
                "active": {"type": "array", "items": {"type": "string"}},
                "running": {"type": "array", "items": {"type": "string"}}
            }
        },
        "scheduler.WorldStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "open": {"type": "boolean"},
                "sync_data_enabled": {"type": "boolean"},
                "sync_achievements_enabled": {"type": "boolean"},
                "last_data_sync_status": {"type": "string"},
                "last_data_sync_at": {"type": "string"},
                "last_achievements_sync_status": {"type": "string"},
                "last_achievements_sync_at": {"type": "string"}
            }
        },
        "scheduler.Status": {
            "type": "object",
            "properties": {
                "pools": {"type": "array", "items": {"$ref": "#/definitions/scheduler.PoolStatus"}},
                "worlds": {"type": "array", "items": {"$ref": "#/definitions/scheduler.WorldStatus"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "World Sync API",
	Description:      "Control channel of the world synchronization engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
