// Package docs holds the OpenAPI document served under /swagger.
package docs

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
    "paths": {
        "/api/reports/sources": {
            "get": {
                "tags": ["reports"],
                "summary": "List data sources and their fields",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/reports/sources/{source}/operators": {
            "get": {
                "tags": ["reports"],
                "summary": "Operators valid for a field",
                "parameters": [
                    {"type": "string", "name": "source", "in": "path", "required": true},
                    {"type": "string", "name": "field", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/reports/run": {
            "post": {
                "tags": ["reports"],
                "summary": "Run a report configuration",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/reports/export": {
            "post": {
                "tags": ["reports"],
                "summary": "Export a report configuration",
                "parameters": [
                    {"type": "string", "name": "format", "in": "query", "enum": ["csv", "xlsx"]},
                    {"type": "string", "name": "name", "in": "query"}
                ],
                "responses": {"200": {"description": "File"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/reports/live": {
            "get": {
                "tags": ["reports"],
                "summary": "Websocket stream of report previews",
                "responses": {"101": {"description": "Switching Protocols"}, "426": {"description": "Upgrade Required"}}
            }
        },
        "/api/templates": {
            "get": {
                "tags": ["templates"],
                "summary": "List templates",
                "parameters": [{"type": "string", "name": "category", "in": "query", "enum": ["standard", "custom", "ai-generated"]}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["templates"],
                "summary": "Save a custom template",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/templates/generated": {
            "post": {
                "tags": ["templates"],
                "summary": "Save a generated template",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/templates/{id}": {
            "get": {
                "tags": ["templates"],
                "summary": "Get a template",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["templates"],
                "summary": "Delete a custom template",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/templates/{id}/instantiate": {
            "get": {
                "tags": ["templates"],
                "summary": "Rehydrate a template into a configuration",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/templates/{id}/run": {
            "post": {
                "tags": ["templates"],
                "summary": "Run a template",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/templates/{id}/export": {
            "get": {
                "tags": ["templates"],
                "summary": "Export a template",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "format", "in": "query", "enum": ["csv", "xlsx"]}
                ],
                "responses": {"200": {"description": "File"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/preferences/{view}": {
            "get": {
                "tags": ["preferences"],
                "summary": "Column layout for a view",
                "parameters": [{"type": "string", "name": "view", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["preferences"],
                "summary": "Save the column layout for a view",
                "parameters": [{"type": "string", "name": "view", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/schedules": {
            "get": {
                "tags": ["schedules"],
                "summary": "List report schedules",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["schedules"],
                "summary": "Schedule a template export",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/schedules/{id}": {
            "delete": {
                "tags": ["schedules"],
                "summary": "Delete a schedule",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/schedules/{id}/trigger": {
            "post": {
                "tags": ["schedules"],
                "summary": "Run a schedule now",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/schedules/{id}/runs": {
            "get": {
                "tags": ["schedules"],
                "summary": "Run history of a schedule",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/audit-logs": {
            "get": {
                "tags": ["audit"],
                "summary": "List audit logs",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["system"],
                "summary": "Health Check",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["system"],
                "summary": "Pings the report data store",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/metrics": {
            "get": {
                "tags": ["system"],
                "summary": "Prometheus metrics",
                "responses": {"200": {"description": "OK"}}
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
	Title:            "go-contractor Report API",
	Description:      "Declarative report builder for construction management data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
