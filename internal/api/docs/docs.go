// Package docs provides the OpenAPI definition served by the swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Get system status",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/plugins": {
            "get": {
                "produces": ["application/json"],
                "tags": ["plugins"],
                "summary": "Get all plugins",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/plugins/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["plugins"],
                "summary": "Get plugin by ID",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}}
                }
            }
        },
        "/plugins/{id}/start": {
            "post": {
                "produces": ["application/json"],
                "tags": ["plugins"],
                "summary": "Start a plugin",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object"}}
                }
            }
        },
        "/plugins/{id}/stop": {
            "post": {
                "produces": ["application/json"],
                "tags": ["plugins"],
                "summary": "Stop a plugin",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object"}}
                }
            }
        },
        "/buffers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["buffers"],
                "summary": "Get all buffers",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/buffers/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["buffers"],
                "summary": "Get buffer by name",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}}
                }
            }
        },
        "/records/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Validate a record",
                "parameters": [
                    {"name": "record", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}}
                }
            }
        },
        "/records/hash": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Hash a record",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}}
                }
            }
        },
        "/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["config"],
                "summary": "Get configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["config"],
                "summary": "Update configuration",
                "parameters": [
                    {"name": "config", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object"}}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "",
	Schemes:          []string{"http", "https"},
	Title:            "IntelPipe API",
	Description:      "API for controlling the threat intelligence pipeline",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
