// Package docs provides API documentation
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "This service renders CLIProxyAPI usage and quota statistics as PNG cards.",
        "title": "CLIProxy Stats API",
        "contact": {},
        "version": "1.0"
    },
    "host": "{{.Host}}",
    "basePath": "/",
    "paths": {
        "/cards/{kind}": {
            "get": {
                "description": "Build and render one statistics card. Returns a PNG image, or a markdown text summary when format=text.",
                "produces": ["image/png", "text/plain"],
                "tags": ["cards"],
                "summary": "Render a statistics card",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Card kind (overview, today, quota or dashboard)",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Set to 'text' for a markdown summary instead of an image",
                        "name": "format",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PNG image or text summary",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/status": {
            "get": {
                "description": "Get the current status of the service and upstream reachability",
                "produces": ["application/json"],
                "tags": ["status"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/StatusResponse"}
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Liveness probe",
                "produces": ["text/plain"],
                "tags": ["status"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "object"}
            }
        },
        "StatusResponse": {
            "type": "object",
            "properties": {
                "upstream_reachable": {"type": "boolean", "example": true},
                "cards": {
                    "type": "array",
                    "items": {"type": "string"},
                    "example": ["overview", "today", "quota", "dashboard"]
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "", // This will be set from environment
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "CLIProxy Stats API",
	Description:      "This service renders CLIProxyAPI usage and quota statistics as PNG cards.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
