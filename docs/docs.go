// Package docs holds the OpenAPI document served at /docs. Running go generate
// in cmd/api replaces it with swag output from the handler annotations.
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
        "/snippets": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["snippets"],
                "summary": "List snippets",
                "parameters": [
                    {"type": "boolean", "description": "active state", "name": "active", "in": "query"},
                    {"type": "string", "description": "head, footer, everywhere or custom", "name": "location", "in": "query"},
                    {"type": "string", "description": "php, js or css", "name": "code_type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/snippets.Snippet"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "string"}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["snippets"],
                "summary": "Create snippet",
                "parameters": [
                    {"description": "snippet", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.SnippetWriteDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/snippets.Snippet"}},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}},
                    "409": {"description": "Conflict", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "string"}}
                }
            }
        },
        "/snippets/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["snippets"],
                "summary": "Get snippet by id",
                "parameters": [
                    {"type": "string", "description": "snippet id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/snippets.Snippet"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["snippets"],
                "summary": "Replace snippet",
                "parameters": [
                    {"type": "string", "description": "snippet id", "name": "id", "in": "path", "required": true},
                    {"description": "snippet", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.SnippetWriteDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/snippets.Snippet"}},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["snippets"],
                "summary": "Delete snippet",
                "parameters": [
                    {"type": "string", "description": "snippet id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/snippets/{id}/active": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["snippets"],
                "summary": "Activate or deactivate snippet",
                "parameters": [
                    {"type": "string", "description": "snippet id", "name": "id", "in": "path", "required": true},
                    {"description": "state", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.SnippetActiveDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.activeResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/snippets/{id}/toggle": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["snippets"],
                "summary": "Flip snippet active state",
                "parameters": [
                    {"type": "string", "description": "snippet id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.activeResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "string"}}
                }
            }
        },
        "/locations/{location}/snippets": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["snippets"],
                "summary": "List snippets bound to a location",
                "parameters": [
                    {"type": "string", "description": "head, footer, everywhere or custom", "name": "location", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/snippets.Snippet"}}}
                }
            }
        },
        "/settings/header-footer": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Get header and footer code",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/settings.HeaderFooter"}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Save header and footer code",
                "parameters": [
                    {"description": "code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.HeaderFooterDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/settings.HeaderFooter"}},
                    "400": {"description": "Bad Request", "schema": {"type": "string"}}
                }
            }
        },
        "/safe-mode": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Report whether safe mode is active for this request",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapi.safeModeResponse"}}
                }
            }
        }
    },
    "definitions": {
        "httpapi.HeaderFooterDTO": {
            "type": "object",
            "properties": {
                "footer_code": {"type": "string"},
                "header_code": {"type": "string"}
            }
        },
        "httpapi.SnippetActiveDTO": {
            "type": "object",
            "required": ["active"],
            "properties": {
                "active": {"type": "boolean"}
            }
        },
        "httpapi.SnippetWriteDTO": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "active": {"type": "boolean"},
                "code": {"type": "string"},
                "code_type": {"type": "string"},
                "custom_hook": {"type": "string"},
                "location": {"type": "string"},
                "name": {"type": "string"},
                "priority": {"type": "integer"}
            }
        },
        "httpapi.activeResponse": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "id": {"type": "string"}
            }
        },
        "httpapi.safeModeResponse": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "forced": {"type": "boolean"},
                "suppress_header_footer": {"type": "boolean"}
            }
        },
        "settings.HeaderFooter": {
            "type": "object",
            "properties": {
                "footer_code": {"type": "string"},
                "header_code": {"type": "string"}
            }
        },
        "snippets.Snippet": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "code": {"type": "string"},
                "code_type": {"type": "string"},
                "created_at": {"type": "string"},
                "custom_hook": {"type": "string"},
                "id": {"type": "string"},
                "location": {"type": "string"},
                "name": {"type": "string"},
                "priority": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Admin token, also accepted as Authorization: Bearer",
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/_sniply/v1",
	Schemes:          []string{},
	Title:            "sniply_inject admin API",
	Description:      "Manage snippets and header/footer code injected into proxied pages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
