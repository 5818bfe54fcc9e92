// Package docs holds the OpenAPI document served at /swagger/*.
// Regenerate with: swag init -g cmd/main.go -o docs
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
        "/auth/sign-in": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignInRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/identity.Session"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current profile and enabled modules",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/organizations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["organizations"],
                "summary": "List organizations",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["organizations"],
                "summary": "Provision an organization with its first admin",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Slug or email taken"}}
            }
        },
        "/admin/organizations/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["organizations"],
                "summary": "Deprovision an organization and every record it owns",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "500": {"description": "Partial failure"}}
            }
        },
        "/ledger/totals": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ledger"],
                "summary": "Balances per currency under the privacy view",
                "parameters": [{"type": "string", "name": "view", "in": "query", "enum": ["fiscal", "real"]}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ledger/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ledger"],
                "summary": "Totals, monthly series and latest transactions",
                "parameters": [
                    {"type": "string", "name": "view", "in": "query", "enum": ["fiscal", "real"]},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ledger/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ledger"],
                "summary": "Download the ledger as an xlsx workbook",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "List transactions visible under the privacy view",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Record a transaction",
                "responses": {"201": {"description": "Created"}, "403": {"description": "Non-fiscal without capability"}}
            }
        },
        "/public/{slug}": {
            "get": {
                "tags": ["public"],
                "summary": "Public booking page",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/public/{slug}/availability": {
            "get": {
                "tags": ["public"],
                "summary": "Free slots for a service on a day",
                "parameters": [
                    {"type": "string", "name": "slug", "in": "path", "required": true},
                    {"type": "string", "name": "service_id", "in": "query", "required": true},
                    {"type": "string", "name": "date", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/public/{slug}/appointments": {
            "post": {
                "tags": ["public"],
                "summary": "Request an appointment",
                "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Slot taken"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Dependency health",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "handlers.SignInRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "identity.Session": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "string"},
                "account_id": {"type": "string"}
            }
        },
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"}
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Back-office API",
	Description:      "Multi-tenant back-office: ledger, team, booking and organization administration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
