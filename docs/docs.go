// Package docs holds the OpenAPI description served at /swagger/.
// Regenerate with: swag init -g cmd/marketplace-api/main.go
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        },
        "/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an actor",
                "parameters": [
                    {"description": "Display name and role", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.credentialsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Display name and role", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.credentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/listings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Browse the catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.listingResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Create a listing",
                "parameters": [
                    {"description": "Listing", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createListingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.listingResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/listings/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Get a listing",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listingResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/listings/{id}/availability": {
            "get": {
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Check availability",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Requested quantity", "name": "quantity", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.availabilityResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List my orders",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.orderResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order",
                "parameters": [
                    {"type": "string", "description": "Client-generated key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Order", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.placeOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.placeOrderResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.placeOrderResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Insufficient quantity", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/trends": {
            "get": {
                "produces": ["application/json"],
                "tags": ["trends"],
                "summary": "Market trends",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.trendResponse"}}}
                }
            }
        }
    },
    "definitions": {
        "handler.actorResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "display_name": {"type": "string"},
                "id": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "handler.availabilityResponse": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "listing_id": {"type": "string"},
                "remaining": {"type": "integer"},
                "requested": {"type": "integer"}
            }
        },
        "handler.createListingRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "description": {"type": "string", "maxLength": 2000},
                "name": {"type": "string", "maxLength": 200},
                "total_quantity": {"type": "integer"},
                "unit_price": {"type": "string"}
            }
        },
        "handler.credentialsRequest": {
            "type": "object",
            "required": ["display_name", "role"],
            "properties": {
                "display_name": {"type": "string", "maxLength": 120},
                "role": {"type": "string", "enum": ["producer", "consumer"]}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "available": {"type": "integer"},
                "error": {"type": "string"},
                "requested": {"type": "integer"}
            }
        },
        "handler.listingResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "owner_id": {"type": "string"},
                "owner_name": {"type": "string"},
                "remaining": {"type": "integer"},
                "total_quantity": {"type": "integer"},
                "unit_price": {"type": "string"}
            }
        },
        "handler.orderResponse": {
            "type": "object",
            "properties": {
                "buyer_id": {"type": "string"},
                "buyer_name": {"type": "string"},
                "id": {"type": "string"},
                "listing_id": {"type": "string"},
                "listing_name": {"type": "string"},
                "placed_at": {"type": "string"},
                "producer_id": {"type": "string"},
                "producer_name": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "handler.placeOrderRequest": {
            "type": "object",
            "required": ["listing_id"],
            "properties": {
                "listing_id": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "handler.placeOrderResponse": {
            "type": "object",
            "properties": {
                "order": {"$ref": "#/definitions/handler.orderResponse"},
                "remaining": {"type": "integer"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}},
                "status": {"type": "string"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "actor": {"$ref": "#/definitions/handler.actorResponse"},
                "token": {"type": "string"}
            }
        },
        "handler.trendResponse": {
            "type": "object",
            "properties": {
                "average_price": {"type": "string"},
                "total_ordered_quantity": {"type": "integer"}
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Marketplace API",
	Description:      "Farm marketplace: producers list produce, consumers order it, nobody oversells.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
