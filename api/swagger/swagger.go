package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UniDocs API",
        "description": "Document lifecycle and moderation backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Documents", "description": "Document projections and search"},
        {"name": "Moderation", "description": "Moderator decisions over pending documents"},
        {"name": "Reports", "description": "Problem reports on approved documents"},
        {"name": "Ratings", "description": "Document ratings and aggregates"},
        {"name": "FAQs", "description": "FAQ entries and helpfulness ratings"},
        {"name": "Exports", "description": "Moderation activity exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Store unreachable"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents visible to the caller",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/documents/search": {
            "get": {
                "tags": ["Documents"],
                "summary": "Search documents",
                "parameters": [
                    {"name": "q", "in": "query", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Fetch a single document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/documents/{id}/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Report a document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Document not found or not approved"},
                    "409": {"description": "Already reported by this user"}
                }
            }
        },
        "/api/v1/documents/{id}/ratings": {
            "post": {
                "tags": ["Ratings"],
                "summary": "Rate a document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RatingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already rated by this user"}
                }
            },
            "put": {
                "tags": ["Ratings"],
                "summary": "Re-rate a document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RatingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Rating not found"}
                }
            },
            "delete": {
                "tags": ["Ratings"],
                "summary": "Withdraw a document rating",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Rating not found"}
                }
            }
        },
        "/api/v1/faqs": {
            "get": {
                "tags": ["FAQs"],
                "summary": "List FAQ entries with their helpfulness aggregates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/faqs/{id}/ratings": {
            "post": {
                "tags": ["FAQs"],
                "summary": "Rate an FAQ entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RatingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already rated by this user"}
                }
            },
            "delete": {
                "tags": ["FAQs"],
                "summary": "Withdraw an FAQ rating",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Rating not found"}
                }
            }
        },
        "/api/v1/moderation/documents/{id}": {
            "post": {
                "tags": ["Moderation"],
                "summary": "Approve or disapprove a document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Document not found"},
                    "409": {"description": "Document already moderated"}
                }
            }
        },
        "/api/v1/moderation/documents/status/{status}": {
            "get": {
                "tags": ["Moderation"],
                "summary": "List documents in a given status",
                "parameters": [
                    {"name": "status", "in": "path", "required": true, "type": "string", "enum": ["pending", "approved", "denied", "reported", "banned"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/moderation/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export moderation activity",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered export"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ModerateRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["approve", "disapprove"]},
                "comments": {"type": "string"}
            },
            "required": ["action"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "severity": {"type": "string", "enum": ["minor", "moderate", "severe"]}
            },
            "required": ["details", "severity"]
        },
        "RatingRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "number"}
            },
            "required": ["value"]
        },
        "DocumentDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "uploader_id": {"type": "integer"},
                "status": {"type": "string"},
                "module": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "university": {"type": "string"},
                "category": {"type": "string"},
                "year": {"type": "integer"},
                "author": {"type": "string"},
                "file_name": {"type": "string"},
                "file_size": {"type": "integer"},
                "mime_type": {"type": "string"},
                "approved_at": {"type": "string"},
                "denied_at": {"type": "string"},
                "denial_comments": {"type": "string"},
                "average_rating": {"type": "number"},
                "report_count": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "message": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
