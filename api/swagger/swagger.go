package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Grievance Portal Gateway",
        "description": "Gateway for the citizen grievance portal: submission wizard, media capture, tracking, and the officials' review surface",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Gateway sessions"},
        {"name": "Wizard", "description": "Three-step grievance submission"},
        {"name": "Media", "description": "Audio and photo attachments"},
        {"name": "Grievances", "description": "Public tracking"},
        {"name": "Queue", "description": "Auto-assignment review"},
        {"name": "Admin", "description": "Officials' complaint management"},
        {"name": "Assistant", "description": "Offline keyword helper"},
        {"name": "Map", "description": "Location picker configuration"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register citizen account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Start a submission draft",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Wizard"],
                "summary": "Get the current draft",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No draft"}
                }
            },
            "delete": {
                "tags": ["Wizard"],
                "summary": "Discard the draft",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/wizard/description": {
            "put": {
                "tags": ["Wizard"],
                "summary": "Update step-1 fields",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDescriptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard/location": {
            "put": {
                "tags": ["Wizard"],
                "summary": "Update the text location",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard/pin": {
            "put": {
                "tags": ["Wizard"],
                "summary": "Record a map pin selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard/audio/language": {
            "put": {
                "tags": ["Wizard"],
                "summary": "Tag the audio attachment's spoken language",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard/contact": {
            "put": {
                "tags": ["Wizard"],
                "summary": "Update the optional contact fields",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard/advance": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Move the wizard forward one step",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Step requirements not met"}
                }
            }
        },
        "/wizard/back": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Move the wizard back one step",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard/submit": {
            "post": {
                "tags": ["Wizard"],
                "summary": "Submit the draft",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Step requirements not met"},
                    "502": {"description": "Backend unavailable"}
                }
            }
        },
        "/wizard/audio/recording": {
            "post": {
                "tags": ["Media"],
                "summary": "Open a recording session",
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Recording already active"}
                }
            },
            "delete": {
                "tags": ["Media"],
                "summary": "Abort the recording session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/wizard/audio/recording/stop": {
            "post": {
                "tags": ["Media"],
                "summary": "Close the recording session and attach the clip",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard/audio": {
            "put": {
                "tags": ["Media"],
                "summary": "Attach an uploaded audio file",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large"},
                    "415": {"description": "Unsupported media type"}
                }
            },
            "delete": {
                "tags": ["Media"],
                "summary": "Remove the audio attachment",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wizard/image": {
            "put": {
                "tags": ["Media"],
                "summary": "Attach a photo",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Media"],
                "summary": "Remove the photo attachment",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grievances/{id}": {
            "get": {
                "tags": ["Grievances"],
                "summary": "Get one grievance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/map/provider": {
            "get": {
                "tags": ["Map"],
                "summary": "Get map tile provider configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assistant": {
            "post": {
                "tags": ["Assistant"],
                "summary": "Ask the portal helper",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/complaints": {
            "get": {
                "tags": ["Admin"],
                "summary": "List complaints for review",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/complaints/{id}/assign": {
            "post": {
                "tags": ["Admin"],
                "summary": "Assign a complaint to a department",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/complaints/{id}/status": {
            "post": {
                "tags": ["Admin"],
                "summary": "Update a complaint's lifecycle status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/complaints/export.csv": {
            "get": {
                "tags": ["Admin"],
                "summary": "Stream the backend's raw CSV dump",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/queue": {
            "get": {
                "tags": ["Queue"],
                "summary": "Load the auto-assignment queue",
                "parameters": [
                    {"name": "days", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/queue/selection": {
            "post": {
                "tags": ["Queue"],
                "summary": "Toggle one complaint in the bulk selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/queue/selection/all": {
            "post": {
                "tags": ["Queue"],
                "summary": "Select all pending items, or clear when all are selected",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/queue/{id}/approve": {
            "post": {
                "tags": ["Queue"],
                "summary": "Approve one suggested routing",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/queue/{id}/reject": {
            "post": {
                "tags": ["Queue"],
                "summary": "Reject one suggested routing",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/queue/bulk-approve": {
            "post": {
                "tags": ["Queue"],
                "summary": "Approve the whole current selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty selection"}
                }
            }
        },
        "/admin/exports": {
            "post": {
                "tags": ["Admin"],
                "summary": "Render a complaint summary export",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/exports/{token}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download a rendered export",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/admin/metrics": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get aggregated runtime metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "UpdateDescriptionRequest": {
            "type": "object",
            "required": ["description"],
            "properties": {
                "description": {"type": "string"},
                "safety_hazard": {"type": "boolean"},
                "blocked_access": {"type": "boolean"}
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
                "meta": {"type": "object"}
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
