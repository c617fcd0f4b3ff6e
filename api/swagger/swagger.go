package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Batch Scheduler API",
        "description": "Trainer assignment, conflict detection and end-date projection for training batches",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Scheduling", "description": "Batch schedule generation and maintenance"},
        {"name": "Calendar", "description": "Working-day arithmetic over the holiday calendar"},
        {"name": "Observability", "description": "Health and metrics"}
    ],
    "paths": {
        "/batches/{id}/schedule": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Get the stored schedule of a batch",
                "parameters": [{"$ref": "#/parameters/BatchID"}],
                "responses": {
                    "200": {"description": "Schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/schedule/generate": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Generate the schedule of a batch",
                "parameters": [{"$ref": "#/parameters/BatchID"}],
                "responses": {
                    "200": {"description": "Generated schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch or course not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Batch has no start date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/schedule/jobs": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Queue background generation of a batch schedule",
                "parameters": [{"$ref": "#/parameters/BatchID"}],
                "responses": {
                    "202": {"description": "Job queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A job for the batch is already pending", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/jobs/{jobId}": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Get the status of a generation job",
                "parameters": [{"name": "jobId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Job status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/schedule/optimize": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Fill unassigned sessions of a stored schedule",
                "parameters": [{"$ref": "#/parameters/BatchID"}],
                "responses": {
                    "200": {"description": "Optimised schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Schedule not generated yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/schedule/conflicts": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Detect leave and double-booking conflicts",
                "parameters": [
                    {"$ref": "#/parameters/BatchID"},
                    {"name": "persist", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Conflict report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/schedule/summary": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Summarise a batch schedule",
                "parameters": [{"$ref": "#/parameters/BatchID"}],
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/schedule/export": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Download a batch schedule",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"$ref": "#/parameters/BatchID"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Export file", "schema": {"type": "file"}}
                }
            }
        },
        "/batches/end-date": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Project the end date of a batch",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EndDateRequest"}}],
                "responses": {
                    "200": {"description": "End date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/end-date": {
            "put": {
                "tags": ["Scheduling"],
                "summary": "Compute and store the end date of a batch",
                "parameters": [{"$ref": "#/parameters/BatchID"}],
                "responses": {
                    "200": {"description": "Stored end date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/business-days": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Offset a date by business days",
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "days", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Result date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/working-days": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List upcoming working days for a cadence",
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "count", "in": "query", "required": true, "type": "integer"},
                    {"name": "cadence", "in": "query", "type": "string", "enum": ["weekday", "weekend"]}
                ],
                "responses": {
                    "200": {"description": "Dates", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "JSON summary of process counters",
                "responses": {
                    "200": {"description": "Snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "BatchID": {"name": "id", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "EndDateRequest": {
            "type": "object",
            "required": ["start_date", "course_id"],
            "properties": {
                "start_date": {"type": "string", "format": "date"},
                "course_id": {"type": "string"},
                "cadence": {"type": "string", "enum": ["weekday", "weekend"]}
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
