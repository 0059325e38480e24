package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gradebook API",
        "description": "Grade book aggregation, class statistics and course progression",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Scores", "description": "Grading grid and quick grading"},
        {"name": "Statistics", "description": "Class statistics, leaderboard and dashboard"},
        {"name": "Progression", "description": "Session logging and course completion"},
        {"name": "Exports", "description": "CSV and PDF course reports"},
        {"name": "System", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {"tags": ["System"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "tags": ["System"],
                "summary": "Readiness probe covering the database and cache",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "Degraded"}}
            }
        },
        "/metrics": {
            "get": {"tags": ["System"], "summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/metrics/summary": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated request and cache counters",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/scores": {
            "post": {
                "tags": ["Scores"],
                "summary": "Create or replace a student's score for an evaluation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertScoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved score and refreshed course average", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course or evaluation not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/scores/quick": {
            "post": {
                "tags": ["Scores"],
                "summary": "Grade one evaluation for many students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/QuickGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Batch result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{id}/students/{studentId}/average": {
            "get": {
                "tags": ["Scores"],
                "summary": "Weighted course average for one student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "path", "name": "studentId", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/courses/{id}/statistics": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Class statistics with per-evaluation breakdown",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{id}/evaluations/{evaluationId}/statistics": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Statistics for a single evaluation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "path", "name": "evaluationId", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/courses/{id}/leaderboard": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Ranked course averages",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "limit", "type": "integer", "description": "Top entries to return; defaults to the configured leaderboard size"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/courses/{id}/dashboard": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Summary cards for the course dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/courses/{id}/sessions": {
            "post": {
                "tags": ["Progression"],
                "summary": "Log a taught session and schedule a progression refresh",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/AppendSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{id}/progression": {
            "get": {
                "tags": ["Progression"],
                "summary": "Completed hours against planned hours",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Course has no planned hours", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/{id}/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the course report",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {"200": {"description": "Report file"}, "400": {"description": "Unsupported format"}}
            }
        }
    },
    "definitions": {
        "UpsertScoreRequest": {
            "type": "object",
            "required": ["student_id", "course_id", "evaluation_id", "value"],
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"},
                "evaluation_id": {"type": "string"},
                "value": {"type": "number"},
                "weight": {"type": "number"},
                "comment": {"type": "string"}
            }
        },
        "QuickGradeItem": {
            "type": "object",
            "required": ["student_id", "value"],
            "properties": {
                "student_id": {"type": "string"},
                "value": {"type": "number"},
                "comment": {"type": "string"}
            }
        },
        "QuickGradeRequest": {
            "type": "object",
            "required": ["course_id", "evaluation_id", "items"],
            "properties": {
                "course_id": {"type": "string"},
                "evaluation_id": {"type": "string"},
                "mode": {"type": "string", "enum": ["atomic", "partialOnError"]},
                "items": {"type": "array", "items": {"$ref": "#/definitions/QuickGradeItem"}}
            }
        },
        "AppendSessionRequest": {
            "type": "object",
            "required": ["date", "duration_hours"],
            "properties": {
                "date": {"type": "string", "format": "date"},
                "duration_hours": {"type": "number"},
                "topic": {"type": "string"}
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
