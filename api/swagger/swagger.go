package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "College Notes API",
        "description": "Shared notes, past question papers and campus events with moderation.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Registration and sign-in"},
        {"name": "Users", "description": "Profiles, preferences and account administration"},
        {"name": "Notes", "description": "Lecture notes"},
        {"name": "Question Papers", "description": "Past exam papers"},
        {"name": "Courses", "description": "Course catalogue"},
        {"name": "Events", "description": "Campus events"},
        {"name": "Files", "description": "Signed file links for local storage"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Current profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "patch": {
                "tags": ["Users"],
                "summary": "Update profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/users/me/preferences": {
            "patch": {
                "tags": ["Users"],
                "summary": "Replace notification preferences",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreferencesRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List accounts (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string", "enum": ["student", "teacher", "admin"]},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sortBy", "in": "query", "type": "string"},
                    {"name": "sortOrder", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/users/{id}/role": {
            "patch": {
                "tags": ["Users"],
                "summary": "Change role (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetRoleRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/users/{id}/active": {
            "patch": {
                "tags": ["Users"],
                "summary": "Activate or deactivate an account (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetActiveRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/notes": {
            "get": {
                "tags": ["Notes"],
                "summary": "List approved notes",
                "parameters": [
                    {"$ref": "#/parameters/department"},
                    {"$ref": "#/parameters/semester"},
                    {"$ref": "#/parameters/subject"},
                    {"$ref": "#/parameters/tags"},
                    {"$ref": "#/parameters/search"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"},
                    {"$ref": "#/parameters/contentSortBy"},
                    {"$ref": "#/parameters/sortOrder"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {
                "tags": ["Notes"],
                "summary": "Submit a note",
                "description": "Student submissions wait for moderation. Teacher and admin submissions are published immediately.",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"$ref": "#/parameters/title"},
                    {"$ref": "#/parameters/description"},
                    {"$ref": "#/parameters/formSubject"},
                    {"$ref": "#/parameters/formDepartment"},
                    {"$ref": "#/parameters/formSemester"},
                    {"$ref": "#/parameters/formTags"},
                    {"$ref": "#/parameters/visibility"},
                    {"$ref": "#/parameters/file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Envelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/notes/mine": {
            "get": {
                "tags": ["Notes"],
                "summary": "The caller's own notes in every status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/status"}, {"$ref": "#/parameters/page"}, {"$ref": "#/parameters/limit"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/notes/report": {
            "get": {
                "tags": ["Notes"],
                "summary": "Export notes (admin)",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"$ref": "#/parameters/format"}, {"$ref": "#/parameters/status"}, {"$ref": "#/parameters/department"}],
                "responses": {"200": {"description": "Report file"}}
            }
        },
        "/notes/{id}": {
            "get": {
                "tags": ["Notes"],
                "summary": "Note detail",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "delete": {
                "tags": ["Notes"],
                "summary": "Delete a note (uploader or admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/notes/{id}/approve": {
            "patch": {
                "tags": ["Notes"],
                "summary": "Approve or reject a pending note (teacher, admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModerationRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/notes/{id}/download": {
            "get": {
                "tags": ["Notes"],
                "summary": "Download the attached file",
                "produces": ["application/octet-stream"],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "File content"}}
            }
        },
        "/notes/{id}/like": {
            "post": {
                "tags": ["Notes"],
                "summary": "Toggle the caller's like",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/notes/{id}/comment": {
            "post": {
                "tags": ["Notes"],
                "summary": "Add a comment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommentRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/notes/{id}/comment/{commentId}": {
            "delete": {
                "tags": ["Notes"],
                "summary": "Delete a comment (author or admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/id"},
                    {"name": "commentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/question-papers": {
            "get": {
                "tags": ["Question Papers"],
                "summary": "List approved question papers",
                "parameters": [
                    {"$ref": "#/parameters/department"},
                    {"$ref": "#/parameters/semester"},
                    {"$ref": "#/parameters/subject"},
                    {"name": "examType", "in": "query", "type": "string", "enum": ["midterm", "final", "quiz", "assignment", "practical"]},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"$ref": "#/parameters/tags"},
                    {"$ref": "#/parameters/search"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"},
                    {"$ref": "#/parameters/contentSortBy"},
                    {"$ref": "#/parameters/sortOrder"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {
                "tags": ["Question Papers"],
                "summary": "Submit a question paper",
                "description": "Exam type and year are required. The same moderation rules as notes apply.",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"$ref": "#/parameters/title"},
                    {"$ref": "#/parameters/description"},
                    {"$ref": "#/parameters/formSubject"},
                    {"$ref": "#/parameters/formDepartment"},
                    {"$ref": "#/parameters/formSemester"},
                    {"name": "examType", "in": "formData", "required": true, "type": "string"},
                    {"name": "year", "in": "formData", "required": true, "type": "integer"},
                    {"$ref": "#/parameters/formTags"},
                    {"$ref": "#/parameters/visibility"},
                    {"$ref": "#/parameters/file"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/question-papers/{id}": {
            "get": {
                "tags": ["Question Papers"],
                "summary": "Question paper detail",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "delete": {
                "tags": ["Question Papers"],
                "summary": "Delete a question paper (uploader or admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/question-papers/{id}/approve": {
            "patch": {
                "tags": ["Question Papers"],
                "summary": "Approve or reject a pending question paper (teacher, admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModerationRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/question-papers/{id}/download": {
            "get": {
                "tags": ["Question Papers"],
                "summary": "Download the attached file",
                "produces": ["application/octet-stream"],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "File content"}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"$ref": "#/parameters/department"},
                    {"$ref": "#/parameters/semester"},
                    {"$ref": "#/parameters/search"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "409": {"description": "Duplicate code", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course detail",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update a course (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete a course (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events",
                "parameters": [
                    {"$ref": "#/parameters/department"},
                    {"name": "upcoming", "in": "query", "type": "boolean"},
                    {"$ref": "#/parameters/search"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create an event (teacher, admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}}}
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Event detail",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "put": {
                "tags": ["Events"],
                "summary": "Update an event (creator or admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}}
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete an event (creator or admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/files/{token}": {
            "get": {
                "tags": ["Files"],
                "summary": "Fetch a stored file through a signed link",
                "produces": ["application/octet-stream"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "File content"},
                    "401": {"description": "Link expired"},
                    "404": {"description": "Unknown link"}
                }
            }
        }
    },
    "parameters": {
        "id": {"name": "id", "in": "path", "required": true, "type": "string"},
        "page": {"name": "page", "in": "query", "type": "integer", "default": 1},
        "limit": {"name": "limit", "in": "query", "type": "integer", "default": 10, "maximum": 50},
        "department": {"name": "department", "in": "query", "type": "string"},
        "semester": {"name": "semester", "in": "query", "type": "integer", "minimum": 1, "maximum": 8},
        "subject": {"name": "subject", "in": "query", "type": "string"},
        "tags": {"name": "tags", "in": "query", "type": "string", "description": "Comma separated, all must match"},
        "search": {"name": "search", "in": "query", "type": "string"},
        "status": {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved", "rejected"]},
        "format": {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
        "contentSortBy": {"name": "sortBy", "in": "query", "type": "string", "enum": ["createdAt", "title", "downloads", "semester", "examYear"]},
        "sortOrder": {"name": "sortOrder", "in": "query", "type": "string", "enum": ["asc", "desc"]},
        "title": {"name": "title", "in": "formData", "required": true, "type": "string"},
        "description": {"name": "description", "in": "formData", "type": "string"},
        "formSubject": {"name": "subject", "in": "formData", "required": true, "type": "string"},
        "formDepartment": {"name": "department", "in": "formData", "required": true, "type": "string"},
        "formSemester": {"name": "semester", "in": "formData", "required": true, "type": "integer"},
        "formTags": {"name": "tags", "in": "formData", "type": "string", "description": "Comma separated"},
        "visibility": {"name": "visibility", "in": "formData", "type": "string", "enum": ["public", "department", "private"]},
        "file": {"name": "file", "in": "formData", "type": "file"}
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "fullName": {"type": "string"},
                "department": {"type": "string"},
                "semester": {"type": "integer"}
            },
            "required": ["email", "password", "fullName", "department"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "department": {"type": "string"},
                "semester": {"type": "integer"}
            },
            "required": ["fullName", "department"]
        },
        "PreferencesRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "boolean"},
                "questionPapers": {"type": "boolean"},
                "events": {"type": "boolean"}
            }
        },
        "SetRoleRequest": {
            "type": "object",
            "properties": {"role": {"type": "string", "enum": ["student", "teacher", "admin"]}},
            "required": ["role"]
        },
        "SetActiveRequest": {
            "type": "object",
            "properties": {"active": {"type": "boolean"}},
            "required": ["active"]
        },
        "ModerationRequest": {
            "type": "object",
            "properties": {
                "approved": {"type": "boolean"},
                "rejectionReason": {"type": "string"}
            },
            "required": ["approved"]
        },
        "CommentRequest": {
            "type": "object",
            "properties": {"text": {"type": "string", "maxLength": 500}},
            "required": ["text"]
        },
        "CourseRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "title": {"type": "string"},
                "department": {"type": "string"},
                "semester": {"type": "integer"},
                "credits": {"type": "integer"},
                "description": {"type": "string"}
            },
            "required": ["code", "title", "department", "semester"]
        },
        "EventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "department": {"type": "string"},
                "location": {"type": "string"},
                "startsAt": {"type": "string", "format": "date-time"},
                "endsAt": {"type": "string", "format": "date-time"}
            },
            "required": ["title", "department", "startsAt", "endsAt"]
        },
        "FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "current": {"type": "integer"},
                "pages": {"type": "integer"},
                "total": {"type": "integer"},
                "hasNext": {"type": "boolean"},
                "hasPrev": {"type": "boolean"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "code": {"type": "string"},
                "data": {"type": "object"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/FieldError"}},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
