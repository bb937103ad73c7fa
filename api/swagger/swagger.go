package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus ERP API",
        "description": "Administration API for college admissions, student records, examinations, fees, library circulation and hostels.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Login, token refresh and account management"},
        {"name": "Admissions", "description": "Application intake and review workflow"},
        {"name": "Students", "description": "Student records and academic views"},
        {"name": "Courses", "description": "Programme catalogue and seat management"},
        {"name": "Staff", "description": "Staff roster administration"},
        {"name": "Examinations", "description": "Exam results, GPA and marksheets"},
        {"name": "Fees", "description": "Fee demands, collection and receipts"},
        {"name": "Library", "description": "Catalogue and circulation"},
        {"name": "Hostels", "description": "Hostel inventory and allocations"},
        {"name": "Dashboard", "description": "Role-shaped summaries and charts"},
        {"name": "Reports", "description": "Asynchronous report generation"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a staff member, student or applicant",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens rotated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Refresh token expired or revoked"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the presented refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Logged out"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change the caller's password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "Password changed"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated principal",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/eligibility": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Pre-check eligibility without submitting",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EligibilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "Eligibility report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/applications": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Submit an admission application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Application registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A pending application already exists for this email"},
                    "412": {"description": "Eligibility criteria not met"}
                }
            },
            "get": {
                "tags": ["Admissions"],
                "summary": "List applications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/applications/{id}": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Get one application; applicants can read their own",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/admissions/applications/{id}/approve": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Approve an application and provision the student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/RemarksRequest"}}
                ],
                "responses": {
                    "200": {"description": "Approved; roll number and temporary password issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already processed or no seats available"}
                }
            }
        },
        "/admissions/applications/{id}/decline": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Decline an application",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeclineRequest"}}
                ],
                "responses": {
                    "200": {"description": "Declined", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/applications/{id}/request-documents": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Ask the applicant for missing documents",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestDocumentsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Documents requested", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/applications/{id}/waitlist": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Move an application to the waitlist",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/RemarksRequest"}}
                ],
                "responses": {
                    "200": {"description": "Waitlisted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/applications/{id}/review": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Mark an application as under review",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Under review", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/applications/{id}/verify-document": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Record a document verification outcome",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Verification recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admissions/statistics": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Application counts, conversion rate and recent volume",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student directly",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate email or no seats"}
                }
            }
        },
        "/students/{rollNo}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student; students can read their own record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update contact and guardian details",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Deactivate a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deactivated"}
                }
            }
        },
        "/students/{rollNo}/promote": {
            "post": {
                "tags": ["Students"],
                "summary": "Promote a student to the next semester",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Promoted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already in the final semester"}
                }
            }
        },
        "/students/{rollNo}/results": {
            "get": {
                "tags": ["Examinations"],
                "summary": "List a student's exam results",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "academicYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{rollNo}/sgpa": {
            "get": {
                "tags": ["Examinations"],
                "summary": "Semester GPA for a declared semester",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{rollNo}/cgpa": {
            "get": {
                "tags": ["Examinations"],
                "summary": "Cumulative GPA across declared semesters",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{rollNo}/academic-record": {
            "get": {
                "tags": ["Examinations"],
                "summary": "Semester-wise academic record with CGPA",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{rollNo}/marksheet": {
            "get": {
                "tags": ["Examinations"],
                "summary": "Semester marksheet as JSON or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json", "application/pdf"],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Marksheet"}
                }
            }
        },
        "/students/{rollNo}/fees": {
            "get": {
                "tags": ["Fees"],
                "summary": "Fee summary for one student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{rollNo}/library": {
            "get": {
                "tags": ["Library"],
                "summary": "Borrowing history for one student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List programmes; public for the admission portal",
                "parameters": [
                    {"name": "level", "in": "query", "type": "string"},
                    {"name": "accepting", "in": "query", "type": "boolean"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a programme",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Course code already in use"}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get one programme with seat availability",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update a programme",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/accepting": {
            "patch": {
                "tags": ["Courses"],
                "summary": "Open or close applications for a programme",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AcceptingRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff": {
            "get": {
                "tags": ["Staff"],
                "summary": "List staff members",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Staff"],
                "summary": "Create a staff member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStaffRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already in use"}
                }
            }
        },
        "/staff/{id}": {
            "get": {
                "tags": ["Staff"],
                "summary": "Get a staff member by employee ID",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Staff"],
                "summary": "Update a staff member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStaffRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{id}/reset-password": {
            "post": {
                "tags": ["Staff"],
                "summary": "Issue a temporary password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Temporary password issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/examinations/results": {
            "post": {
                "tags": ["Examinations"],
                "summary": "Register an exam result entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExamResultRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Result already exists for this subject and exam"}
                }
            },
            "get": {
                "tags": ["Examinations"],
                "summary": "List exam results",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "examType", "in": "query", "type": "string"},
                    {"name": "declared", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/examinations/results/{id}": {
            "get": {
                "tags": ["Examinations"],
                "summary": "Get one exam result",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Examinations"],
                "summary": "Correct a declared result",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeclareResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/examinations/results/{id}/percentage": {
            "get": {
                "tags": ["Examinations"],
                "summary": "Percentage and grade for one result",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/examinations/results/{id}/declare": {
            "post": {
                "tags": ["Examinations"],
                "summary": "Declare marks for a result",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeclareResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "Declared", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/examinations/class-performance": {
            "get": {
                "tags": ["Examinations"],
                "summary": "Aggregate performance of a course semester",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "courseId", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"},
                    {"name": "examType", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/demands": {
            "post": {
                "tags": ["Fees"],
                "summary": "Raise fee demands for a course semester cohort",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateDemandsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Demand run finished", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees": {
            "get": {
                "tags": ["Fees"],
                "summary": "List fee records",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{id}": {
            "get": {
                "tags": ["Fees"],
                "summary": "Get one fee record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/fees/{id}/payments": {
            "post": {
                "tags": ["Fees"],
                "summary": "Record an over-the-counter payment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Paid; receipt number assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Demand is not payable"}
                }
            }
        },
        "/fees/{id}/checkout": {
            "post": {
                "tags": ["Fees"],
                "summary": "Open a hosted online payment page",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Checkout session created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Online payments are not enabled"}
                }
            }
        },
        "/fees/{id}/confirm-payment": {
            "post": {
                "tags": ["Fees"],
                "summary": "Settle a demand after a successful online charge",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Paid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{id}/cancel": {
            "post": {
                "tags": ["Fees"],
                "summary": "Cancel a recorded payment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CancelFeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{id}/discount": {
            "post": {
                "tags": ["Fees"],
                "summary": "Apply a discount to a pending demand",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyDiscountRequest"}}
                ],
                "responses": {
                    "200": {"description": "Discount applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{id}/receipt": {
            "get": {
                "tags": ["Fees"],
                "summary": "Download the payment receipt as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Receipt PDF"},
                    "409": {"description": "Demand is not settled"}
                }
            }
        },
        "/fees/statistics": {
            "get": {
                "tags": ["Fees"],
                "summary": "Collection totals, rates and breakdowns",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "academicYear", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/library/books": {
            "get": {
                "tags": ["Library"],
                "summary": "Browse the catalogue",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "available", "in": "query", "type": "boolean"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Library"],
                "summary": "Add a catalogue entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/library/books/{id}": {
            "get": {
                "tags": ["Library"],
                "summary": "Get one book",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Library"],
                "summary": "Update a catalogue entry",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/library/issues": {
            "post": {
                "tags": ["Library"],
                "summary": "Issue a copy to a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IssueBookRequest"}}
                ],
                "responses": {
                    "201": {"description": "Issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No copies available or limits reached"}
                }
            },
            "get": {
                "tags": ["Library"],
                "summary": "List circulation records",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "bookId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "overdue", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/library/issues/{id}/renew": {
            "post": {
                "tags": ["Library"],
                "summary": "Renew an active issue",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Renewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Renewal limit reached or issue overdue"}
                }
            }
        },
        "/library/issues/{id}/return": {
            "post": {
                "tags": ["Library"],
                "summary": "Return a copy; late returns raise a fine demand",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Returned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/library/overdues": {
            "get": {
                "tags": ["Library"],
                "summary": "List overdue issues",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/library/statistics": {
            "get": {
                "tags": ["Library"],
                "summary": "Catalogue and circulation statistics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/hostels": {
            "get": {
                "tags": ["Hostels"],
                "summary": "List hostels",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Hostels"],
                "summary": "Create a hostel",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateHostelRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/hostels/{id}": {
            "get": {
                "tags": ["Hostels"],
                "summary": "Get one hostel",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Hostels"],
                "summary": "Update a hostel",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateHostelRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/hostels/allocations": {
            "post": {
                "tags": ["Hostels"],
                "summary": "Allocate a room to a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Allocated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Hostel full or student already allocated"}
                }
            }
        },
        "/hostels/allocations/{rollNo}": {
            "delete": {
                "tags": ["Hostels"],
                "summary": "Vacate a student's room",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "rollNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Vacated"}
                }
            }
        },
        "/hostels/occupancy": {
            "get": {
                "tags": ["Hostels"],
                "summary": "Occupancy percentages per hostel",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/admin": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Institution-wide snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/staff": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Working-queue snapshot for staff",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/student": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Personal snapshot for the signed-in student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/charts/enrollment": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Monthly application volume for an academic year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/charts/fees": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Monthly fee collection for an academic year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report generation job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Job accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Job status with a signed download URL when finished",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Job belongs to another principal"}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Stream a finished report via its signed token",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "410": {"description": "Link expired"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "identifier": {"type": "string", "description": "Email, roll number, employee ID or application ID"},
                "password": {"type": "string"}
            },
            "required": ["identifier", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string", "minLength": 6}
            },
            "required": ["old_password", "new_password"]
        },
        "EligibilityRequest": {
            "type": "object",
            "properties": {
                "date_of_birth": {"type": "string", "format": "date-time"},
                "tenth_percentage": {"type": "number"},
                "twelfth_percentage": {"type": "number"}
            },
            "required": ["date_of_birth", "tenth_percentage"]
        },
        "SubmitApplicationRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "date_of_birth": {"type": "string", "format": "date-time"},
                "gender": {"type": "string", "enum": ["male", "female", "other"]},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address_line": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "pincode": {"type": "string"},
                "guardian_name": {"type": "string"},
                "guardian_phone": {"type": "string"},
                "guardian_relation": {"type": "string"},
                "course_id": {"type": "string"},
                "tenth_percentage": {"type": "number"},
                "twelfth_percentage": {"type": "number"},
                "entrance_exam_score": {"type": "number"},
                "documents": {"type": "array", "items": {"type": "string"}},
                "password": {"type": "string", "minLength": 6}
            },
            "required": ["first_name", "last_name", "date_of_birth", "gender", "email", "phone", "address_line", "city", "state", "pincode", "guardian_name", "guardian_phone", "guardian_relation", "course_id", "tenth_percentage", "password"]
        },
        "RemarksRequest": {
            "type": "object",
            "properties": {
                "remarks": {"type": "string"}
            }
        },
        "DeclineRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "RequestDocumentsRequest": {
            "type": "object",
            "properties": {
                "documents": {"type": "array", "items": {"type": "string"}},
                "remarks": {"type": "string"}
            },
            "required": ["documents"]
        },
        "VerifyDocumentRequest": {
            "type": "object",
            "properties": {
                "document": {"type": "string"},
                "verified": {"type": "boolean"}
            },
            "required": ["document"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "date_of_birth": {"type": "string", "format": "date-time"},
                "gender": {"type": "string", "enum": ["male", "female", "other"]},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address_line": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "pincode": {"type": "string"},
                "guardian_name": {"type": "string"},
                "guardian_phone": {"type": "string"},
                "course_id": {"type": "string"},
                "admission_year": {"type": "integer"},
                "password": {"type": "string", "minLength": 6}
            },
            "required": ["first_name", "last_name", "date_of_birth", "gender", "email", "phone", "address_line", "city", "state", "pincode", "guardian_name", "guardian_phone", "course_id", "password"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address_line": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "pincode": {"type": "string"},
                "guardian_name": {"type": "string"},
                "guardian_phone": {"type": "string"}
            },
            "required": ["email", "phone", "address_line", "city", "state", "pincode", "guardian_name", "guardian_phone"]
        },
        "CreateCourseRequest": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string", "maxLength": 6},
                "course_name": {"type": "string"},
                "degree_name": {"type": "string"},
                "program_level": {"type": "string", "enum": ["undergraduate", "postgraduate", "diploma"]},
                "duration_years": {"type": "integer"},
                "fees_per_semester": {"type": "number"},
                "total_seats": {"type": "integer"},
                "accepting_applications": {"type": "boolean"},
                "active": {"type": "boolean"}
            },
            "required": ["course_name", "degree_name", "program_level", "duration_years", "total_seats"]
        },
        "AcceptingRequest": {
            "type": "object",
            "properties": {
                "accepting": {"type": "boolean"}
            },
            "required": ["accepting"]
        },
        "CreateStaffRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "staff", "faculty"]},
                "department": {"type": "string"},
                "designation": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            },
            "required": ["first_name", "last_name", "email", "phone", "role", "department", "designation", "password"]
        },
        "UpdateStaffRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "staff", "faculty"]},
                "department": {"type": "string"},
                "designation": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["first_name", "last_name", "email", "phone", "role", "department", "designation"]
        },
        "CreateExamResultRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "subject_name": {"type": "string"},
                "subject_code": {"type": "string"},
                "semester": {"type": "integer"},
                "academic_year": {"type": "string"},
                "exam_type": {"type": "string", "enum": ["internal", "semester", "final", "supplementary"]},
                "exam_date": {"type": "string", "format": "date-time"},
                "max_marks": {"type": "number"}
            },
            "required": ["student_id", "subject_name", "subject_code", "semester", "academic_year", "exam_type", "max_marks"]
        },
        "DeclareResultRequest": {
            "type": "object",
            "properties": {
                "marks_obtained": {"type": "number"},
                "internal_marks": {"type": "number"},
                "external_marks": {"type": "number"},
                "is_absent": {"type": "boolean"},
                "has_malpractice": {"type": "boolean"},
                "remarks": {"type": "string"}
            }
        },
        "GenerateDemandsRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "semester": {"type": "integer"},
                "academic_year": {"type": "string"},
                "fee_type": {"type": "string", "enum": ["tuition", "hostel", "library", "laboratory", "exam", "miscellaneous"]},
                "amount": {"type": "number", "description": "Zero falls back to the course's per-semester fee"},
                "due_in_days": {"type": "integer", "description": "Payment window in days, default 30"}
            },
            "required": ["course_id", "semester", "academic_year", "fee_type"]
        },
        "RecordPaymentRequest": {
            "type": "object",
            "properties": {
                "payment_method": {"type": "string", "enum": ["cash", "online", "bank_transfer", "cheque", "demand_draft"]},
                "transaction_ref": {"type": "string"},
                "remarks": {"type": "string"}
            },
            "required": ["payment_method"]
        },
        "ConfirmPaymentRequest": {
            "type": "object",
            "properties": {
                "transaction_ref": {"type": "string"}
            },
            "required": ["transaction_ref"]
        },
        "CancelFeeRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "ApplyDiscountRequest": {
            "type": "object",
            "properties": {
                "discount": {"type": "number"},
                "reason": {"type": "string"}
            },
            "required": ["discount", "reason"]
        },
        "CreateBookRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "category": {"type": "string"},
                "publisher": {"type": "string"},
                "total_copies": {"type": "integer"},
                "shelf_location": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["title", "author", "category", "total_copies"]
        },
        "IssueBookRequest": {
            "type": "object",
            "properties": {
                "book_id": {"type": "string"},
                "student_id": {"type": "string"}
            },
            "required": ["book_id", "student_id"]
        },
        "CreateHostelRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["boys", "girls"]},
                "warden_name": {"type": "string"},
                "contact_phone": {"type": "string"},
                "total_rooms": {"type": "integer"},
                "beds_per_room": {"type": "integer"}
            },
            "required": ["name", "type", "warden_name", "contact_phone", "total_rooms", "beds_per_room"]
        },
        "AllocateRequest": {
            "type": "object",
            "properties": {
                "hostel_id": {"type": "string"},
                "student_id": {"type": "string"},
                "room": {"type": "string"}
            },
            "required": ["hostel_id", "student_id", "room"]
        },
        "GenerateReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["class_results", "admission_register", "fee_collection", "library_circulation"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "course_id": {"type": "string"},
                "semester": {"type": "integer"},
                "academic_year": {"type": "string"},
                "year": {"type": "integer"},
                "from_date": {"type": "string", "format": "date-time"},
                "to_date": {"type": "string", "format": "date-time"}
            },
            "required": ["type", "format"]
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
