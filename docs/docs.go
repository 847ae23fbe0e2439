package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Legal Queries Backend",
    "description": "Assignment of legal queries to lawyers by eligibility and weighted load",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/api/import": {
      "post": {
        "tags": ["import"],
        "summary": "Import queries",
        "consumes": ["multipart/form-data"],
        "produces": ["application/json"],
        "parameters": [
          {"type": "file", "name": "queries", "in": "formData", "required": true, "description": "queries.csv"}
        ],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
      }
    },
    "/api/reassign": {
      "post": {
        "tags": ["process"],
        "summary": "Reassign stored queries",
        "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}, "409": {"description": "No queries loaded"}}
      }
    },
    "/api/runs/latest": {
      "get": {
        "tags": ["process"],
        "summary": "Latest run",
        "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
      }
    },
    "/api/queries/{id}/status": {
      "patch": {
        "tags": ["queries"],
        "summary": "Update query status",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"type": "string", "name": "id", "in": "path", "required": true}
        ],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
      }
    },
    "/api/lawyers/{id}": {
      "patch": {
        "tags": ["lawyers"],
        "summary": "Update lawyer availability",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"type": "string", "name": "id", "in": "path", "required": true}
        ],
        "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
      }
    },
    "/api/lawyers/{id}/notify": {
      "post": {
        "tags": ["lawyers"],
        "summary": "Notify lawyer",
        "produces": ["application/json"],
        "parameters": [
          {"type": "string", "name": "id", "in": "path", "required": true}
        ],
        "responses": {"200": {"description": "OK"}, "502": {"description": "Notification failed"}}
      }
    },
    "/api/debug/eligibility": {
      "get": {
        "tags": ["debug"],
        "summary": "Debug eligibility",
        "produces": ["application/json"],
        "parameters": [
          {"type": "string", "name": "query_id", "in": "query", "required": true}
        ],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
