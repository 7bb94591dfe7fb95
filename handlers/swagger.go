package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API documentation endpoints.
// - GET /docs          -> Swagger UI page that loads the OpenAPI JSON
// - GET /openapi.json  -> machine-readable OpenAPI JSON
func RegisterSwagger(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(openAPIJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>MongoDB API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// OpenAPI document for the collection endpoints. Request bodies mirror
// collection.FindRequest, UpdateRequest and DeleteRequest.
const openAPIJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "MongoDB API", "version": "v1.0.0" },
  "components": {
    "securitySchemes": {
      "APIKeyHeader": { "type": "apiKey", "in": "header", "name": "X-API-Key" },
      "APIKeyQuery": { "type": "apiKey", "in": "query", "name": "api_key" },
      "APIKeyCookie": { "type": "apiKey", "in": "cookie", "name": "api_key" }
    },
    "parameters": {
      "collection": { "name": "collection_name", "in": "path", "required": true, "schema": { "type": "string" } }
    },
    "schemas": {
      "Envelope": {
        "type": "object",
        "properties": {
          "status": { "type": "boolean" },
          "message": { "type": "string" },
          "data": { "type": "array", "items": { "type": "object" } }
        }
      },
      "FindRequest": {
        "type": "object",
        "required": ["filter"],
        "properties": {
          "filter": { "type": "object" },
          "projection": { "type": "object", "default": { "_id": 0 } },
          "is_many": { "type": "boolean", "default": false }
        }
      },
      "UpdateRequest": {
        "type": "object",
        "required": ["filter", "update"],
        "properties": {
          "filter": { "type": "object" },
          "update": { "type": "object" },
          "is_many": { "type": "boolean", "default": false }
        }
      },
      "DeleteRequest": {
        "type": "object",
        "required": ["filter"],
        "properties": {
          "filter": { "type": "object" },
          "is_many": { "type": "boolean", "default": false }
        }
      }
    },
    "responses": {
      "Envelope": { "description": "operation result; check status", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Envelope" } } } },
      "Forbidden": { "description": "missing or invalid API key", "content": { "application/json": { "schema": { "type": "object", "properties": { "detail": { "type": "string" } } } } } }
    }
  },
  "security": [ { "APIKeyHeader": [] }, { "APIKeyQuery": [] }, { "APIKeyCookie": [] } ],
  "paths": {
    "/{collection_name}/find": {
      "post": {
        "summary": "Find one or many documents",
        "parameters": [ { "$ref": "#/components/parameters/collection" } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/FindRequest" } } } },
        "responses": { "200": { "$ref": "#/components/responses/Envelope" }, "403": { "$ref": "#/components/responses/Forbidden" } }
      }
    },
    "/{collection_name}/insert": {
      "post": {
        "summary": "Insert a document or an array of documents",
        "parameters": [ { "$ref": "#/components/parameters/collection" } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "oneOf": [ { "type": "object" }, { "type": "array", "items": { "type": "object" } } ] } } } },
        "responses": { "200": { "$ref": "#/components/responses/Envelope" }, "403": { "$ref": "#/components/responses/Forbidden" } }
      }
    },
    "/{collection_name}/update": {
      "post": {
        "summary": "Update one or many documents with $set",
        "parameters": [ { "$ref": "#/components/parameters/collection" } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/UpdateRequest" } } } },
        "responses": { "200": { "$ref": "#/components/responses/Envelope" }, "403": { "$ref": "#/components/responses/Forbidden" } }
      }
    },
    "/{collection_name}/find_one_and_update": {
      "post": {
        "summary": "Alias of /update",
        "parameters": [ { "$ref": "#/components/parameters/collection" } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/UpdateRequest" } } } },
        "responses": { "200": { "$ref": "#/components/responses/Envelope" }, "403": { "$ref": "#/components/responses/Forbidden" } }
      }
    },
    "/{collection_name}/delete": {
      "post": {
        "summary": "Delete one or many documents",
        "parameters": [ { "$ref": "#/components/parameters/collection" } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/DeleteRequest" } } } },
        "responses": { "200": { "$ref": "#/components/responses/Envelope" }, "403": { "$ref": "#/components/responses/Forbidden" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "security": [], "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "security": [], "responses": { "200": { "description": "ready" }, "503": { "description": "store unreachable" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "security": [], "responses": { "200": { "description": "metrics" } } } }
  }
}`
