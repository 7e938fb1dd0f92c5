package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>knowledge-copilot — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the main endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "knowledge-copilot-backend", "version": "v0.1.0" },
  "paths": {
    "/auth/register": {
      "post": { "summary": "Create an account", "responses": { "201": { "description": "user and token" }, "409": { "description": "email taken" } } }
    },
    "/auth/login": {
      "post": { "summary": "Login with email and password", "responses": { "200": { "description": "user and token" }, "401": { "description": "invalid credentials" } } }
    },
    "/auth/me": {
      "get": { "summary": "Get the current user", "responses": { "200": { "description": "user" } } }
    },
    "/users/profile": {
      "get": { "summary": "Get profile", "responses": { "200": { "description": "user" } } },
      "patch": { "summary": "Update profile fields", "responses": { "200": { "description": "user" } } }
    },
    "/workspaces": {
      "get": { "summary": "List workspaces for the caller", "responses": { "200": { "description": "workspaces" } } },
      "post": { "summary": "Create a workspace", "responses": { "201": { "description": "workspace" } } }
    },
    "/workspaces/{workspaceId}/members": {
      "post": { "summary": "Invite a member (admin only)", "responses": { "200": { "description": "workspace" }, "403": { "description": "forbidden" }, "409": { "description": "already a member" } } }
    },
    "/workspaces/{workspaceId}/members/{userId}": {
      "delete": { "summary": "Remove a member (admin only)", "responses": { "200": { "description": "workspace" }, "409": { "description": "last admin protected" } } },
      "patch": { "summary": "Change a member role (admin only)", "responses": { "200": { "description": "workspace" }, "409": { "description": "last admin protected" } } }
    },
    "/workspaces/{workspaceId}/documents/upload": {
      "post": { "summary": "Upload a document (members)", "responses": { "201": { "description": "document" }, "413": { "description": "file too large" } } }
    },
    "/workspaces/{workspaceId}/documents": {
      "get": { "summary": "List workspace documents (members)", "responses": { "200": { "description": "documents page" }, "403": { "description": "forbidden" } } }
    },
    "/documents/{documentId}": {
      "get": { "summary": "Get a document (members)", "responses": { "200": { "description": "document" }, "403": { "description": "forbidden" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a document and its file (members)", "responses": { "204": { "description": "deleted" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
