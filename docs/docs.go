// Package docs registers the OpenAPI description served at /api/swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "Create a local account", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Duplicate"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in with username or email", "responses": {"200": {"description": "Token issued"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Revoke the current token", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "Revoked"}}}},
        "/auth/facebook": {"post": {"tags": ["auth"], "summary": "Log in with a Facebook access token", "responses": {"200": {"description": "Token issued"}, "401": {"description": "Token rejected"}}}},
        "/users": {"get": {"tags": ["users"], "summary": "List users", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/me": {
            "get": {"tags": ["users"], "summary": "Current profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["users"], "summary": "Update names and nickname", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/users/me/image": {"post": {"tags": ["users"], "summary": "Upload profile image", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/{id}": {"get": {"tags": ["users"], "summary": "Profile with follow stats", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/users/{id}/follow": {
            "post": {"tags": ["follow"], "summary": "Follow a user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["follow"], "summary": "Unfollow a user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/users/{id}/follow/toggle": {"post": {"tags": ["follow"], "summary": "Toggle following", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/following": {"get": {"tags": ["follow"], "summary": "Users this user follows", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/followers": {"get": {"tags": ["follow"], "summary": "Users following this user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/follow-status": {"get": {"tags": ["follow"], "summary": "Relation between caller and user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/posts": {
            "get": {"tags": ["posts"], "summary": "List posts", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["posts"], "summary": "Create a post from a photo upload", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/posts/{id}": {
            "get": {"tags": ["posts"], "summary": "Post with comments", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["posts"], "summary": "Edit caption", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not the author"}}},
            "delete": {"tags": ["posts"], "summary": "Delete post", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "Deleted"}, "403": {"description": "Not the author"}}}
        },
        "/posts/{id}/comments": {
            "get": {"tags": ["comments"], "summary": "List comments", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["comments"], "summary": "Create comment and redirect", "security": [{"BearerAuth": []}], "responses": {"303": {"description": "Redirect to next or the post"}}}
        },
        "/comments/{commentId}/modify": {
            "get": {"tags": ["comments"], "summary": "Pre-filled comment form", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not the owner"}}},
            "post": {"tags": ["comments"], "summary": "Modify comment and redirect", "security": [{"BearerAuth": []}], "responses": {"303": {"description": "Redirect"}, "400": {"description": "Invalid form"}}}
        },
        "/comments/{commentId}/delete": {"post": {"tags": ["comments"], "summary": "Delete comment and redirect to its post", "security": [{"BearerAuth": []}], "responses": {"303": {"description": "Redirect"}}}},
        "/feed": {"get": {"tags": ["posts"], "summary": "Posts by followed users", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/messages": {"get": {"tags": ["messages"], "summary": "Pop pending flash messages", "responses": {"200": {"description": "OK"}}}},
        "/feature-flags": {"get": {"tags": ["flags"], "summary": "Feature flags for the caller", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/ws": {"get": {"tags": ["realtime"], "summary": "Notification websocket", "parameters": [{"name": "token", "in": "query", "type": "string"}], "responses": {"101": {"description": "Switching protocols"}, "404": {"description": "Live notifications disabled"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Photogram API",
	Description:      "Photo sharing with follows, posts and comments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
