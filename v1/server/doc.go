// Package server exposes the chat, document and status API over HTTP with echo.
//
// Every route under /api/v1 requires the X-User-ID header. Service errors map to
// status codes as follows: validation errors 400, missing records 404, LLM provider
// failures 502, anything else 500. Error bodies have the form {"detail": "..."}.
package server
