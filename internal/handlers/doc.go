// Package handlers implements the HTTP endpoints of the Kindle transfer
// service: the JSON API under /api, the index page and the API docs page.
//
// Handlers return errors instead of writing failures themselves; ErrorHandler
// maps pipeline and settings errors to status codes and the JSON envelope
//
//	{"success": false, "message": "...", "error": "...", "request_id": "..."}
//
// Successful JSON responses always carry "success": true.
package handlers
