package routes

import "net/http"

// Route binds a method and path pattern to its handler function.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
