package handlers

import (
	"html/template"
	"log"
	"net/http"
)

// Markup is intentionally minimal: the pages exist so the session gate has
// something to protect and the sign-in redirect has a landing target.
var homeTmpl = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head><title>WebSeeker</title></head>
<body>
<h1>WebSeeker</h1>
<p>You are signed in.</p>
</body>
</html>
`))

var signInTmpl = template.Must(template.New("sign-in").Parse(`<!DOCTYPE html>
<html>
<head><title>Secure Login</title></head>
<body>
<h1>Secure Login</h1>
<p>Enter your phone number to get a code.</p>
<p>Use the login client to verify your phone and obtain a session.</p>
</body>
</html>
`))

// PagesHandler serves the home and sign-in pages
type PagesHandler struct{}

// NewPagesHandler creates a new pages handler
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// HandleHome serves GET /. The router gates this behind the session check.
func (h *PagesHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTmpl.Execute(w, nil); err != nil {
		log.Printf("failed to render home page: %v", err)
	}
}

// HandleSignIn serves GET /sign-in, the redirect target for missing sessions
func (h *PagesHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := signInTmpl.Execute(w, nil); err != nil {
		log.Printf("failed to render sign-in page: %v", err)
	}
}
