package site

import (
	_ "embed"
	"net/http"
)

// ScriptPath is where the page loads its client script from, relative to
// the page.
const ScriptPath = "js/labpage.js"

//go:embed labpage.js
var script []byte

// Script returns the client script that wires the filter buttons, abstract
// toggles and about switch of a rendered page.
func Script() []byte {
	return script
}

// ServeScript serves the embedded client script.
func ServeScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Write(script)
}
