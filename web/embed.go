// Package web embeds the dashboard page and its assets so the server
// ships as a single binary.
package web

import "embed"

// TemplatesFS holds the dashboard HTML template.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the dashboard script and stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
