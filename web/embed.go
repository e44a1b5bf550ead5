// Package web embeds the page templates and static assets into the
// binary.
package web

import "embed"

// TemplatesFS holds the page templates, parsed once at server start.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and client script served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
