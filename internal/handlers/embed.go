// Package handlers wires the HTTP surface of the catalog web application.
package handlers

import "embed"

//go:embed templates/*.html
var templateFS embed.FS
