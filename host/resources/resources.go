// Package resources embeds the files the host app needs at runtime.
package resources

import (
	"embed"
)

//go:embed ui
var UI embed.FS

//go:embed licenses.txt
var Licenses string
