package appfs

import "embed"

// FS holds the embedded database migrations and email templates.
//go:embed migrations all:assets
var FS embed.FS
