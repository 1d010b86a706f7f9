package ploog

import _ "embed"

// Version is the release version of ploog.
//
//go:embed VERSION
var Version string
