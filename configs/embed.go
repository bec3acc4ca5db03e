// Package configs provides the embedded configuration template for corpusdb.
//
// The template is embedded at build time with //go:embed so it ships inside
// the binary regardless of how corpusdb was installed. It is written out by
// `corpusdb config init` and documents every setting with its default.
package configs

import _ "embed"

// ConfigTemplate is the annotated example configuration file.
//
//go:embed corpusdb.example.yaml
var ConfigTemplate string
