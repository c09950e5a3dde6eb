// Package html provides a ContentNormaliser implementation for rich-text
// announcement bodies. It extracts readable text content from HTML,
// stripping tags, scripts, styles, and decoding entities for clean
// searchable content.
package html
