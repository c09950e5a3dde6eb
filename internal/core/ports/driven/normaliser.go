package driven

// ContentNormaliser converts a rich-text body into plain prose for storage
// and full-text indexing. Implementations never fail: malformed input
// degrades to a best-effort tag-stripped text rather than failing the
// enclosing record.
type ContentNormaliser interface {
	// Normalise returns the plain-prose form of richText.
	Normalise(richText string) string
}
