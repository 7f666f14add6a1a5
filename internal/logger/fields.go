package logger

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Context fields, attached once and carried by every later line.
const (
	FieldRequestID  = "request_id"
	FieldComponent  = "component"
	FieldUserID     = "user_id"
	FieldMemeID     = "meme_id"
	FieldTemplateID = "template_id"
	FieldProvider   = "provider" // external API being called
)

// Metric fields, set per line through Entry.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
)
