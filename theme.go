package chatstream

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values. A negative
// index means "no color".
type Theme struct {
	UserMsg int // User message accent
	Answer  int // Assistant message accent
	Error   int // Error messages
	Success int // Completed-stream indicator
	Muted   int // Status bar, placeholders, code gutters
	Accent  int // Headings, links
	Quote   int // Blockquote gutter
	Warning int // Cancelled-stream indicator
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		Answer:  6,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
		Quote:   8,
		Warning: 3,
	}
}
