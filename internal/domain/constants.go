package domain

// Business validation constants
const (
	MaxNoteLength = 500
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
