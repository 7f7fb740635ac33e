package copyright

// defaultGarbageItems are template placeholders that license files and
// project templates ship verbatim. They never name a real rights holder.
var defaultGarbageItems = []string{
	"Copyright (c) <year> <copyright holders>",
	"Copyright (c) <year> <name of author>",
	"Copyright (c) <year> <owner>",
	"Copyright (C) <year> <name of author>",
	"Copyright (C) yyyy name of copyright owner",
	"Copyright [yyyy] [name of copyright owner]",
	"Copyright {yyyy} {name of copyright owner}",
	"Copyright (c) [year] [fullname]",
	"Copyright (c) {{ year }} {{ author }}",
	"copyright notice",
	"copyright holder",
	"copyright holders",
	"Copyright owner",
}

// defaultGarbagePatterns catch the same placeholders with varying
// capitalization, bracket style, and spacing.
var defaultGarbagePatterns = []string{
	`(?i)copyright\s*(\(c\)|©)?\s*[<\[{]+\s*(year|yyyy)\s*[>\]}]+.*`,
	`(?i)copyright\s*(\(c\)|©)?\s*(the\s+)?(copyright\s+)?(holders?|owners?)\.?`,
	`(?i)copyright\s*(\(c\)|©)?\s*\$\{?year\}?.*`,
}

// DefaultGarbage returns the built-in placeholder garbage. Callers typically
// union it with a user-maintained garbage file.
func DefaultGarbage() *Garbage {
	g, err := NewGarbage(defaultGarbageItems, defaultGarbagePatterns)
	if err != nil {
		// The built-in table is static; a compile failure is a programming error.
		panic(err)
	}
	return g
}
