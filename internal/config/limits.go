package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	// Same as folder names for consistency.
	MaxFileNameLength = 255

	// MaxArchiveFiles is the maximum number of files per archive job.
	// Archive construction is sequential; unbounded requests would hold
	// the single worker for arbitrarily long.
	MaxArchiveFiles = 500

	// DefaultListLimit is the page size used when a listing request does
	// not specify one.
	DefaultListLimit = 50

	// MaxListLimit caps requested page sizes.
	MaxListLimit = 200
)
