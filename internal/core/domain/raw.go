package domain

// Category is the coarse content class of an uploaded file.
// It decides how text is extracted and which segmentation strategy runs.
type Category string

// Available content categories.
const (
	// CategoryRichDocument covers paginated or styled documents (PDF, DOCX, HTML).
	CategoryRichDocument Category = "rich_document"

	// CategoryTabular covers row-oriented data (CSV, spreadsheets).
	CategoryTabular Category = "tabular"

	// CategoryStructured covers hierarchical records (JSON, YAML, TOML).
	CategoryStructured Category = "structured"

	// CategoryPlainText covers prose and markup-light text.
	CategoryPlainText Category = "plain_text"

	// CategorySourceCode covers programming language sources.
	CategorySourceCode Category = "source_code"

	// CategoryUnknown is assigned to anything not recognised.
	CategoryUnknown Category = "unknown"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRichDocument, CategoryTabular, CategoryStructured,
		CategoryPlainText, CategorySourceCode, CategoryUnknown:
		return true
	default:
		return false
	}
}

// IsSupported returns true if files of this category can be ingested.
func (c Category) IsSupported() bool {
	return c.IsValid() && c != CategoryUnknown
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Description returns a human-readable description of the category.
func (c Category) Description() string {
	switch c {
	case CategoryRichDocument:
		return "Rich document"
	case CategoryTabular:
		return "Tabular data"
	case CategoryStructured:
		return "Structured record"
	case CategoryPlainText:
		return "Plain text"
	case CategorySourceCode:
		return "Source code"
	default:
		return "Unknown"
	}
}

// DefaultLanguage is the language tag used when an extension maps to none.
const DefaultLanguage = "text"

// RawDocument represents an uploaded file before extraction.
type RawDocument struct {
	// DocumentID is the identifier assigned at upload time.
	DocumentID string

	// FileName is the original file name including extension.
	FileName string

	// Extension is the lowercased extension with leading dot, or empty.
	Extension string

	// Category is the classified content category.
	Category Category

	// Language is the programming language tag for source code.
	Language string

	// Content is the raw bytes.
	Content []byte
}
