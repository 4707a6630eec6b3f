// Package formats classifies uploaded files into content categories.
//
// Classification is table driven: full base names are matched first
// (so Dockerfile or CMakeLists.txt resolve to source code), then the
// lowercased extension. Anything else is CategoryUnknown.
package formats

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// Classification is the result of classifying a file name.
type Classification struct {
	// Category is the content category.
	Category domain.Category

	// Language is the language tag, "text" when none applies.
	Language string

	// Extension is the lowercased extension with leading dot, or empty.
	Extension string
}

type entry struct {
	category domain.Category
	language string
}

var extensions = map[string]entry{
	// Rich documents
	".pdf":  {domain.CategoryRichDocument, ""},
	".docx": {domain.CategoryRichDocument, ""},
	".pptx": {domain.CategoryRichDocument, ""},
	".html": {domain.CategoryRichDocument, ""},
	".htm":  {domain.CategoryRichDocument, ""},

	// Tabular
	".csv":  {domain.CategoryTabular, ""},
	".tsv":  {domain.CategoryTabular, ""},
	".xlsx": {domain.CategoryTabular, ""},
	".xlsm": {domain.CategoryTabular, ""},
	".xls":  {domain.CategoryTabular, ""},

	// Structured records
	".json": {domain.CategoryStructured, ""},
	".yaml": {domain.CategoryStructured, ""},
	".yml":  {domain.CategoryStructured, ""},
	".toml": {domain.CategoryStructured, ""},

	// Plain text
	".txt":      {domain.CategoryPlainText, ""},
	".md":       {domain.CategoryPlainText, ""},
	".markdown": {domain.CategoryPlainText, ""},
	".rst":      {domain.CategoryPlainText, ""},
	".log":      {domain.CategoryPlainText, ""},
	".puml":     {domain.CategoryPlainText, ""},

	// Source code
	".py":    {domain.CategorySourceCode, "python"},
	".go":    {domain.CategorySourceCode, "go"},
	".rs":    {domain.CategorySourceCode, "rust"},
	".js":    {domain.CategorySourceCode, "javascript"},
	".jsx":   {domain.CategorySourceCode, "javascript"},
	".mjs":   {domain.CategorySourceCode, "javascript"},
	".ts":    {domain.CategorySourceCode, "typescript"},
	".tsx":   {domain.CategorySourceCode, "typescript"},
	".java":  {domain.CategorySourceCode, "java"},
	".kt":    {domain.CategorySourceCode, "kotlin"},
	".c":     {domain.CategorySourceCode, "c"},
	".h":     {domain.CategorySourceCode, "c"},
	".cpp":   {domain.CategorySourceCode, "cpp"},
	".cc":    {domain.CategorySourceCode, "cpp"},
	".hpp":   {domain.CategorySourceCode, "cpp"},
	".cs":    {domain.CategorySourceCode, "csharp"},
	".rb":    {domain.CategorySourceCode, "ruby"},
	".php":   {domain.CategorySourceCode, "php"},
	".swift": {domain.CategorySourceCode, "swift"},
	".scala": {domain.CategorySourceCode, "scala"},
	".sh":    {domain.CategorySourceCode, "shell"},
	".bash":  {domain.CategorySourceCode, "shell"},
	".sql":   {domain.CategorySourceCode, "sql"},
	".lua":   {domain.CategorySourceCode, "lua"},
	".r":     {domain.CategorySourceCode, "r"},
}

// baseNames maps lowercased extensionless build manifests to languages.
var baseNames = map[string]string{
	"dockerfile":     "dockerfile",
	"makefile":       "makefile",
	"gnumakefile":    "makefile",
	"jenkinsfile":    "groovy",
	"gemfile":        "ruby",
	"rakefile":       "ruby",
	"vagrantfile":    "ruby",
	"cmakelists.txt": "cmake",
}

// Classify maps a file name to its content category. It never fails.
func Classify(fileName string) Classification {
	base := strings.ToLower(filepath.Base(fileName))
	if lang, ok := baseNames[base]; ok {
		return Classification{
			Category:  domain.CategorySourceCode,
			Language:  lang,
			Extension: strings.ToLower(filepath.Ext(base)),
		}
	}

	ext := strings.ToLower(filepath.Ext(base))
	if e, ok := extensions[ext]; ok {
		return newClassification(e, ext)
	}
	return Classification{
		Category:  domain.CategoryUnknown,
		Language:  domain.DefaultLanguage,
		Extension: ext,
	}
}

// ClassifyContent is Classify with a content sniffing fallback for names
// that carry no extension. Names with an unrecognised extension are not
// sniffed and stay unknown.
func ClassifyContent(fileName string, head []byte) Classification {
	c := Classify(fileName)
	if c.Category != domain.CategoryUnknown || c.Extension != "" || len(head) == 0 {
		return c
	}

	kind, err := filetype.Match(head)
	if err == nil && kind != filetype.Unknown {
		ext := "." + kind.Extension
		if e, ok := extensions[ext]; ok {
			return newClassification(e, ext)
		}
		return c
	}

	if looksLikeText(head) {
		return Classification{
			Category: domain.CategoryPlainText,
			Language: domain.DefaultLanguage,
		}
	}
	return c
}

// Extensions returns the sorted extensions registered for a category.
func Extensions(category domain.Category) []string {
	var out []string
	for ext, e := range extensions {
		if e.category == category {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// IsSupported returns true if the file name classifies to an ingestible category.
func IsSupported(fileName string) bool {
	return Classify(fileName).Category.IsSupported()
}

func newClassification(e entry, ext string) Classification {
	lang := e.language
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	return Classification{Category: e.category, Language: lang, Extension: ext}
}

// looksLikeText reports whether the sample is valid UTF-8 without NUL bytes.
func looksLikeText(sample []byte) bool {
	// A multi-byte rune may be cut at the sample boundary.
	for i := 0; i < utf8.UTFMax && len(sample) > 0 && !utf8.Valid(sample); i++ {
		sample = sample[:len(sample)-1]
	}
	return utf8.Valid(sample) && !bytes.Contains(sample, []byte{0})
}
