package code

import "regexp"

// Language describes where definitions start in one language.
type Language struct {
	// Boundary matches the first line of a top level definition.
	Boundary *regexp.Regexp

	// Attach lists trimmed line prefixes that belong to the definition
	// below them, such as decorators, annotations and doc comments.
	Attach []string
}

var (
	slashComments = []string{"//", "/*", "*"}
	hashComments  = []string{"#"}
)

func withPrefixes(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, extra...)
	return append(out, base...)
}

// jvmModifiers are the declaration modifiers shared by java, kotlin, scala
// and csharp.
const jvmModifiers = `(?:(?:public|private|protected|internal|static|final|abstract|sealed|open|data|inline|override|suspend|async|partial|case|implicit|lazy|virtual|readonly|unsafe)\s+)*`

var languages = map[string]Language{
	"python": {
		Boundary: regexp.MustCompile(`^(?:async\s+def|def|class)\s+\w+`),
		Attach:   withPrefixes(hashComments, "@"),
	},
	"go": {
		Boundary: regexp.MustCompile(`^(?:func|type)\s`),
		Attach:   []string{"//"},
	},
	"rust": {
		Boundary: regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:async\s+|unsafe\s+|const\s+)*(?:fn|struct|enum|trait|impl|mod|union)\b`),
		Attach:   withPrefixes(slashComments, "#["),
	},
	"javascript": {
		Boundary: regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?(?:function\*?|class)\b|^(?:export\s+)?(?:const|let|var)\s+\w+\s*=\s*(?:async\s*)?(?:\(|function\b|\w+\s*=>)`),
		Attach:   withPrefixes(slashComments, "@"),
	},
	"typescript": {
		Boundary: regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?(?:async\s+)?(?:function\*?|class|interface|enum|type\s+\w+\s*=)\b|^(?:export\s+)?(?:const|let|var)\s+\w+(?:\s*:\s*[^=]+)?\s*=\s*(?:async\s*)?(?:\(|function\b|\w+\s*=>)`),
		Attach:   withPrefixes(slashComments, "@"),
	},
	"java": {
		Boundary: regexp.MustCompile(`^\s{0,4}` + jvmModifiers + `(?:class|interface|enum|record|@interface)\s+\w+|^ {4}` + jvmModifiers + `[A-Za-z_][\w<>\[\],]*\s+\w+\s*\([^;]*$`),
		Attach:   withPrefixes(slashComments, "@"),
	},
	"kotlin": {
		Boundary: regexp.MustCompile(`^\s{0,4}` + jvmModifiers + `(?:class|interface|object|fun|enum\s+class)\s+`),
		Attach:   withPrefixes(slashComments, "@"),
	},
	"scala": {
		Boundary: regexp.MustCompile(`^\s{0,2}` + jvmModifiers + `(?:class|trait|object|def)\s+\w+`),
		Attach:   withPrefixes(slashComments, "@"),
	},
	"csharp": {
		Boundary: regexp.MustCompile(`^\s{0,8}` + jvmModifiers + `(?:class|interface|struct|enum|record|namespace)\s+\w+`),
		Attach:   withPrefixes(slashComments, "["),
	},
	"c": {
		Boundary: regexp.MustCompile(`^(?:static\s+|inline\s+|extern\s+)*(?:struct|enum|union|typedef)\b|^[A-Za-z_][\w\s\*]*[\s\*]\**[A-Za-z_]\w*\s*\([^;]*$`),
		Attach:   slashComments,
	},
	"cpp": {
		Boundary: regexp.MustCompile(`^(?:template\s*<.*>\s*)?(?:class|struct|namespace|enum(?:\s+class)?|union)\b|^[A-Za-z_][\w\s\*&:<>,]*[\s\*&]\**[A-Za-z_][\w:~]*\s*\([^;]*$`),
		Attach:   withPrefixes(slashComments, "template"),
	},
	"ruby": {
		Boundary: regexp.MustCompile(`^\s{0,2}(?:def|class|module)\s+`),
		Attach:   hashComments,
	},
	"php": {
		Boundary: regexp.MustCompile(`^\s{0,4}(?:(?:abstract|final|public|private|protected|static|readonly)\s+)*(?:function|class|interface|trait|enum)\s+\w+`),
		Attach:   withPrefixes(slashComments, "#["),
	},
	"swift": {
		Boundary: regexp.MustCompile(`^\s{0,4}(?:(?:public|private|internal|fileprivate|open|static|final|override|mutating)\s+)*(?:func|class|struct|enum|protocol|extension|actor)\s+`),
		Attach:   withPrefixes(slashComments, "@"),
	},
	"shell": {
		Boundary: regexp.MustCompile(`^(?:function\s+[\w:-]+|[\w:-]+\s*\(\)\s*\{?\s*$)`),
		Attach:   hashComments,
	},
}

// Lookup returns the boundary table for a language tag.
func Lookup(language string) (Language, bool) {
	l, ok := languages[language]
	return l, ok
}

// Languages returns the number of languages with a boundary table.
func Languages() int {
	return len(languages)
}
