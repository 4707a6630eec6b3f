package intent

import (
	"regexp"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// pattern is one weighted entry of a mode's pattern bank.
type pattern struct {
	source string
	re     *regexp.Regexp
	weight int

	// except lists matches that do not count, so a term scored by an
	// earlier pattern is not scored twice.
	except map[string]bool
}

func p(source string, weight int) pattern {
	return pattern{source: source, re: regexp.MustCompile(`(?i)` + source), weight: weight}
}

// unless returns a copy of pat that ignores the given terms.
func (pat pattern) unless(terms ...string) pattern {
	pat.except = make(map[string]bool, len(terms))
	for _, t := range terms {
		pat.except[t] = true
	}
	return pat
}

func (pat pattern) matches(query string) bool {
	if len(pat.except) == 0 {
		return pat.re.MatchString(query)
	}
	for _, m := range pat.re.FindAllString(query, -1) {
		if !pat.except[m] {
			return true
		}
	}
	return false
}

// builtinErrors are the exception names scored by their own pattern.
var builtinErrors = []string{
	"TypeError", "ValueError", "KeyError", "AttributeError", "ImportError",
	"RuntimeError", "NameError", "IndexError", "ZeroDivisionError", "SyntaxError",
	"OSError", "IOError", "FileNotFoundError", "PermissionError", "StopIteration",
	"AssertionError", "NotImplementedError", "OverflowError", "MemoryError", "RecursionError",
}

// bank is the pattern bank of one mode.
type bank struct {
	mode     domain.Mode
	patterns []pattern
}

// banks are evaluated in this order, which is also the order of the
// signals they emit.
var banks = []bank{
	{domain.ModeCodeDebugger, []pattern{
		p(`\b(bug|bugs|buggy)\b`, 3),
		p(`\b(error|errors)\b`, 2),
		p(`\b(fix|fixes|fixing)\b`, 2),
		p(`\b(not\s+working|doesn'?t\s+work|broken|crash(?:es|ing)?|hang(?:s|ing)?)\b`, 3),
		p(`\b(debug(?:ging)?|trace(?:back)?|stacktrace)\b`, 3),
		p(`\b(exception|raises?|throws?|thrown|throwing)\b`, 3),
		p(`\b(TypeError|ValueError|KeyError|AttributeError|ImportError|RuntimeError|NameError|IndexError|ZeroDivisionError|SyntaxError|OSError|IOError|FileNotFoundError|PermissionError|StopIteration|AssertionError|NotImplementedError|OverflowError|MemoryError|RecursionError)\b`, 4),
		p(`(?-i:\b[A-Z][a-z]\w*(?:Exception|Error)\b)`, 4).unless(builtinErrors...),
		p(`\b(why\s+is|why\s+does|why\s+won'?t|what'?s\s+wrong|what\s+is\s+wrong)\b`, 2),
		p(`\b(null\s+pointer|segfault|segmentation\s+fault|undefined\s+reference|linker\s+error|compilation\s+error)\b`, 4),
		p(`\b(failing|failed|fail)\b`, 2),
	}},
	{domain.ModeCodeArchitect, []pattern{
		p(`\b(explain\s+(the\s+)?(code|class|function|method|module|architecture|design|pattern))\b`, 4),
		p(`\b(how\s+does\s+(this|the)\s+(code|class|function|method|system|module|architecture)\s+work)\b`, 4),
		p(`\b(architecture|architectures)\b`, 3),
		p(`\b(refactor|refactoring|restructure|redesign)\b`, 3),
		p(`\b(design\s+pattern|design\s+patterns|solid\s+principles?|dependency\s+inject|inversion\s+of\s+control)\b`, 4),
		p(`\b(what\s+does\s+(this|the)\s+(code|class|function|method)\s+do)\b`, 4),
		p(`\b(implement(?:ation)?|implementation\s+of|how\s+(?:is|was)\s+(?:this|that)\s+(?:built|implemented|coded))\b`, 2),
		p(`\b(codebase|code\s+structure|module\s+structure|class\s+hierarchy|inheritance|polymorphism)\b`, 3),
		p(`\b(function|method|class|interface|abstract|mixin|decorator|middleware|handler|controller|service|repository|factory|singleton|adapter|facade|observer|strategy|command|iterator|template)\b`, 1),
	}},
	{domain.ModeDataAnalyst, []pattern{
		p(`\b(average|mean|median|mode|standard\s+deviation|std\s+dev|variance)\b`, 3),
		p(`\b(trend|trends|trending)\b`, 2),
		p(`\b(how\s+many|how\s+much|count|total|sum|minimum|maximum|min|max)\b`, 3),
		p(`\b(statistics?|statistical|analytics?)\b`, 3),
		p(`\b(correlation|regression|distribution|histogram|percentile|quartile)\b`, 4),
		p(`\b(chart|graph|plot|visuali[sz]e?|dashboard)\b`, 2),
		p(`\b(dataset|data\s+set|rows?|columns?|fields?|records?|entry|entries)\b`, 2),
		p(`\b(compare|comparison|versus|vs\.?|difference\s+between)\b`, 2),
		p(`\b(ratio|proportion|percentage|percent)\b|%`, 2),
	}},
	{domain.ModeSummarizer, []pattern{
		p(`\b(summar(?:y|ize|ise|isation|ization))\b`, 5),
		p(`\b(tl;?dr)\b`, 5),
		p(`\b(key\s+(points?|takeaways?|ideas?|findings?|conclusions?|highlights?))\b`, 4),
		p(`\b(overview|brief|briefly|in\s+a\s+nutshell|in\s+short|short\s+version|concise|concisely)\b`, 3),
		p(`\b(what\s+(are\s+(the\s+)?)?(main|key|core|important|critical|essential|primary|major)\s+(points?|ideas?|takeaways?|themes?|topics?|aspects?))\b`, 4),
		p(`\b(recap|recapitulate|highlights?)\b`, 3),
		p(`\b(abstract|executive\s+summary|digest)\b`, 4),
	}},
	{domain.ModeCreative, []pattern{
		p(`\b(brainstorm|brainstorming)\b`, 5),
		p(`\b(ideas?|ideation)\b`, 2),
		p(`\b(what\s+if|hypothetically|imagine|envision)\b`, 3),
		p(`\b(creative|creatively)\b`, 4),
		p(`\b(alternatives?)\b`, 3),
		p(`\b(innovative|innovation|novel|original|out-of-the-box|outside\s+the\s+box)\b`, 3),
		p(`\b(possibilities|explore|exploring)\b`, 2),
		p(`\b(suggest|suggestions?|propose|proposal|recommend(?:ation)?)\b`, 2),
	}},
	{domain.ModeDocumentAnalyst, []pattern{
		p(`\b(according\s+to|based\s+on\s+the\s+document|as\s+stated\s+in|the\s+document\s+(says?|states?|mentions?|notes?))\b`, 4),
		p(`\b(analyze|analyzing|analyse|analysing|analysis|examine|examining)\b`, 3),
		p(`\b(documents?|reports?|papers?|articles?|research|findings?)\b`, 2),
		p(`\b(cited?\s+in|reference[sd]?|citation)\b`, 3),
		p(`\b(section|chapter|paragraph|clause|appendix)\b`, 2),
		p(`\b(polic(?:y|ies)|regulations?|guidelines?|standards?|procedures?)\b`, 2),
		p(`\b(what\s+does\s+the\s+(document|report|paper|text|file|article)\s+(say|state|mention|indicate|show))\b`, 4),
	}},
}

// priority orders activated modes for selection, highest first.
var priority = []domain.Mode{
	domain.ModeCodeDebugger,
	domain.ModeCodeArchitect,
	domain.ModeDataAnalyst,
	domain.ModeSummarizer,
	domain.ModeCreative,
	domain.ModeDocumentAnalyst,
}

// tabularExtensions are the file extensions that signal tabular data.
var tabularExtensions = map[string]bool{
	"csv":  true,
	"xlsx": true,
	"xls":  true,
}
