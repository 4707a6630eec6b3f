package domain

// Mode identifies the assistant persona chosen for a query.
type Mode string

// Available modes.
const (
	ModeGeneral         Mode = "GENERAL"
	ModeDocumentAnalyst Mode = "DOCUMENT_ANALYST"
	ModeCodeArchitect   Mode = "CODE_ARCHITECT"
	ModeCodeDebugger    Mode = "CODE_DEBUGGER"
	ModeSummarizer      Mode = "SUMMARIZER"
	ModeDataAnalyst     Mode = "DATA_ANALYST"
	ModeCreative        Mode = "CREATIVE"
)

// AllModes returns every mode in declaration order.
func AllModes() []Mode {
	return []Mode{
		ModeGeneral,
		ModeDocumentAnalyst,
		ModeCodeArchitect,
		ModeCodeDebugger,
		ModeSummarizer,
		ModeDataAnalyst,
		ModeCreative,
	}
}

// IsValid returns true if the mode is recognised.
func (m Mode) IsValid() bool {
	switch m {
	case ModeGeneral, ModeDocumentAnalyst, ModeCodeArchitect, ModeCodeDebugger,
		ModeSummarizer, ModeDataAnalyst, ModeCreative:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// Label returns the display name of the persona.
func (m Mode) Label() string {
	switch m {
	case ModeDocumentAnalyst:
		return "Document Analyst"
	case ModeCodeArchitect:
		return "Code Architect"
	case ModeCodeDebugger:
		return "Code Debugger"
	case ModeSummarizer:
		return "Summarizer"
	case ModeDataAnalyst:
		return "Data Analyst"
	case ModeCreative:
		return "Creative Synthesizer"
	default:
		return "General Assistant"
	}
}

// Icon returns the display icon of the persona.
func (m Mode) Icon() string {
	switch m {
	case ModeDocumentAnalyst:
		return "📄"
	case ModeCodeArchitect:
		return "💻"
	case ModeCodeDebugger:
		return "🐛"
	case ModeSummarizer:
		return "📋"
	case ModeDataAnalyst:
		return "📊"
	case ModeCreative:
		return "💡"
	default:
		return "✨"
	}
}

// IntentResult is the outcome of classifying a query.
type IntentResult struct {
	Mode       Mode     `json:"mode"`
	Label      string   `json:"label"`
	Icon       string   `json:"icon"`
	Confidence float64  `json:"confidence"`
	HasContext bool     `json:"has_context"`
	Signals    []string `json:"signals"`
}
