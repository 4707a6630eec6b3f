package driven

// PromptStore provides access to persona prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the
	// built-in default or an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// PersonaPromptPrefix prefixes persona template names. The full name is
// the prefix followed by the lowercased mode, e.g. "persona_code_debugger".
const PersonaPromptPrefix = "persona_"

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use built-in prompts.
	SetPromptStore(store PromptStore)
}
