// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.docrag.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable persona templates
package file
