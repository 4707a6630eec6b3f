// Package normalisers provides implementations of the Normaliser interface
// for the supported content categories. Each normaliser knows how to
// extract text, and structure where the format has it, from raw bytes.
//
// Normalisers are registered with the Registry at startup.
package normalisers
