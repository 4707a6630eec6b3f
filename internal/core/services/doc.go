// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IngestService runs the classify, extract, segment, embed and index
// pipeline. ChatService retrieves context, routes the query to a persona
// and records the conversation. SettingsService reads configuration with
// environment overrides.
package services
