// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - UpdateStore: update-record persistence and ranked queries
//   - CheckpointStore: singleton sync-checkpoint persistence and guard
//   - FeedClient: remote announcement-feed fetches
//   - ContentNormaliser: rich-text to plain-prose conversion
//   - ConfigStore: application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
