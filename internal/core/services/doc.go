// Package services implements the core business logic behind the driving
// ports: the sync engine that replicates the remote announcement feed into
// the local store, and the query engine that serves ranked reads against it.
package services
