// Package loadable orchestrates loading keyed data sets from a remote source
// through a local cache, publishing progress as observable loading states.
//
// The core pieces are Subject (an observable slot holding a four-phase
// State), Group (a cancellation scope owning in-flight pipeline tokens) and
// Orchestrator (the pipeline: mark loading, check the local store, fetch and
// write back only when needed, query, publish). Local persistence is a
// swappable byte store; see the driver subpackages for backends and
// Repository for the typed adapter on top of them.
package loadable
