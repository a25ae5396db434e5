// Package job holds the job catalog boundary and the bulk-cancel command
// message. Job-catalog persistence is a non-goal to fully design, but
// CancelJobsBulkMessage needs a concrete contract to query and mutate
// against, so this package defines Catalog plus an in-memory reference
// implementation for tests and a boltJobCatalog/raft-backed implementation
// for a realistic ambient persistence path, mirroring the replicated-write
// pattern warren's pkg/manager and pkg/storage use for cluster state.
//
// It also carries the in-memory WorkspaceCatalog/IngestCatalog/
// StrikeCatalog/ScanCatalog collaborator implementations execconfig's
// QueuedConfigurator depends on.
package job
