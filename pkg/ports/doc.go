/*
Package ports defines the driven ports (interfaces) of the Waypoint engine.

These interfaces decouple the tour state core from storage and content
backends.

# Key Interfaces

  - SessionStore: keeps session snapshots so any replica can resume a live session.
  - DistributedLocker: serialises intents on one session across replicas.
  - TemplateSource: supplies quick templates (e.g. a Loam markdown directory).

RunSessionStoreContract is the shared test suite every SessionStore adapter runs.
*/
package ports
