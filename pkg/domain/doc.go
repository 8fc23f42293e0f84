/*
Package domain contains the core domain models for the Waypoint tour engine.

It defines the entities of a product tour and the read model surfaces render.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Step: A committed tour step (title, description, image, category, duration).
  - Category: The closed category enumeration and its display table.
  - Draft / Template: Uncommitted editor fields and the quick templates that fill them.
  - ViewState: The active view, the step cursor and the transition flag.
  - Snapshot / SnapshotDiff: A consistent capture of a session and the delta between two captures.
*/
package domain
