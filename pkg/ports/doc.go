/*
Package ports defines the driven ports (interfaces) for the Arbor engine.

These interfaces decouple the core logic from external implementations,
allowing journeys to be persisted in various backends and coordinated across
replicas.

# Key Interfaces

  - JourneyStore: Responsible for persisting and loading journey state.
  - DistributedLocker: Provides distributed locking for handling concurrent journey access.
*/
package ports
