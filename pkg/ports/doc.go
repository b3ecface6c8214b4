/*
Package ports defines the driven ports of the PFC engine.

These interfaces decouple chart handling from the storage backends, so the
same engine works against memory, files, Redis, SQLite or Postgres.

# Key Interfaces

  - ChartStore: persists and loads chart record sets by name.
  - ChartLocker: serializes load, edit, save cycles across replicas.

RunChartStoreContract verifies a ChartStore implementation; the tests
subpackage holds the equivalent suite for ChartLocker.
*/
package ports
