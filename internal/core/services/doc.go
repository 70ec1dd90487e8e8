// Package services implements the driving port interfaces.
// Services contain the core business logic: ingest, extraction
// scheduling, plan generation, review commits and hybrid search. They
// orchestrate calls to driven ports (adapters) and never touch
// infrastructure directly.
package services
