/*
Package domain contains the core domain models for the Arbor journey engine.

It defines the fundamental entities of a form journey: Fields, Steps,
Conditions, and the Journey state (stored values plus completion history).
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Field: One named piece of data collected on a step, with its validation rules.
  - Step: One page/unit of the journey, with its conditional "next" resolution tree.
  - Condition: A rule used to pick the next step based on field values or custom logic.
  - Journey: The runtime snapshot of a session (stored values, completion history).
*/
package domain
