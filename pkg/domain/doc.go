/*
Package domain contains the core data model of the quiver engine.

It defines the grid a field is sampled on, the per-point samples, the raw and
normalized vector fields, lifecycle events and the error taxonomy shared by
every other package. The package is kept pure: no I/O, no process handling and
no dependency on the symbolic engine.

# Key Entities

  - Grid: the ordered x and y sample coordinates (default -10..10, step 1).
  - Sample: one grid point with its (dx, dy) pair and a Status.
  - RawField: unscaled samples produced by the grid evaluator.
  - VectorField: normalized samples handed to renderers and serializers.
  - LifecycleHooks: callbacks fired around compilation and field construction.
*/
package domain
