/*
Package ports defines the driven ports (interfaces) of the Quiver engine.

These interfaces decouple the compile pipeline from the concrete isolation
mechanism and from how concurrent workers are rationed across replicas.

# Key Interfaces

  - Sandbox: runs one compile request in an isolated worker and waits for it.
  - Limiter: bounds how many workers run at once (in-process or via Redis).
*/
package ports
