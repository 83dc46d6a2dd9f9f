// Package schema publishes the JSON Schema of the field document served by
// the HTTP adapter and printed by "quiver schema".
package schema
