package quiver

// Version is the library version, overridden at build time with
// -ldflags "-X github.com/aretw0/quiver.Version=...".
var Version = "0.3.0"
