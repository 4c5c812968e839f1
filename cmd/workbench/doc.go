// Command workbench runs the framework core as a small daemon: it boots
// an engine (catalog, dispatcher, data store) and serves the inspector
// HTTP/WebSocket surface for poking at live registries.
package main
