// Package ws exposes the live dispatch stream: each WebSocket client
// gets its own dispatcher tap and receives one frame per delivery the
// background loop performs. Slow clients shed their own records; the
// delivery loop never blocks on a connection.
package ws
