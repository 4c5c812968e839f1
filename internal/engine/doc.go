// Package engine assembles the framework core for one process: the
// registry catalog, the asynchronous dispatcher and the persistent data
// store, built from configuration and passed explicitly to whoever
// needs them. The inspector server holds an *Engine; nothing in the
// framework reaches for global state.
package engine
