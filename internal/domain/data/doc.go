/*
Package data provides the persistent data store: named assets grouped
into layers, loaded from YAML, TOML or JSON manifests (optionally
gzip-compressed) and kept in a registry that survives a catalog reset.

Lookups are deliberately forgiving: layer keys are lowercased on entry
and name matching is case-insensitive, so manifest authors and callers
need not agree on casing.
*/
package data
