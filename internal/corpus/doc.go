// Package corpus maintains a searchable SQLite index over a collection
// of textgrid files. Indexing a file replaces any previous snapshot of
// that path, so the index always reflects the last time each file was
// seen. Searches return label occurrences across the whole corpus.
package corpus
