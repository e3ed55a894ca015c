package ports

// Watcher monitors a directory tree and reports files that change.
type Watcher interface {
	// Watch starts monitoring path recursively. onChange is called with the
	// absolute path of each created, written, renamed, or removed file.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. Safe to call more
	// than once.
	Stop() error
}
