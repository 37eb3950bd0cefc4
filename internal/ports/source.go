package ports

// SourceRepository reads railML sources and stores exported files
type SourceRepository interface {
	// Read returns the whole content of a source file
	Read(path string) ([]byte, error)

	// Write stores data at path, creating parent directories
	Write(path string, data []byte) error

	// List returns the railML files below dir in lexical order
	List(dir string) ([]string, error)
}
