package collection

// Collection is a named set of documents sharing one vector dimension.
type Collection struct {
	name      string
	vectorDim int
	createdAt int64
}

// Reconstruct creates a Collection from stored fields.
func Reconstruct(name string, vectorDim int, createdAt int64) Collection {
	return Collection{name: name, vectorDim: vectorDim, createdAt: createdAt}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// VectorDim returns the embedding dimension of the collection's index.
func (c *Collection) VectorDim() int { return c.vectorDim }

// CreatedAt returns the creation time in unix milliseconds.
func (c *Collection) CreatedAt() int64 { return c.createdAt }

// MaxNameLength bounds collection names.
const MaxNameLength = 128

// ValidName reports whether name can be stored as a collection: 1 to
// MaxNameLength characters from [A-Za-z0-9_.-].
func ValidName(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '.', c == '-':
		default:
			return false
		}
	}
	return true
}
