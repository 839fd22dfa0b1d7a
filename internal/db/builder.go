package db

// IndexBuilder assembles an IndexDefinition fluently.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a definition for the named index with cosine distance.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{
		Name:   name,
		Vector: VectorField{Distance: DistanceCosine},
	}}
}

// Prefix adds key prefixes covered by the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Vector sets the vector field name and dimension.
func (b *IndexBuilder) Vector(name string, dim int) *IndexBuilder {
	b.def.Vector.Name = name
	b.def.Vector.Dim = dim
	return b
}

// Distance overrides the distance metric.
func (b *IndexBuilder) Distance(m DistanceMetric) *IndexBuilder {
	b.def.Vector.Distance = m
	return b
}

// HNSW sets the graph parameters.
func (b *IndexBuilder) HNSW(m, efConstruct int) *IndexBuilder {
	b.def.Vector.M = m
	b.def.Vector.EFConstruct = efConstruct
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Prefixes = append([]string(nil), b.def.Prefixes...)
	return &def, nil
}
