package seed

// DefaultCollection is the collection bootstrapped on start.
const DefaultCollection = "my_knowledge_base"

// Fixture is a document to seed.
type Fixture struct {
	ID      string
	Content string
}

// DefaultDocuments are the demo facts loaded into DefaultCollection.
var DefaultDocuments = []Fixture{
	{ID: "id1", Content: "Population of New York City is approximately 8.4 million as of 2020."},
	{ID: "id2", Content: "The GDP of California was about $3.2 trillion in 2021."},
	{ID: "id3", Content: "The unemployment rate in Texas was 6.9% in 2020."},
	{ID: "id4", Content: "Florida's population was around 21.5 million in 2020."},
	{ID: "id5", Content: "The GDP of Illinois was approximately $900 billion in 2021."},
	{ID: "id6", Content: "The unemployment rate in Ohio was 5.5% in 2020."},
	{ID: "id7", Content: "Georgia's GDP was about $600 billion in 2021."},
	{ID: "id8", Content: "The population of Pennsylvania was roughly 12.8 million in 2020."},
	{ID: "id9", Content: "The unemployment rate in Michigan was 8.2% in 2020."},
}
