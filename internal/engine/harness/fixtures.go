package harness

// Fixture is a sample program that must parse without error nodes.
type Fixture struct {
	Language string
	Source   string
}

// DefaultFixtures is one minimal valid program per probed language.
var DefaultFixtures = []Fixture{
	{Language: "c", Source: "int main() { return 0; }"},
	{Language: "python", Source: "def hello():\n    pass"},
	{Language: "javascript", Source: "function hello() { return 42; }"},
	{Language: "rust", Source: "fn main() { println!(\"Hello\"); }"},
	{Language: "go", Source: "func main() { fmt.Println(\"Hello\") }"},
}

func fixtureTable(fixtures []Fixture) map[string]string {
	table := make(map[string]string, len(fixtures))
	for _, f := range fixtures {
		table[f.Language] = f.Source
	}
	return table
}
