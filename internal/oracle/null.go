package oracle

import "context"

// NullOracle is the deterministic test double for Oracle: every method
// returns its canned, preconfigured answer with no subprocess involved.
// Grounded on the same "pluggable bridge, swap for tests" shape as
// TimAnthonyAlexander-loom's indexer subprocess wrapper.
type NullOracle struct {
	ImplementationsResult []Location
	ContextResult         string
	StdlibRoots           []string
	AvailableResult       bool
}

func (n *NullOracle) Implementations(ctx context.Context, file string, line, col int, mainFile string) []Location {
	return n.ImplementationsResult
}

func (n *NullOracle) Context(ctx context.Context, file string, line, col int, mainFile string) string {
	return n.ContextResult
}

func (n *NullOracle) CrystalPathRoots() ([]string, error) {
	return n.StdlibRoots, nil
}

func (n *NullOracle) Available() bool {
	return n.AvailableResult
}
