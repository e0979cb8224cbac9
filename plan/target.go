package plan

import "fmt"

// TargetFunc resolves the human-readable storage objects a node
// touches, one line per object.
type TargetFunc func(n *Node, cat Catalog) []string

var targetFuncs = map[Kind]TargetFunc{}

// RegisterTarget installs the target resolver for a kind, replacing
// any previous one.
func RegisterTarget(k Kind, f TargetFunc) {
	targetFuncs[k] = f
}

// TargetLines returns the annotation lines for a node, or nil when the
// kind has no registered resolver or nothing resolves.
func TargetLines(n *Node, cat Catalog) []string {
	f, ok := targetFuncs[n.Kind]
	if !ok {
		return nil
	}
	return f(n, cat)
}

func resolve(cat Catalog, id string) (string, bool) {
	if cat == nil || id == "" {
		return "", false
	}
	return cat.ResolveName(id)
}

func relationLines(n *Node, cat Catalog) []string {
	name, ok := resolve(cat, n.RelationID)
	if !ok {
		return nil
	}
	return []string{fmt.Sprintf("Relation: %s", name)}
}

func indexLines(n *Node, cat Catalog) []string {
	name, ok := resolve(cat, n.IndexID)
	if !ok {
		return nil
	}
	return []string{fmt.Sprintf("Index: %s", name)}
}

func relationAndIndexLines(n *Node, cat Catalog) []string {
	lines := relationLines(n, cat)
	return append(lines, indexLines(n, cat)...)
}

func init() {
	RegisterTarget(KindSeqScan, relationLines)
	RegisterTarget(KindSampleScan, relationLines)
	RegisterTarget(KindBitmapHeapScan, relationLines)
	RegisterTarget(KindIndexScan, relationAndIndexLines)
	RegisterTarget(KindIndexOnlyScan, relationAndIndexLines)
	RegisterTarget(KindBitmapIndexScan, indexLines)
}
