package bt

type childrenOwner interface {
	Children() []Node
}

// Walk visits n and its descendants depth-first, pre-order. Returning false
// from fn stops the walk.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(n Node, depth int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	if p, ok := n.(childrenOwner); ok {
		for _, ch := range p.Children() {
			if !walk(ch, depth+1, fn) {
				return false
			}
		}
	}
	return true
}

// Count returns the number of nodes in the subtree rooted at n.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node, int) bool {
		total++
		return true
	})
	return total
}
