package graph

import (
	"sort"
	"strings"
)

type color uint8

const (
	white color = iota
	gray
	black
)

// Graph is a name to dependency names adjacency structure
type Graph map[string][]string

// Cycle represents a closed path, first node repeated at the end
type Cycle struct {
	Path []string
}

// String returns path joined with arrows
func (c Cycle) String() string {
	return strings.Join(c.Path, " -> ")
}

// Members returns distinct cycle nodes
func (c Cycle) Members() []string {
	if len(c.Path) < 2 {
		return c.Path
	}
	return c.Path[:len(c.Path)-1]
}

// Start returns the node the cycle was entered from, used to attribute the diagnostic
func (c Cycle) Start() string {
	if len(c.Path) == 0 {
		return ""
	}
	return c.Path[0]
}

type frame struct {
	node string
	next int
}

// Nodes returns sorted graph nodes
func (g Graph) Nodes() []string {
	result := make([]string, 0, len(g))
	for node := range g {
		result = append(result, node)
	}
	sort.Strings(result)
	return result
}

// Cycles runs an explicit-stack three-colour depth-first search from every node in name order
// and returns one cycle per back edge. Edges to nodes outside the graph are ignored.
func (g Graph) Cycles() []Cycle {
	colors := make(map[string]color, len(g))
	var result []Cycle
	for _, start := range g.Nodes() {
		if colors[start] != white {
			continue
		}
		result = append(result, g.visit(start, colors, nil)...)
	}
	return result
}

// Members returns all nodes on any cycle
func (g Graph) Members() map[string]bool {
	result := map[string]bool{}
	for _, cycle := range g.Cycles() {
		for _, node := range cycle.Members() {
			result[node] = true
		}
	}
	return result
}

// PostOrder returns nodes reachable from start, dependencies first, start last.
// Nodes on a back edge are visited once.
func (g Graph) PostOrder(start string) []string {
	colors := map[string]color{}
	var result []string
	g.visit(start, colors, func(node string) {
		result = append(result, node)
	})
	return result
}

// Order returns every node once, dependencies first, walking roots in name order with one shared colour map
func (g Graph) Order() []string {
	colors := make(map[string]color, len(g))
	result := make([]string, 0, len(g))
	for _, start := range g.Nodes() {
		if colors[start] != white {
			continue
		}
		g.visit(start, colors, func(node string) {
			result = append(result, node)
		})
	}
	return result
}

func (g Graph) visit(start string, colors map[string]color, done func(node string)) []Cycle {
	var result []Cycle
	stack := []*frame{{node: start}}
	colors[start] = gray
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		edges := g[top.node]
		if top.next >= len(edges) {
			colors[top.node] = black
			stack = stack[:len(stack)-1]
			if done != nil {
				done(top.node)
			}
			continue
		}
		next := edges[top.next]
		top.next++
		if _, ok := g[next]; !ok && done == nil {
			continue
		}
		switch colors[next] {
		case white:
			colors[next] = gray
			stack = append(stack, &frame{node: next})
		case gray:
			result = append(result, Cycle{Path: path(stack, next)})
		}
	}
	return result
}

func path(stack []*frame, target string) []string {
	index := 0
	for i, f := range stack {
		if f.node == target {
			index = i
			break
		}
	}
	result := make([]string, 0, len(stack)-index+1)
	for _, f := range stack[index:] {
		result = append(result, f.node)
	}
	return append(result, target)
}
