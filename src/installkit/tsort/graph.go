/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

//Package tsort orders the vertices of a directed graph such that every edge
//points forward, or reports that no such order exists.
package tsort

import (
	"errors"
	"fmt"
)

//ErrCyclicGraph is returned by Sort when the graph contains a cycle.
var ErrCyclicGraph = errors.New("graph contains a cycle")

//ErrUnknownVertex is returned by New when an edge mentions an item that is
//not part of the item list.
var ErrUnknownVertex = errors.New("edge refers to unknown vertex")

//Edge is a directed edge. In a topological order, Parent always comes before
//Child.
type Edge[T comparable] struct {
	Parent T
	Child  T
}

//Graph is a finite set of items plus directed edges between them. The zero
//value is an empty graph.
type Graph[T comparable] struct {
	items    []T
	edges    []Edge[T]
	incoming map[T]int
	outgoing map[T][]T
}

//New builds a graph from the given items and edges. Repeated items are
//collapsed into their first occurrence. Repeated edges are kept, and each
//copy counts towards the in-degree of its child.
func New[T comparable](items []T, edges []Edge[T]) (*Graph[T], error) {
	g := &Graph[T]{
		items:    make([]T, 0, len(items)),
		edges:    make([]Edge[T], 0, len(edges)),
		incoming: make(map[T]int, len(items)),
		outgoing: make(map[T][]T, len(items)),
	}

	for _, item := range items {
		if _, exists := g.incoming[item]; exists {
			continue
		}
		g.incoming[item] = 0
		g.items = append(g.items, item)
	}

	for _, e := range edges {
		if _, ok := g.incoming[e.Parent]; !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnknownVertex, e.Parent)
		}
		if _, ok := g.incoming[e.Child]; !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnknownVertex, e.Child)
		}
		g.incoming[e.Child]++
		g.outgoing[e.Parent] = append(g.outgoing[e.Parent], e.Child)
		g.edges = append(g.edges, e)
	}

	return g, nil
}

//Items returns the (deduplicated) items of this graph in the order in which
//they were given to New.
func (g *Graph[T]) Items() []T {
	return append([]T(nil), g.items...)
}

//Edges returns the edges of this graph in the order in which they were given
//to New.
func (g *Graph[T]) Edges() []Edge[T] {
	return append([]Edge[T](nil), g.edges...)
}

//InDegree returns the number of edges pointing at the given item.
func (g *Graph[T]) InDegree(item T) int {
	return g.incoming[item]
}

//Sort returns the items of this graph in a topological order, i.e. for every
//edge, the parent comes before the child. Which of the valid orders is
//returned is unspecified. The graph itself is not modified, so Sort can be
//called repeatedly.
func (g *Graph[T]) Sort() ([]T, error) {
	if len(g.items) == 0 {
		return []T{}, nil
	}

	//work on a copy of the in-degrees; the outgoing lists are only read, and
	//each list is consumed exactly once (when its parent is emitted), which
	//is equivalent to removing the edges
	incoming := make(map[T]int, len(g.incoming))
	for item, count := range g.incoming {
		incoming[item] = count
	}

	var worklist []T
	for _, item := range g.items {
		if incoming[item] == 0 {
			worklist = append(worklist, item)
		}
	}
	if len(worklist) == 0 {
		return nil, fmt.Errorf("%w: no vertex without incoming edges", ErrCyclicGraph)
	}

	order := make([]T, 0, len(g.items))
	visited := make(map[T]bool, len(g.items))
	for len(worklist) > 0 {
		item := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if visited[item] {
			return nil, fmt.Errorf("%w: %v reached twice", ErrCyclicGraph, item)
		}
		visited[item] = true
		order = append(order, item)

		for _, child := range g.outgoing[item] {
			incoming[child]--
			if incoming[child] == 0 {
				worklist = append(worklist, child)
			}
		}
	}

	if len(order) < len(g.items) {
		return nil, fmt.Errorf("%w: %d of %d vertices are part of or behind a cycle",
			ErrCyclicGraph, len(g.items)-len(order), len(g.items),
		)
	}
	return order, nil
}

//Verify checks that the given order contains every item of this graph
//exactly once, and that every edge points forward in it.
func (g *Graph[T]) Verify(order []T) error {
	position := make(map[T]int, len(order))
	for idx, item := range order {
		if _, ok := g.incoming[item]; !ok {
			return fmt.Errorf("%w: %v", ErrUnknownVertex, item)
		}
		if _, seen := position[item]; seen {
			return fmt.Errorf("item %v appears more than once", item)
		}
		position[item] = idx
	}
	if len(position) != len(g.items) {
		return fmt.Errorf("order has %d items, but graph has %d", len(position), len(g.items))
	}

	for _, e := range g.edges {
		if position[e.Parent] >= position[e.Child] {
			return fmt.Errorf("edge %v -> %v points backwards", e.Parent, e.Child)
		}
	}
	return nil
}

//Sort is a shorthand for New followed by Graph.Sort.
func Sort[T comparable](items []T, edges []Edge[T]) ([]T, error) {
	g, err := New(items, edges)
	if err != nil {
		return nil, err
	}
	return g.Sort()
}
