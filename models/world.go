package models

import (
	"encoding/json"
	"sort"
	"time"
)

// NodeType classifies a free-roam node.
type NodeType string

const (
	NodeStart    NodeType = "START"
	NodeBoss     NodeType = "BOSS"
	NodeShop     NodeType = "SHOP"
	NodeCombat   NodeType = "COMBAT"
	NodeTreasure NodeType = "TREASURE"
	NodeEvent    NodeType = "EVENT"
)

// DefaultTargetNodes is the node count an area is sized for (a full 7x7 grid).
const DefaultTargetNodes = 49

// Area is one free-roam grid instance belonging to one owner.
type Area struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Sequence      int             `json:"sequence"`
	ThemeKey      string          `json:"theme_key"`
	TargetNodes   int             `json:"target_nodes"`
	NodesExplored int             `json:"nodes_explored"`
	Completed     bool            `json:"completed"`
	Nodes         map[Coord]*Node `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Node is one traversable cell of an Area.
// Type, coordinate and connections never change after generation.
type Node struct {
	Coord       Coord      `json:"coord"`
	Type        NodeType   `json:"type"`
	Connections []Coord    `json:"connections"`
	Unlocked    bool       `json:"unlocked"`
	Completed   bool       `json:"completed"`
	Objective   *Objective `json:"objective,omitempty"`
}

// Key is the node id within its area.
func (n *Node) Key() string {
	return n.Coord.Key()
}

// ConnectedTo reports whether c is in the node's connection set.
func (n *Node) ConnectedTo(c Coord) bool {
	for _, other := range n.Connections {
		if other == c {
			return true
		}
	}
	return false
}

// Node returns the node at c, or nil.
func (a *Area) Node(c Coord) *Node {
	if a.Nodes == nil {
		return nil
	}
	return a.Nodes[c]
}

// NodeOfType returns the first node of type t in coordinate order.
func (a *Area) NodeOfType(t NodeType) *Node {
	for _, n := range a.SortedNodes() {
		if n.Type == t {
			return n
		}
	}
	return nil
}

// SortedNodes returns the nodes ordered by y, then x.
func (a *Area) SortedNodes() []*Node {
	nodes := make([]*Node, 0, len(a.Nodes))
	for _, n := range a.Nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return CoordLess(nodes[i].Coord, nodes[j].Coord)
	})
	return nodes
}

// CoordLess orders coordinates by y, then x.
func CoordLess(a, b Coord) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// SortCoords sorts coordinates in place with CoordLess.
func SortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool { return CoordLess(cs[i], cs[j]) })
}

type areaAlias Area

// MarshalJSON encodes the node map as a list sorted by coordinate.
func (a Area) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		*areaAlias
		Nodes []*Node `json:"nodes"`
	}{
		areaAlias: (*areaAlias)(&a),
		Nodes:     a.SortedNodes(),
	})
}

func (a *Area) UnmarshalJSON(data []byte) error {
	aux := struct {
		*areaAlias
		Nodes []*Node `json:"nodes"`
	}{areaAlias: (*areaAlias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Nodes = make(map[Coord]*Node, len(aux.Nodes))
	for _, n := range aux.Nodes {
		a.Nodes[n.Coord] = n
	}
	return nil
}
