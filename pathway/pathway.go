// Package pathway models a student's learning pathway: a DAG of activities that
// unlock progressively as their predecessors are completed.
package pathway

import (
	"errors"
	"time"
)

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrGateClosed     = errors.New("node is locked")
	ErrMalformedGraph = errors.New("malformed graph")
)

// Field limits, in characters, matching the storage columns.
const (
	MaxIDLen          = 64
	MaxTitleLen       = 200
	MaxTopicLen       = 200
	MaxDescriptionLen = 2000
	MaxMotivationLen  = 1000
)

// PublicIDLength is the length of server-assigned nanoid ids.
const PublicIDLength = 12

// NodeKind only affects presentation.
type NodeKind string

const (
	KindVideo      NodeKind = "video"
	KindQuiz       NodeKind = "quiz"
	KindReading    NodeKind = "reading"
	KindExercise   NodeKind = "exercise"
	KindDiscussion NodeKind = "discussion"
)

func (k NodeKind) Valid() bool {
	switch k {
	case KindVideo, KindQuiz, KindReading, KindExercise, KindDiscussion:
		return true
	}
	return false
}

type Node struct {
	ID             string   `json:"id"`
	Kind           NodeKind `json:"type"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Topic          string   `json:"topic"`
	MotivationText string   `json:"motivationText"`
	Completed      bool     `json:"completed"`
	Unlocked       bool     `json:"unlocked"`
}

// Edge means completing Source unlocks Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type Pathway struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Node looks up a node by id.
func (p Pathway) Node(id string) (Node, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Clone returns a copy that shares no slices with p.
func (p Pathway) Clone() Pathway {
	out := p
	if p.Nodes != nil {
		out.Nodes = append([]Node(nil), p.Nodes...)
	}
	if p.Edges != nil {
		out.Edges = append([]Edge(nil), p.Edges...)
	}
	return out
}

// Roots returns the nodes with no incoming edge, in node order.
func Roots(p Pathway) []Node {
	targets := make(map[string]struct{}, len(p.Edges))
	for _, e := range p.Edges {
		targets[e.Target] = struct{}{}
	}
	var roots []Node
	for _, n := range p.Nodes {
		if _, ok := targets[n.ID]; !ok {
			roots = append(roots, n)
		}
	}
	return roots
}

// Successors returns the ids of the direct targets of id, in edge order.
func Successors(p Pathway, id string) []string {
	var out []string
	for _, e := range p.Edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Progress counts completed and unlocked nodes.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Unlocked  int `json:"unlocked"`
}

func (p Pathway) Progress() Progress {
	pr := Progress{Total: len(p.Nodes)}
	for _, n := range p.Nodes {
		if n.Completed {
			pr.Completed++
		}
		if n.Unlocked {
			pr.Unlocked++
		}
	}
	return pr
}
