// Package generator builds initial pathways for a student profile.
package generator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/andrewpaige1/eduengage-api/pathway"
)

var ErrEmptyProfile = errors.New("profile has no weaknesses or interests")

// maxTopicLen bounds each profile entry so derived titles stay within pathway.MaxTitleLen.
const maxTopicLen = 100

type Request struct {
	StudentID        string   `json:"studentId"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Interests        []string `json:"interests"`
	RecentActivities []string `json:"recentActivities"`
}

// Generator produces a fully formed pathway with at least one unlocked root.
type Generator interface {
	Generate(ctx context.Context, req Request) (pathway.Pathway, error)
}

// CurriculumGenerator lays out one practice branch per weakness and one
// discussion per interest, all hanging off an orientation node and joined by a capstone.
type CurriculumGenerator struct {
	Now   func() time.Time
	NewID func() (string, error)
}

func NewCurriculumGenerator() *CurriculumGenerator {
	return &CurriculumGenerator{
		Now:   time.Now,
		NewID: func() (string, error) { return gonanoid.New(pathway.PublicIDLength) },
	}
}

func (g *CurriculumGenerator) Generate(ctx context.Context, req Request) (pathway.Pathway, error) {
	if err := ctx.Err(); err != nil {
		return pathway.Pathway{}, err
	}
	weaknesses := clean(req.Weaknesses)
	interests := clean(req.Interests)
	if len(weaknesses) == 0 && len(interests) == 0 {
		return pathway.Pathway{}, ErrEmptyProfile
	}
	strengths := clean(req.Strengths)

	b := &builder{newID: g.NewID}
	root := b.add(pathway.Node{
		Kind:           pathway.KindReading,
		Title:          "Orientation",
		Description:    orientationText(strengths, req.RecentActivities),
		Topic:          "study habits",
		MotivationText: "Start here: a quick look at where you are and where you're going.",
		Unlocked:       true,
	})

	var tails []string
	for _, topic := range weaknesses {
		read := b.add(pathway.Node{
			Kind:           pathway.KindReading,
			Title:          "Foundations of " + topic,
			Description:    "Core ideas and vocabulary for " + topic + ".",
			Topic:          topic,
			MotivationText: "Every expert started with the basics.",
		})
		practice := b.add(pathway.Node{
			Kind:           pathway.KindExercise,
			Title:          topic + " practice",
			Description:    "Guided problems on " + topic + ".",
			Topic:          topic,
			MotivationText: "Mistakes here are how the idea sticks.",
		})
		check := b.add(pathway.Node{
			Kind:           pathway.KindQuiz,
			Title:          topic + " check-in",
			Description:    "A short quiz to confirm your grasp of " + topic + ".",
			Topic:          topic,
			MotivationText: "Show yourself how far you've come.",
		})
		b.link(root, read)
		b.link(read, practice)
		b.link(practice, check)
		tails = append(tails, check)
	}
	for _, topic := range interests {
		talk := b.add(pathway.Node{
			Kind:           pathway.KindDiscussion,
			Title:          "Talk about " + topic,
			Description:    "Share what draws you to " + topic + " with your peers.",
			Topic:          topic,
			MotivationText: "Curiosity is contagious.",
		})
		b.link(root, talk)
		tails = append(tails, talk)
	}

	capstone := b.add(pathway.Node{
		Kind:           pathway.KindVideo,
		Title:          "Bringing it together",
		Description:    "A recap connecting everything on this pathway.",
		Topic:          summarize(slices.Concat(weaknesses, interests), pathway.MaxTopicLen),
		MotivationText: "Look back at the ground you covered.",
	})
	for _, t := range tails {
		b.link(t, capstone)
	}
	if b.err != nil {
		return pathway.Pathway{}, fmt.Errorf("generate node id: %w", b.err)
	}

	id, err := g.NewID()
	if err != nil {
		return pathway.Pathway{}, fmt.Errorf("generate pathway id: %w", err)
	}
	now := g.Now().UTC()
	p := pathway.Pathway{
		ID:          id,
		OwnerID:     req.StudentID,
		Title:       "Personal pathway",
		Description: "Built from your current strengths, gaps and interests.",
		Nodes:       b.nodes,
		Edges:       b.edges,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := pathway.ValidateFresh(p); err != nil {
		return pathway.Pathway{}, err
	}
	return p, nil
}

type builder struct {
	newID func() (string, error)
	nodes []pathway.Node
	edges []pathway.Edge
	err   error
}

func (b *builder) add(n pathway.Node) string {
	if b.err != nil {
		return ""
	}
	id, err := b.newID()
	if err != nil {
		b.err = err
		return ""
	}
	n.ID = id
	b.nodes = append(b.nodes, n)
	return id
}

func (b *builder) link(source, target string) {
	if b.err != nil {
		return
	}
	b.edges = append(b.edges, pathway.Edge{Source: source, Target: target})
}

func clean(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = truncate(strings.TrimSpace(s), maxTopicLen)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func orientationText(strengths, recent []string) string {
	var sb strings.Builder
	sb.WriteString("How this pathway works.")
	if len(strengths) > 0 {
		sb.WriteString(" You already do well in " + summarize(strengths, pathway.MaxDescriptionLen/2) + ".")
	}
	if n := len(recent); n > 0 {
		sb.WriteString(fmt.Sprintf(" Picking up after %d recent activities.", n))
	}
	return sb.String()
}

// summarize joins topics as "a, b and c" when that fits in limit characters,
// otherwise keeps as many as fit and ends with "and N more".
func summarize(topics []string, limit int) string {
	if full := joinTopics(topics); utf8.RuneCountInString(full) <= limit {
		return full
	}
	for keep := len(topics) - 1; keep >= 1; keep-- {
		s := strings.Join(topics[:keep], ", ") + fmt.Sprintf(" and %d more", len(topics)-keep)
		if utf8.RuneCountInString(s) <= limit {
			return s
		}
	}
	return truncate(topics[0], limit)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func joinTopics(topics []string) string {
	switch len(topics) {
	case 0:
		return ""
	case 1:
		return topics[0]
	}
	return strings.Join(topics[:len(topics)-1], ", ") + " and " + topics[len(topics)-1]
}
