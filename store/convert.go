package store

import (
	"github.com/andrewpaige1/eduengage-api/models"
	"github.com/andrewpaige1/eduengage-api/pathway"
	"github.com/andrewpaige1/eduengage-api/synthesis"
)

func pathwayRow(p pathway.Pathway, userID uint) models.Pathway {
	row := models.Pathway{
		PublicID:    p.ID,
		Title:       p.Title,
		Description: p.Description,
		UserID:      userID,
		Nodes:       make([]models.PathwayNode, 0, len(p.Nodes)),
		Edges:       make([]models.PathwayEdge, 0, len(p.Edges)),
	}
	if !p.CreatedAt.IsZero() {
		row.CreatedAt = p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		row.UpdatedAt = p.UpdatedAt
	}
	for i, n := range p.Nodes {
		row.Nodes = append(row.Nodes, models.PathwayNode{
			NodeKey:        n.ID,
			Ordinal:        i,
			Kind:           string(n.Kind),
			Title:          n.Title,
			Description:    n.Description,
			Topic:          n.Topic,
			MotivationText: n.MotivationText,
			Completed:      n.Completed,
			Unlocked:       n.Unlocked,
		})
	}
	for i, e := range p.Edges {
		row.Edges = append(row.Edges, models.PathwayEdge{
			SourceKey: e.Source,
			TargetKey: e.Target,
			Ordinal:   i,
		})
	}
	return row
}

func pathwayFromRow(row models.Pathway) pathway.Pathway {
	p := pathway.Pathway{
		ID:          row.PublicID,
		OwnerID:     row.User.Auth0ID,
		Title:       row.Title,
		Description: row.Description,
		Nodes:       make([]pathway.Node, 0, len(row.Nodes)),
		Edges:       make([]pathway.Edge, 0, len(row.Edges)),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, n := range row.Nodes {
		p.Nodes = append(p.Nodes, pathway.Node{
			ID:             n.NodeKey,
			Kind:           pathway.NodeKind(n.Kind),
			Title:          n.Title,
			Description:    n.Description,
			Topic:          n.Topic,
			MotivationText: n.MotivationText,
			Completed:      n.Completed,
			Unlocked:       n.Unlocked,
		})
	}
	for _, e := range row.Edges {
		p.Edges = append(p.Edges, pathway.Edge{Source: e.SourceKey, Target: e.TargetKey})
	}
	return p
}

func synthesisRow(s synthesis.Synthesis, userID uint) models.Synthesis {
	row := models.Synthesis{
		PublicID:     s.ID,
		DiscussionID: s.DiscussionID,
		Title:        s.Title,
		Summary:      s.Summary,
		UserID:       userID,
		Nodes:        make([]models.SynthesisNode, 0, len(s.Nodes)),
		Edges:        make([]models.SynthesisEdge, 0, len(s.Edges)),
	}
	if !s.CreatedAt.IsZero() {
		row.CreatedAt = s.CreatedAt
	}
	for i, n := range s.Nodes {
		row.Nodes = append(row.Nodes, models.SynthesisNode{
			NodeKey:  n.ID,
			Ordinal:  i,
			Label:    n.Label,
			Summary:  n.Summary,
			Category: n.Category,
		})
	}
	for i, e := range s.Edges {
		row.Edges = append(row.Edges, models.SynthesisEdge{
			SourceKey: e.Source,
			TargetKey: e.Target,
			Label:     e.Label,
			Ordinal:   i,
		})
	}
	return row
}

func synthesisFromRow(row models.Synthesis) synthesis.Synthesis {
	s := synthesis.Synthesis{
		ID:           row.PublicID,
		DiscussionID: row.DiscussionID,
		OwnerID:      row.User.Auth0ID,
		Title:        row.Title,
		Summary:      row.Summary,
		Nodes:        make([]synthesis.Node, 0, len(row.Nodes)),
		Edges:        make([]synthesis.Edge, 0, len(row.Edges)),
		CreatedAt:    row.CreatedAt,
	}
	for _, n := range row.Nodes {
		s.Nodes = append(s.Nodes, synthesis.Node{ID: n.NodeKey, Label: n.Label, Summary: n.Summary, Category: n.Category})
	}
	for _, e := range row.Edges {
		s.Edges = append(s.Edges, synthesis.Edge{Source: e.SourceKey, Target: e.TargetKey, Label: e.Label})
	}
	return s
}
