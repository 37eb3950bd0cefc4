// Package neo4j publishes resolved topology graphs to a Neo4j database.
// Nodes become (:RailNode), track segments [:SEGMENT] relationships and
// objects (:RailObject) nodes linked [:AT] to the node that starts their segment.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"railio/internal/domain"
	"railio/internal/ports"
)

// Publisher implements ports.GraphPublisher on a Neo4j driver
type Publisher struct {
	driver neo4j.DriverWithContext
}

var _ ports.GraphPublisher = (*Publisher)(nil)

// New wraps an existing driver
func New(driver neo4j.DriverWithContext) *Publisher {
	return &Publisher{driver: driver}
}

// Connect opens a driver with basic auth and verifies connectivity
func Connect(ctx context.Context, uri, user, password string) (*Publisher, error) {
	auth := neo4j.NoAuth()
	if user != "" {
		auth = neo4j.BasicAuth(user, password, "")
	}
	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j at %s: %w", uri, err)
	}
	return New(driver), nil
}

// Close closes the driver
func (p *Publisher) Close(ctx context.Context) error {
	return p.driver.Close(ctx)
}

// Publish replaces the graph stored for model.Source in one write transaction
func (p *Publisher) Publish(ctx context.Context, model *domain.RailwayModel) (*domain.PublishStats, error) {
	if model == nil || model.Graph == nil {
		return nil, fmt.Errorf("failed to publish: model has no topology")
	}
	start := time.Now()
	params := Params(model)

	sess := p.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range statements {
			if _, err := tx.Run(ctx, stmt, params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write graph of %s: %w", model.Source, err)
	}

	return &domain.PublishStats{
		Nodes:    len(model.Graph.Nodes),
		Edges:    len(model.Graph.Edges),
		Objects:  len(model.Objects),
		Duration: time.Since(start),
	}, nil
}

// statements run in order with the parameters built by Params
var statements = []string{
	`MATCH (n {source: $source}) WHERE n:RailNode OR n:RailObject DETACH DELETE n`,
	`UNWIND $nodes AS row
	 CREATE (n:RailNode {source: $source})
	 SET n += row`,
	`UNWIND $edges AS row
	 MATCH (a:RailNode {source: $source, id: row.from}), (b:RailNode {source: $source, id: row.to})
	 CREATE (a)-[r:SEGMENT]->(b)
	 SET r.track = row.track, r.fromPort = row.fromPort, r.toPort = row.toPort,
	     r.start = row.start, r.end = row.end, r.length = row.length`,
	`UNWIND $objects AS row
	 CREATE (o:RailObject {source: $source})
	 SET o.id = row.id, o.kind = row.kind, o.track = row.track, o.pos = row.pos,
	     o.mileage = row.mileage, o.name = row.name
	 WITH o, row WHERE row.at <> ''
	 MATCH (n:RailNode {source: $source, id: row.at})
	 CREATE (o)-[:AT {offset: row.offset}]->(n)`,
}

// Params builds the query parameters for a model
func Params(model *domain.RailwayModel) map[string]any {
	g := model.Graph

	nodes := make([]map[string]any, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		row := map[string]any{
			"id":    n.ID,
			"kind":  string(n.Kind),
			"track": n.TrackID,
			"pos":   n.Pos,
		}
		if n.DeviatingSide != "" {
			row["deviatingSide"] = n.DeviatingSide
		}
		if n.MacroID != "" {
			row["macro"] = n.MacroID
		}
		if pt, ok := n.GeoCoord.Point(); ok {
			row["x"], row["y"] = pt[0], pt[1]
		}
		nodes = append(nodes, row)
	}

	edges := make([]map[string]any, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, map[string]any{
			"from":     g.Nodes[e.From].ID,
			"to":       g.Nodes[e.To].ID,
			"track":    e.TrackID,
			"fromPort": string(e.FromPort),
			"toPort":   string(e.ToPort),
			"start":    e.Start,
			"end":      e.End,
			"length":   e.Length(),
		})
	}

	objects := make([]map[string]any, 0, len(model.Objects))
	for _, o := range model.Objects {
		row := map[string]any{
			"id":      o.ID,
			"kind":    string(o.Kind),
			"track":   o.TrackID,
			"pos":     o.Pos,
			"mileage": o.Mileage,
			"name":    o.Name,
			"at":      "",
			"offset":  0.0,
		}
		if o.Positioned {
			if e, ok := segmentOf(g, o.TrackID, o.Pos); ok {
				row["at"] = g.Nodes[e.From].ID
				row["offset"] = o.Pos - e.Start
			}
		}
		objects = append(objects, row)
	}

	return map[string]any{
		"source":  model.Source,
		"nodes":   nodes,
		"edges":   edges,
		"objects": objects,
	}
}

// segmentOf finds the segment of a track containing pos
func segmentOf(g *domain.Graph, trackID string, pos float64) (domain.Edge, bool) {
	for _, e := range g.TrackEdges(trackID) {
		if pos >= e.Start && pos <= e.End {
			return e, true
		}
	}
	return domain.Edge{}, false
}
