package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphQuerier reads key coverage back from the graph.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// MissingKeys returns, per resource, the keys some other resource defines but it does not.
func (gq *GraphQuerier) MissingKeys(ctx context.Context) (map[string][]string, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (r:Resource), (k:LangKey)
		WHERE NOT (r)-[:DEFINES]->(k)
		RETURN r.id AS resource, k.name AS key
		ORDER BY resource, key
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("query missing keys: %w", err)
	}

	missing := make(map[string][]string)
	for result.Next(ctx) {
		record := result.Record()
		resource, _ := record.Get("resource")
		key, _ := record.Get("key")
		id := fmt.Sprintf("%v", resource)
		missing[id] = append(missing[id], fmt.Sprintf("%v", key))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read missing keys: %w", err)
	}

	return missing, nil
}

// KeyUsage returns how many resources define each key.
func (gq *GraphQuerier) KeyUsage(ctx context.Context) (map[string]int, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (k:LangKey)
		OPTIONAL MATCH (r:Resource)-[:DEFINES]->(k)
		RETURN k.name AS key, count(r) AS resources
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("query key usage: %w", err)
	}

	usage := make(map[string]int)
	for result.Next(ctx) {
		record := result.Record()
		key, _ := record.Get("key")
		count, _ := record.Get("resources")
		n, _ := count.(int64)
		usage[fmt.Sprintf("%v", key)] = int(n)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read key usage: %w", err)
	}

	return usage, nil
}
