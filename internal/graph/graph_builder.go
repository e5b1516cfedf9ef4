package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/Skidy89/simple-language-loader/internal/interpolation"
	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/parser"
	"github.com/Skidy89/simple-language-loader/internal/textutil"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// GraphBuilder mirrors lang tables into Neo4j as (:Resource)-[:DEFINES]->(:LangKey).
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// Connect opens a driver and verifies connectivity.
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}

// EnsureSchema creates uniqueness constraints for resources and keys.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (r:Resource) REQUIRE r.id IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (k:LangKey) REQUIRE k.name IS UNIQUE",
	}
	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Debug().Msg("Graph schema ensured")
	return nil
}

const syncResourceCypher = `
MERGE (r:Resource {id: $id})
WITH r
OPTIONAL MATCH (r)-[old:DEFINES]->(:LangKey)
DELETE old
WITH DISTINCT r
UNWIND $entries AS e
MERGE (k:LangKey {name: e.key})
MERGE (r)-[d:DEFINES]->(k)
SET d.kind = e.kind,
    d.placeholders = e.placeholders,
    d.checksum = e.checksum
`

const pruneResourcesCypher = `
MATCH (r:Resource)
WHERE NOT r.id IN $ids
DETACH DELETE r
`

const pruneKeysCypher = `
MATCH (k:LangKey)
WHERE NOT ()-[:DEFINES]->(k)
DELETE k
`

type statement struct {
	cypher string
	params map[string]any
}

// Sync makes the graph mirror table: every resource's DEFINES edges are
// replaced, then resources absent from table and keys no resource defines are removed.
func (gb *GraphBuilder) Sync(ctx context.Context, table loader.Table) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range syncStatements(table) {
			if _, err := tx.Run(ctx, st.cypher, st.params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("sync coverage graph: %w", err)
	}

	log.Info().Int("resources", len(table)).Msg("Synced coverage graph")
	return nil
}

// syncStatements lists the statements Sync runs, in order.
func syncStatements(table loader.Table) []statement {
	ids := table.Resources()
	stmts := make([]statement, 0, len(ids)+2)
	for _, id := range ids {
		stmts = append(stmts, statement{
			cypher: syncResourceCypher,
			params: map[string]any{"id": id, "entries": entryParams(table[id])},
		})
	}
	return append(stmts,
		statement{cypher: pruneResourcesCypher, params: map[string]any{"ids": ids}},
		statement{cypher: pruneKeysCypher},
	)
}

// entryParams converts a raw table into UNWIND rows, sorted by key.
func entryParams(raw parser.RawTable) []map[string]any {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		value := raw[key]
		placeholders := interpolation.Placeholders(value)
		if placeholders == nil {
			placeholders = []string{}
		}
		rows = append(rows, map[string]any{
			"key":          key,
			"kind":         parser.Decode(value).Kind.String(),
			"placeholders": placeholders,
			"checksum":     textutil.Hash(value),
		})
	}
	return rows
}
