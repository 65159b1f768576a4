package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/reductions/internal/graph"
	"github.com/roach88/reductions/internal/ir"
)

// ExportRecord is one export run joined with its snapshot's counts.
type ExportRecord struct {
	RunID      string `json:"run_id"`
	SnapshotID string `json:"snapshot_id"`
	Label      string `json:"label"`
	Seq        int64  `json:"seq"`
	NodeCount  int    `json:"node_count"`
	EdgeCount  int    `json:"edge_count"`
}

// ReadSnapshot rebuilds a stored snapshot from its node and edge rows.
// Returns an error wrapping sql.ErrNoRows if id is unknown.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (graph.Snapshot, error) {
	var snap graph.Snapshot
	if err := s.db.QueryRowContext(ctx, `
		SELECT version FROM snapshots WHERE id = ?
	`, id).Scan(&snap.Version); err != nil {
		return graph.Snapshot{}, fmt.Errorf("read snapshot %s: %w", id, err)
	}

	nodes, err := s.readNodes(ctx, id)
	if err != nil {
		return graph.Snapshot{}, err
	}
	edges, err := s.readEdges(ctx, id)
	if err != nil {
		return graph.Snapshot{}, err
	}
	snap.Nodes = nodes
	snap.Edges = edges
	return snap, nil
}

// ReadSnapshotBody returns the canonical JSON body stored for id.
func (s *Store) ReadSnapshotBody(ctx context.Context, id string) ([]byte, error) {
	var body string
	if err := s.db.QueryRowContext(ctx, `
		SELECT body FROM snapshots WHERE id = ?
	`, id).Scan(&body); err != nil {
		return nil, fmt.Errorf("read snapshot body %s: %w", id, err)
	}
	return []byte(body), nil
}

func (s *Store) readNodes(ctx context.Context, id string) ([]graph.SnapshotNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, variant, category
		FROM nodes
		WHERE snapshot_id = ?
		ORDER BY ord ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []graph.SnapshotNode{}
	for rows.Next() {
		var n graph.SnapshotNode
		var variant string
		if err := rows.Scan(&n.Name, &variant, &n.Category); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if n.Variant, err = unmarshalVariant(variant); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

func (s *Store) readEdges(ctx context.Context, id string) ([]graph.SnapshotEdge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, source_variant, target, target_variant, kind, overhead
		FROM edges
		WHERE snapshot_id = ?
		ORDER BY ord ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := []graph.SnapshotEdge{}
	for rows.Next() {
		var e graph.SnapshotEdge
		var sv, tv string
		var overhead sql.NullString
		if err := rows.Scan(&e.Source, &sv, &e.Target, &tv, &e.Kind, &overhead); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		if e.SourceVariant, err = unmarshalVariant(sv); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.Source, e.Target, err)
		}
		if e.TargetVariant, err = unmarshalVariant(tv); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.Source, e.Target, err)
		}
		if overhead.Valid {
			if err := json.Unmarshal([]byte(overhead.String), &e.Overhead); err != nil {
				return nil, fmt.Errorf("edge %s -> %s: unmarshal overhead: %w", e.Source, e.Target, err)
			}
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return edges, nil
}

// ListExports returns every export run, oldest first.
// Results are ordered by created_seq ASC, run_id ASC COLLATE BINARY.
// Returns an empty slice (not nil) when nothing was exported.
func (s *Store) ListExports(ctx context.Context) ([]ExportRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.run_id, e.snapshot_id, e.label, e.created_seq, s.node_count, s.edge_count
		FROM exports e
		JOIN snapshots s ON e.snapshot_id = s.id
		ORDER BY e.created_seq ASC, e.run_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	records := []ExportRecord{}
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return records, nil
}

// ReadExport returns a single export run by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadExport(ctx context.Context, runID string) (ExportRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT e.run_id, e.snapshot_id, e.label, e.created_seq, s.node_count, s.edge_count
		FROM exports e
		JOIN snapshots s ON e.snapshot_id = s.id
		WHERE e.run_id = ?
	`, runID)
	rec, err := scanExport(row)
	if err != nil {
		return ExportRecord{}, fmt.Errorf("read export %s: %w", runID, err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(row scanner) (ExportRecord, error) {
	var rec ExportRecord
	if err := row.Scan(&rec.RunID, &rec.SnapshotID, &rec.Label, &rec.Seq, &rec.NodeCount, &rec.EdgeCount); err != nil {
		return ExportRecord{}, fmt.Errorf("scan export: %w", err)
	}
	return rec, nil
}

func unmarshalVariant(data string) (ir.Variant, error) {
	v := make(ir.Variant)
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("unmarshal variant: %w", err)
	}
	return v, nil
}
