package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/reductions/internal/graph"
	"github.com/roach88/reductions/internal/ir"
)

// WriteSnapshot records one export run of snap under label and returns the
// new run ID and the snapshot's content hash.
//
// The snapshot body, nodes and edges are inserted with ON CONFLICT DO
// NOTHING: writing identical content again stores nothing new except the
// export row. Each call gets the next created_seq.
func (s *Store) WriteSnapshot(ctx context.Context, snap graph.Snapshot, label string) (runID, snapshotID string, err error) {
	snapshotID, err = snap.Hash()
	if err != nil {
		return "", "", fmt.Errorf("write snapshot: hash: %w", err)
	}
	body, err := snap.MarshalCanonical()
	if err != nil {
		return "", "", fmt.Errorf("write snapshot: marshal: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", "", fmt.Errorf("write snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(created_seq), 0) + 1 FROM exports`).Scan(&seq); err != nil {
		return "", "", fmt.Errorf("write snapshot: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, version, created_seq, node_count, edge_count, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, snapshotID, snap.Version, seq, len(snap.Nodes), len(snap.Edges), string(body))
	if err != nil {
		return "", "", fmt.Errorf("write snapshot: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return "", "", fmt.Errorf("write snapshot: rows affected: %w", err)
	}

	if inserted > 0 {
		if err := writeNodes(ctx, tx, snapshotID, snap.Nodes); err != nil {
			return "", "", err
		}
		if err := writeEdges(ctx, tx, snapshotID, snap.Edges); err != nil {
			return "", "", err
		}
	}

	runID = s.newID()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO exports (run_id, snapshot_id, label, created_seq)
		VALUES (?, ?, ?, ?)
	`, runID, snapshotID, label, seq); err != nil {
		return "", "", fmt.Errorf("write export run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", "", fmt.Errorf("write snapshot: commit: %w", err)
	}

	slog.Debug("snapshot exported",
		"run_id", runID,
		"snapshot_id", snapshotID,
		"new_content", inserted > 0,
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges),
	)
	return runID, snapshotID, nil
}

func writeNodes(ctx context.Context, tx *sql.Tx, snapshotID string, nodes []graph.SnapshotNode) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (snapshot_id, ord, name, variant, category)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write nodes: prepare: %w", err)
	}
	defer stmt.Close()

	for i, n := range nodes {
		variant, err := marshalVariant(n.Variant)
		if err != nil {
			return fmt.Errorf("write node %s: %w", n.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, snapshotID, i, n.Name, variant, n.Category); err != nil {
			return fmt.Errorf("write node %s: %w", n.Name, err)
		}
	}
	return nil
}

func writeEdges(ctx context.Context, tx *sql.Tx, snapshotID string, edges []graph.SnapshotEdge) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (snapshot_id, ord, source, source_variant, target, target_variant, kind, overhead)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write edges: prepare: %w", err)
	}
	defer stmt.Close()

	for i, e := range edges {
		sv, err := marshalVariant(e.SourceVariant)
		if err != nil {
			return fmt.Errorf("write edge %s -> %s: %w", e.Source, e.Target, err)
		}
		tv, err := marshalVariant(e.TargetVariant)
		if err != nil {
			return fmt.Errorf("write edge %s -> %s: %w", e.Source, e.Target, err)
		}
		overhead, err := marshalOverhead(e.Overhead)
		if err != nil {
			return fmt.Errorf("write edge %s -> %s: %w", e.Source, e.Target, err)
		}
		if _, err := stmt.ExecContext(ctx, snapshotID, i, e.Source, sv, e.Target, tv, e.Kind, overhead); err != nil {
			return fmt.Errorf("write edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}
	return nil
}

// marshalVariant stores a variant as canonical JSON. An empty variant is "{}".
func marshalVariant(v ir.Variant) (string, error) {
	data, err := ir.MarshalCanonical(v.IR())
	if err != nil {
		return "", fmt.Errorf("marshal variant: %w", err)
	}
	return string(data), nil
}

// marshalOverhead stores formulas as canonical JSON, or NULL for casts.
func marshalOverhead(formulas map[string]string) (sql.NullString, error) {
	if formulas == nil {
		return sql.NullString{}, nil
	}
	obj := make(ir.Object, len(formulas))
	for field, formula := range formulas {
		obj[field] = ir.String(formula)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal overhead: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
