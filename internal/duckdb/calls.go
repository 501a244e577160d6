package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/panguess/internal/attr"
)

// MethodStats summarizes the calls of one prediction method.
type MethodStats struct {
	Method        string
	Calls         int64
	InternalStops int64
	MeanIntrons   float64
	MeanLength    float64
}

// ContigStats summarizes the calls on one contig.
type ContigStats struct {
	ContigID     string
	Calls        int64
	CoveredBases int64 // Sum of call lengths; overlapping calls count twice
}

// WriteCalls batch-inserts records using the Appender API.
func (s *Store) WriteCalls(records []attr.Record) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "gene_calls")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		if err := appender.AppendRow(
			r.ContigID, r.GeneID, r.Start, r.End,
			r.Origin.Method.String(), r.Origin.ID,
			r.InternalStop, int64(r.Introns), r.SourceTag,
		); err != nil {
			return fmt.Errorf("append gene call %s: %w", r.GeneID, err)
		}
	}

	return appender.Flush()
}

// ClearCalls removes all loaded calls.
func (s *Store) ClearCalls() error {
	_, err := s.db.Exec("DELETE FROM gene_calls")
	return err
}

// CountCalls returns the number of loaded calls.
func (s *Store) CountCalls() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT count(*) FROM gene_calls").Scan(&n); err != nil {
		return 0, fmt.Errorf("count gene calls: %w", err)
	}
	return n, nil
}

// MethodSummary returns per-method statistics ordered by method name.
func (s *Store) MethodSummary() ([]MethodStats, error) {
	rows, err := s.db.Query(`SELECT
		method,
		count(*),
		count(*) FILTER (WHERE internal_stop),
		avg(introns)::DOUBLE,
		avg(end_pos - start_pos + 1)::DOUBLE
		FROM gene_calls
		GROUP BY method
		ORDER BY method`)
	if err != nil {
		return nil, fmt.Errorf("query method summary: %w", err)
	}
	defer rows.Close()

	var stats []MethodStats
	for rows.Next() {
		var m MethodStats
		if err := rows.Scan(&m.Method, &m.Calls, &m.InternalStops, &m.MeanIntrons, &m.MeanLength); err != nil {
			return nil, fmt.Errorf("scan method summary: %w", err)
		}
		stats = append(stats, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate method summary: %w", err)
	}
	return stats, nil
}

// ContigSummary returns per-contig statistics ordered by contig id.
func (s *Store) ContigSummary() ([]ContigStats, error) {
	rows, err := s.db.Query(`SELECT
		contig_id,
		count(*),
		sum(end_pos - start_pos + 1)::BIGINT
		FROM gene_calls
		GROUP BY contig_id
		ORDER BY contig_id`)
	if err != nil {
		return nil, fmt.Errorf("query contig summary: %w", err)
	}
	defer rows.Close()

	var stats []ContigStats
	for rows.Next() {
		var c ContigStats
		if err := rows.Scan(&c.ContigID, &c.Calls, &c.CoveredBases); err != nil {
			return nil, fmt.Errorf("scan contig summary: %w", err)
		}
		stats = append(stats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contig summary: %w", err)
	}
	return stats, nil
}
