package pgx

import (
	"context"

	"meridian/pkg/knowledge"
)

// Statistics reports entity and relationship totals and per-type counts.
func (s *GraphDBStore) Statistics(ctx context.Context) (knowledge.GraphStatistics, error) {
	stats := knowledge.GraphStatistics{
		EntityTypes:       make(map[knowledge.EntityType]int64),
		RelationshipTypes: make(map[knowledge.RelationshipType]int64),
	}

	rows, err := s.conn.Query(ctx,
		`SELECT type, count(*) FROM entities GROUP BY type ORDER BY count(*) DESC`)
	if err != nil {
		return stats, err
	}
	for rows.Next() {
		var t knowledge.EntityType
		var count int64
		if err := rows.Scan(&t, &count); err != nil {
			rows.Close()
			return stats, err
		}
		stats.EntityTypes[t] = count
		stats.TotalEntities += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, err
	}

	rows, err = s.conn.Query(ctx,
		`SELECT type, count(*) FROM relationships GROUP BY type ORDER BY count(*) DESC`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var t knowledge.RelationshipType
		var count int64
		if err := rows.Scan(&t, &count); err != nil {
			return stats, err
		}
		stats.RelationshipTypes[t] = count
		stats.TotalRelationships += count
	}
	return stats, rows.Err()
}
