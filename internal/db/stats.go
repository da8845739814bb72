package db

import (
	"fmt"
)

// DayCount is the number of searches executed on one UTC calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// QueryCount is how many times a dork query was executed.
type QueryCount struct {
	DorkQuery string `json:"dork_query"`
	Count     int    `json:"count"`
}

var countTables = map[string]string{
	"projects": "SELECT COUNT(*) FROM projects",
	"searches": "SELECT COUNT(*) FROM searches",
	"results":  "SELECT COUNT(*) FROM results",
}

// CountRows returns the number of rows in one of the countable tables.
func CountRows(q Querier, table string) (int, error) {
	query, ok := countTables[table]
	if !ok {
		return 0, fmt.Errorf("count rows: unknown table %q", table)
	}
	var n int
	if err := q.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// CountFindingsByStatus returns the number of findings in the given state.
func CountFindingsByStatus(q Querier, status string) (int, error) {
	var n int
	if err := q.QueryRow("SELECT COUNT(*) FROM findings WHERE status = ?", status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count findings: %w", err)
	}
	return n, nil
}

// CountSearchesSince returns the number of searches executed at or after since.
func CountSearchesSince(q Querier, since int64) (int, error) {
	var n int
	if err := q.QueryRow("SELECT COUNT(*) FROM searches WHERE executed_at >= ?", since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count searches: %w", err)
	}
	return n, nil
}

// SearchesPerDay groups searches executed at or after since by UTC day, oldest first.
func SearchesPerDay(q Querier, since int64) ([]DayCount, error) {
	rows, err := q.Query(`
		SELECT date(executed_at, 'unixepoch') AS day, COUNT(*)
		FROM searches
		WHERE executed_at >= ?
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, fmt.Errorf("searches per day: %w", err)
	}
	defer func() { _ = rows.Close() }()

	days := []DayCount{}
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// TopDorkQueries returns the most executed queries since the given time.
// Ties are broken by query text.
func TopDorkQueries(q Querier, since int64, limit int) ([]QueryCount, error) {
	rows, err := q.Query(`
		SELECT dork_query, COUNT(*) AS n
		FROM searches
		WHERE executed_at >= ?
		GROUP BY dork_query
		ORDER BY n DESC, dork_query
		LIMIT ?
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top dork queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	top := []QueryCount{}
	for rows.Next() {
		var c QueryCount
		if err := rows.Scan(&c.DorkQuery, &c.Count); err != nil {
			return nil, fmt.Errorf("scan query count: %w", err)
		}
		top = append(top, c)
	}
	return top, rows.Err()
}

// OpenFindingsBySeverity counts open findings per severity.
func OpenFindingsBySeverity(q Querier) (map[string]int, error) {
	rows, err := q.Query("SELECT severity, COUNT(*) FROM findings WHERE status = 'open' GROUP BY severity")
	if err != nil {
		return nil, fmt.Errorf("findings by severity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, fmt.Errorf("scan severity count: %w", err)
		}
		counts[sev] = n
	}
	return counts, rows.Err()
}
