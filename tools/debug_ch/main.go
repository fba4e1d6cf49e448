package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func main() {
	ctx := context.Background()

	dsn := os.Getenv("CLICKHOUSE_URL")
	if dsn == "" {
		dsn = "clickhouse://default:@localhost:9000/crickpulse"
	}
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		log.Fatal(err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatal(err)
	}

	var count uint64
	err = conn.QueryRow(ctx, "SELECT count() FROM match_results").Scan(&count)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Total results: %d\n", count)

	rows, err := conn.Query(ctx, "DESCRIBE match_results")
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	fmt.Println("Columns:")
	for rows.Next() {
		var name, ctype, defaultType, defaultExpr, comment, codecExpr, ttlExpr string
		rows.Scan(&name, &ctype, &defaultType, &defaultExpr, &comment, &codecExpr, &ttlExpr)
		fmt.Printf("- %s: %s\n", name, ctype)
	}

	rows, err = conn.Query(ctx, `
		SELECT format, venue, count() AS n
		FROM match_results
		GROUP BY format, venue
		ORDER BY n DESC
		LIMIT 10
	`)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	fmt.Println("Top venues:")
	for rows.Next() {
		var format, venue string
		var n uint64
		rows.Scan(&format, &venue, &n)
		fmt.Printf("- %s @ %s: %d\n", format, venue, n)
	}
}
