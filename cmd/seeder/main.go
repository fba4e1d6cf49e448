// Seeder is a development tool that creates the team_ratings schema and
// loads a starter set of international sides so the prediction API has
// ratings to work with on a fresh database.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS team_ratings (
	team_id        TEXT NOT NULL,
	format         TEXT NOT NULL,
	elo_rating     DOUBLE PRECISION NOT NULL DEFAULT 1500,
	glicko_rating  DOUBLE PRECISION NOT NULL DEFAULT 1500,
	volatility     DOUBLE PRECISION NOT NULL DEFAULT 0.06,
	matches_played INTEGER NOT NULL DEFAULT 0,
	wins           INTEGER NOT NULL DEFAULT 0,
	losses         INTEGER NOT NULL DEFAULT 0,
	draws          INTEGER NOT NULL DEFAULT 0,
	form_rating    DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	peak_rating    DOUBLE PRECISION NOT NULL DEFAULT 1500,
	peak_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (team_id, format)
);
`

type seedTeam struct {
	id  string
	elo map[string]float64
}

// Rough opening ratings per format. Teams without an entry for a format
// start at the 1500 baseline when first seen by the engine.
var teams = []seedTeam{
	{"india", map[string]float64{"t20": 1640, "odi": 1655, "test": 1620}},
	{"australia", map[string]float64{"t20": 1625, "odi": 1650, "test": 1660}},
	{"england", map[string]float64{"t20": 1630, "odi": 1600, "test": 1590}},
	{"south-africa", map[string]float64{"t20": 1590, "odi": 1585, "test": 1575}},
	{"new-zealand", map[string]float64{"t20": 1575, "odi": 1590, "test": 1580}},
	{"pakistan", map[string]float64{"t20": 1580, "odi": 1560, "test": 1540}},
	{"sri-lanka", map[string]float64{"t20": 1530, "odi": 1535, "test": 1510}},
	{"west-indies", map[string]float64{"t20": 1540, "odi": 1490, "test": 1470}},
	{"bangladesh", map[string]float64{"t20": 1470, "odi": 1500, "test": 1440}},
	{"afghanistan", map[string]float64{"t20": 1510, "odi": 1480, "test": 1390}},
	{"ireland", map[string]float64{"t20": 1430, "odi": 1420}},
	{"zimbabwe", map[string]float64{"t20": 1400, "odi": 1410, "test": 1380}},
}

func main() {
	var (
		dsn   = flag.String("dsn", os.Getenv("POSTGRES_URL"), "Postgres connection string")
		reset = flag.Bool("reset", false, "drop existing ratings before seeding")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("no DSN: pass -dsn or set POSTGRES_URL")
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	if *reset {
		if _, err := db.Exec(`TRUNCATE team_ratings`); err != nil {
			log.Fatalf("truncate: %v", err)
		}
		log.Println("existing ratings dropped")
	}

	seeded := 0
	for _, team := range teams {
		for format, elo := range team.elo {
			res, err := db.Exec(`
				INSERT INTO team_ratings (team_id, format, elo_rating, glicko_rating, peak_rating)
				VALUES ($1, $2, $3, $3, $3)
				ON CONFLICT (team_id, format) DO NOTHING`,
				team.id, format, elo,
			)
			if err != nil {
				log.Fatalf("seed %s/%s: %v", team.id, format, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				seeded++
			}
		}
	}

	fmt.Printf("seeded %d ratings across %d teams\n", seeded, len(teams))
}
