package repository

// schema is portable between SQLite and PostgreSQL.
var schema = []string{ //nolint:gochecknoglobals // static DDL
	`CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL,
		position_group TEXT NOT NULL,
		class_year TEXT NOT NULL DEFAULT '',
		grad_year INTEGER NOT NULL DEFAULT 0,
		height_inches INTEGER NOT NULL DEFAULT 0,
		weight_lbs INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		external_ref TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS season_usage (
		player_id TEXT PRIMARY KEY,
		games_played INTEGER NOT NULL DEFAULT 0,
		snaps INTEGER NOT NULL DEFAULT 0,
		snaps_offense INTEGER NOT NULL DEFAULT 0,
		snaps_defense INTEGER NOT NULL DEFAULT 0,
		snaps_st INTEGER NOT NULL DEFAULT 0,
		leverage_snaps INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS grades (
		player_id TEXT PRIMARY KEY,
		overall_grade DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		player_id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		replacement_risk TEXT NOT NULL,
		depth_rank INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS roster (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		position_group TEXT NOT NULL,
		class_year TEXT NOT NULL DEFAULT '',
		grad_year INTEGER NOT NULL DEFAULT 0,
		eligibility_remaining INTEGER NOT NULL DEFAULT 0,
		nil_band TEXT NOT NULL DEFAULT '',
		rev_share_band TEXT NOT NULL DEFAULT '',
		estimated_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		role TEXT NOT NULL,
		snaps_share DOUBLE PRECISION NOT NULL DEFAULT 0,
		performance_grade DOUBLE PRECISION NOT NULL DEFAULT 0,
		injury_risk DOUBLE PRECISION NOT NULL DEFAULT 0,
		transfer_risk DOUBLE PRECISION NOT NULL DEFAULT 0,
		academics_risk DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		body TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pools (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		pool_amount DOUBLE PRECISION NOT NULL,
		reserved_amount DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		policy_id TEXT NOT NULL DEFAULT '',
		pool_id TEXT NOT NULL DEFAULT '',
		mutations TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS valuation_snapshots (
		pool_id TEXT NOT NULL,
		policy_id TEXT NOT NULL,
		player_id TEXT NOT NULL,
		total_score DOUBLE PRECISION NOT NULL,
		share_pct DOUBLE PRECISION NOT NULL,
		dollars_low DOUBLE PRECISION NOT NULL,
		dollars_mid DOUBLE PRECISION NOT NULL,
		dollars_high DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (pool_id, policy_id, player_id)
	)`,
}
