package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS surf_breaks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	region TEXT,
	swellnet_url TEXT,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_surf_breaks_user ON surf_breaks(user_id);

CREATE TABLE IF NOT EXISTS surf_sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	break_id TEXT NOT NULL REFERENCES surf_breaks(id) ON DELETE CASCADE,
	rating TEXT NOT NULL CHECK (rating IN ('amazing', 'fun', 'bad')),
	session_date TEXT NOT NULL,
	session_time TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_surf_sessions_user_break ON surf_sessions(user_id, break_id);

CREATE TABLE IF NOT EXISTS forecast_data (
	break_id TEXT NOT NULL,
	forecast_date TEXT NOT NULL,
	forecast_time TEXT NOT NULL,
	swell_height REAL,
	swell_period REAL,
	wind_speed REAL,
	wind_direction TEXT,
	swell_direction TEXT,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (break_id, forecast_date, forecast_time)
);
`
