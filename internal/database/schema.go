package database

const schema = `
CREATE TABLE anime (
	mal_id INTEGER PRIMARY KEY,
	url TEXT,
	images TEXT,
	trailer TEXT,
	approved BOOLEAN NOT NULL DEFAULT 0,
	titles TEXT,
	title TEXT NOT NULL DEFAULT '',
	title_english TEXT,
	title_japanese TEXT,
	title_synonyms TEXT,
	type TEXT,
	source TEXT,
	episodes INTEGER,
	status TEXT,
	airing BOOLEAN NOT NULL DEFAULT 0,
	aired TEXT,
	duration TEXT,
	rating TEXT,
	score REAL,
	scored_by INTEGER,
	rank INTEGER,
	popularity INTEGER,
	members INTEGER,
	favorites INTEGER,
	synopsis TEXT,
	background TEXT,
	season TEXT,
	year INTEGER,
	broadcast TEXT,
	producers TEXT,
	licensors TEXT,
	studios TEXT,
	genres TEXT,
	explicit_genres TEXT,
	themes TEXT,
	demographics TEXT
);

CREATE INDEX idx_anime_type ON anime(type);
CREATE INDEX idx_anime_year ON anime(year);
CREATE INDEX idx_anime_status ON anime(status);
`

// migrations contains incremental schema changes
// Each migration is applied in order based on the current user_version
// migrations[0] is empty because version 0 uses the base schema
var migrations = []string{
	"",
}
