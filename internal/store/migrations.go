package store

type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create journal",
		SQL: `
			CREATE TABLE journal (
				id       INTEGER PRIMARY KEY AUTOINCREMENT,
				event    TEXT NOT NULL,
				subject  TEXT NOT NULL DEFAULT '',
				detail   TEXT,
				at       TEXT NOT NULL
			);

			CREATE INDEX idx_journal_event ON journal (event, id);
		`,
	},
}
