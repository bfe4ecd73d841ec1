package sqlite

// Schema contains the SQLite schema for the Loom store.
//
// Link tables carry composite primary keys and are written with
// INSERT OR IGNORE, which gives every link operation atomic add-to-set
// semantics: concurrent or repeated linking of the same pair never
// produces a duplicate edge.
const Schema = `
CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	embedding TEXT,
	embedding_model TEXT NOT NULL DEFAULT '',
	embedding_dimension INTEGER NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_owner_created ON notes(owner_id, created_at DESC);

CREATE TABLE IF NOT EXISTS people (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_people_owner_name ON people(owner_id, name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS meetings (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	scheduled_at TIMESTAMP NOT NULL,
	action_items TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meetings_owner_scheduled ON meetings(owner_id, scheduled_at DESC);

CREATE TABLE IF NOT EXISTS reminders (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	due_date TIMESTAMP NOT NULL,
	priority TEXT NOT NULL DEFAULT 'medium',
	linked_entity_id TEXT NOT NULL DEFAULT '',
	linked_entity_type TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reminders_owner_due ON reminders(owner_id, due_date);

CREATE TABLE IF NOT EXISTS note_links (
	note_id TEXT NOT NULL,
	related_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (note_id, related_id)
);

CREATE TABLE IF NOT EXISTS note_people (
	note_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (note_id, person_id)
);

CREATE TABLE IF NOT EXISTS meeting_notes (
	meeting_id TEXT NOT NULL,
	note_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (meeting_id, note_id)
);

CREATE TABLE IF NOT EXISTS meeting_people (
	meeting_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (meeting_id, person_id)
);
`
