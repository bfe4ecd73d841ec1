package postgres

// Schema contains the PostgreSQL schema for the Loom store. Embeddings use
// the pgvector extension so candidate windows can be pre-ranked in SQL.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	tags JSONB NOT NULL DEFAULT '[]',
	embedding vector(768),
	embedding_model TEXT NOT NULL DEFAULT '',
	embedding_dimension INTEGER NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_owner_created ON notes(owner_id, created_at DESC);

CREATE TABLE IF NOT EXISTS people (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_people_owner_name ON people(owner_id, LOWER(name));

CREATE TABLE IF NOT EXISTS meetings (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL DEFAULT '',
	scheduled_at TIMESTAMPTZ NOT NULL,
	action_items JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meetings_owner_scheduled ON meetings(owner_id, scheduled_at DESC);

CREATE TABLE IF NOT EXISTS reminders (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	due_date TIMESTAMPTZ NOT NULL,
	priority TEXT NOT NULL DEFAULT 'medium',
	linked_entity_id TEXT NOT NULL DEFAULT '',
	linked_entity_type TEXT NOT NULL DEFAULT '',
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reminders_owner_due ON reminders(owner_id, due_date);

CREATE TABLE IF NOT EXISTS note_links (
	note_id TEXT NOT NULL,
	related_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (note_id, related_id)
);

CREATE TABLE IF NOT EXISTS note_people (
	note_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (note_id, person_id)
);

CREATE TABLE IF NOT EXISTS meeting_notes (
	meeting_id TEXT NOT NULL,
	note_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (meeting_id, note_id)
);

CREATE TABLE IF NOT EXISTS meeting_people (
	meeting_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (meeting_id, person_id)
);
`
