package sqlite

// schema is the relational index's base shape (§3). It is applied once on
// open; everything added afterward goes through the migration engine
// (migrations.go) so existing vaults upgrade in place.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id            TEXT PRIMARY KEY,
	type          TEXT NOT NULL,
	subtype       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT '',
	maturity      TEXT NOT NULL DEFAULT '',
	topic         TEXT NOT NULL DEFAULT '',
	path          TEXT NOT NULL UNIQUE,
	aliases       TEXT NOT NULL DEFAULT '[]', -- JSON array, ordered
	session       TEXT NOT NULL DEFAULT '',
	archived      INTEGER NOT NULL DEFAULT 0,
	supersedes    TEXT NOT NULL DEFAULT '[]', -- JSON array of node ids
	superseded_by TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	modified_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	in_degree     INTEGER NOT NULL DEFAULT 0,
	out_degree    INTEGER NOT NULL DEFAULT 0,
	pagerank      REAL NOT NULL DEFAULT 0,
	cluster_id    INTEGER NOT NULL DEFAULT 0,
	betweenness   REAL NOT NULL DEFAULT 0,
	UNIQUE (type, id)
);

CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);
CREATE INDEX IF NOT EXISTS idx_nodes_topic ON nodes(topic);
CREATE INDEX IF NOT EXISTS idx_nodes_status ON nodes(status);
CREATE INDEX IF NOT EXISTS idx_nodes_archived ON nodes(archived);
CREATE INDEX IF NOT EXISTS idx_nodes_session ON nodes(session);

CREATE TABLE IF NOT EXISTS edges (
	source_id  TEXT NOT NULL,
	target_id  TEXT NOT NULL,
	edge_type  TEXT NOT NULL DEFAULT 'relates',
	layer      TEXT NOT NULL DEFAULT 'frontmatter',
	weight     REAL NOT NULL DEFAULT 1.0,
	bidirectional INTEGER NOT NULL DEFAULT 0,
	stale      INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (source_id, target_id, edge_type)
);

CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
CREATE INDEX IF NOT EXISTS idx_edges_stale ON edges(stale);

CREATE TABLE IF NOT EXISTS tags (
	tag  TEXT PRIMARY KEY,
	domain TEXT NOT NULL DEFAULT '',
	scope  TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS node_tags (
	node_id TEXT NOT NULL,
	tag     TEXT NOT NULL,
	PRIMARY KEY (node_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_node_tags_tag ON node_tags(tag);

CREATE TABLE IF NOT EXISTS counters (
	prefix TEXT PRIMARY KEY,
	next   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS reweave_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id   TEXT NOT NULL,
	source_id  TEXT NOT NULL,
	target_id  TEXT NOT NULL,
	edge_type  TEXT NOT NULL DEFAULT 'relates',
	action     TEXT NOT NULL, -- 'add' | 'remove'
	score      REAL NOT NULL DEFAULT 0,
	undone     INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reweave_log_batch ON reweave_log(batch_id);

CREATE TABLE IF NOT EXISTS event_log (
	id         TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	payload    TEXT NOT NULL DEFAULT '{}',
	retries    INTEGER NOT NULL DEFAULT 0,
	session    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_event_log_status ON event_log(status);
CREATE INDEX IF NOT EXISTS idx_event_log_session ON event_log(session);

CREATE TABLE IF NOT EXISTS session_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session    TEXT NOT NULL,
	entry_type TEXT NOT NULL, -- 'log' | 'checkpoint' | 'decision-made' | ...
	summary    TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	token_cost INTEGER NOT NULL DEFAULT 0,
	pinned     INTEGER NOT NULL DEFAULT 0,
	refs       TEXT NOT NULL DEFAULT '[]',
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_session_log_session ON session_log(session);
CREATE INDEX IF NOT EXISTS idx_session_log_pinned ON session_log(pinned);

CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
	id UNINDEXED,
	title,
	body
);

CREATE TABLE IF NOT EXISTS vectors (
	node_id    TEXT PRIMARY KEY,
	embedding  TEXT NOT NULL, -- JSON array of float64
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
