package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS readings (
    day          INTEGER PRIMARY KEY CHECK (day > 0),
    kwh          REAL NOT NULL CHECK (kwh >= 0),
    recorded_at  TEXT NOT NULL
);
`
