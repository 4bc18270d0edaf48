package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS instruments (
    id                   TEXT PRIMARY KEY,
    label                TEXT NOT NULL DEFAULT '',
    principal            TEXT NOT NULL,
    currency             TEXT NOT NULL,
    start_date           TEXT NOT NULL,
    term_months          INTEGER NOT NULL,
    annual_rate          TEXT,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL UNIQUE,
    balance              TEXT NOT NULL,
    currency             TEXT NOT NULL,
    as_of                TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id                   TEXT PRIMARY KEY,
    label                TEXT NOT NULL,
    monthly              TEXT NOT NULL,
    currency             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fx_rates (
    base                 TEXT NOT NULL,
    quote                TEXT NOT NULL,
    value                TEXT NOT NULL,
    as_of                TEXT NOT NULL,
    source               TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (base, quote, as_of)
);

CREATE INDEX IF NOT EXISTS idx_instruments_start ON instruments(start_date);
CREATE INDEX IF NOT EXISTS idx_fx_rates_pair ON fx_rates(base, quote, as_of);
`
