package store

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    barcode      TEXT,
    stock        INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
    min_stock    INTEGER NOT NULL DEFAULT 0,
    price        REAL NOT NULL DEFAULT 0,
    buy_price    REAL NOT NULL DEFAULT 0,
    remote_id    TEXT,
    server_stock INTEGER NOT NULL DEFAULT 0,
    synced       INTEGER NOT NULL DEFAULT 0,
    created_at   TIMESTAMP NOT NULL,
    updated_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_synced ON products(synced);

CREATE TABLE IF NOT EXISTS product_batches (
    id              TEXT PRIMARY KEY,
    product_id      TEXT NOT NULL REFERENCES products(id),
    lot_number      TEXT NOT NULL,
    expiration_date TIMESTAMP NOT NULL,
    quantity        INTEGER NOT NULL CHECK (quantity >= 0),
    initial_qty     INTEGER NOT NULL CHECK (initial_qty >= quantity),
    unit_cost       REAL NOT NULL DEFAULT 0,
    received_date   TIMESTAMP NOT NULL,
    synced          INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMP NOT NULL,
    updated_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_batches_product ON product_batches(product_id);
CREATE INDEX IF NOT EXISTS idx_batches_fefo ON product_batches(product_id, expiration_date ASC, received_date ASC);

CREATE TABLE IF NOT EXISTS sales (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    total          REAL NOT NULL,
    payment_method TEXT NOT NULL,
    payment_status TEXT NOT NULL,
    amount_paid    REAL NOT NULL DEFAULT 0,
    amount_due     REAL NOT NULL DEFAULT 0,
    edit_count     INTEGER NOT NULL DEFAULT 0,
    modified_at    TIMESTAMP,
    synced         INTEGER NOT NULL DEFAULT 0,
    created_at     TIMESTAMP NOT NULL,
    updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sale_items (
    id         TEXT PRIMARY KEY,
    sale_id    TEXT NOT NULL REFERENCES sales(id),
    product_id TEXT NOT NULL REFERENCES products(id),
    batch_id   TEXT REFERENCES product_batches(id),
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    unit_price REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id);

CREATE TABLE IF NOT EXISTS stock_movements (
    id              TEXT PRIMARY KEY,
    product_id      TEXT NOT NULL REFERENCES products(id),
    movement_type   TEXT NOT NULL,
    quantity_change INTEGER NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    user_id         TEXT,
    synced          INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movements_product ON stock_movements(product_id);
CREATE INDEX IF NOT EXISTS idx_movements_unsynced ON stock_movements(product_id, synced);

CREATE TABLE IF NOT EXISTS suppliers (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    phone      TEXT,
    email      TEXT,
    synced     INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS supplier_orders (
    id          TEXT PRIMARY KEY,
    supplier_id TEXT NOT NULL REFERENCES suppliers(id),
    status      TEXT NOT NULL DEFAULT 'pending',
    total       REAL NOT NULL DEFAULT 0,
    synced      INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id         TEXT PRIMARY KEY,
    label      TEXT NOT NULL,
    category   TEXT NOT NULL DEFAULT '',
    amount     REAL NOT NULL,
    user_id    TEXT NOT NULL,
    synced     INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS credit_payments (
    id         TEXT PRIMARY KEY,
    sale_id    TEXT NOT NULL REFERENCES sales(id),
    amount     REAL NOT NULL,
    method     TEXT NOT NULL,
    user_id    TEXT NOT NULL,
    synced     INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_queue (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type   TEXT NOT NULL,
    entity_id     TEXT NOT NULL,
    action        TEXT NOT NULL,
    payload       TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'PENDING',
    retry_count   INTEGER NOT NULL DEFAULT 0,
    last_error    TEXT,
    next_retry_at TIMESTAMP,
    created_at    TIMESTAMP NOT NULL,
    synced_at     TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status);
CREATE INDEX IF NOT EXISTS idx_sync_queue_entity ON sync_queue(entity_type, entity_id);

CREATE TABLE IF NOT EXISTS sync_state (
    id           INTEGER PRIMARY KEY CHECK (id = 1),
    last_sync_at TIMESTAMP,
    role         TEXT NOT NULL DEFAULT ''
);
INSERT OR IGNORE INTO sync_state (id, last_sync_at, role) VALUES (1, NULL, '');
`
