package main

// schemaSQL bootstraps the database. Statements are idempotent so the seed
// tool can run repeatedly against the same database.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS cat_items (
    id              UUID PRIMARY KEY,
    code            TEXT NOT NULL UNIQUE,
    name            TEXT NOT NULL,
    category        TEXT NOT NULL,
    unit            TEXT NOT NULL,
    description     TEXT,
    reorder_level   NUMERIC(19, 4) NOT NULL DEFAULT 0,
    min_order_qty   NUMERIC(19, 4) NOT NULL DEFAULT 0,
    is_perishable   BOOLEAN NOT NULL DEFAULT FALSE,
    shelf_life_days INTEGER,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cat_items_category ON cat_items (category) WHERE is_active;

CREATE TABLE IF NOT EXISTS cat_suppliers (
    id             UUID PRIMARY KEY,
    name           TEXT NOT NULL UNIQUE,
    contact_person TEXT,
    phone          TEXT,
    email          TEXT,
    address        TEXT,
    is_active      BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cat_recipes (
    id              UUID PRIMARY KEY,
    name            TEXT NOT NULL,
    product_item_id UUID NOT NULL REFERENCES cat_items (id),
    yield_qty       NUMERIC(19, 4) NOT NULL,
    yield_unit      TEXT NOT NULL,
    description     TEXT,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cat_recipes_product ON cat_recipes (product_item_id) WHERE is_active;

CREATE TABLE IF NOT EXISTS cat_recipe_items (
    id          UUID PRIMARY KEY,
    recipe_id   UUID NOT NULL REFERENCES cat_recipes (id) ON DELETE CASCADE,
    item_id     UUID NOT NULL REFERENCES cat_items (id),
    qty         NUMERIC(19, 4) NOT NULL,
    unit        TEXT NOT NULL,
    loss_factor NUMERIC(19, 4) NOT NULL DEFAULT 0,
    notes       TEXT
);

CREATE INDEX IF NOT EXISTS idx_cat_recipe_items_recipe ON cat_recipe_items (recipe_id);

CREATE TABLE IF NOT EXISTS reg_stock_lots (
    id          UUID PRIMARY KEY,
    item_id     UUID NOT NULL REFERENCES cat_items (id),
    lot_no      TEXT NOT NULL,
    qty         NUMERIC(19, 4) NOT NULL,
    unit        TEXT NOT NULL,
    received_at TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ,
    unit_cost   NUMERIC(19, 4) NOT NULL DEFAULT 0,
    supplier_id UUID REFERENCES cat_suppliers (id),
    notes       TEXT,
    created_by  TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),

    CONSTRAINT uq_reg_stock_lots_item_lot UNIQUE (item_id, lot_no),
    CONSTRAINT ck_reg_stock_lots_qty CHECK (qty >= 0)
);

CREATE INDEX IF NOT EXISTS idx_reg_stock_lots_live ON reg_stock_lots (item_id) WHERE qty > 0;
CREATE INDEX IF NOT EXISTS idx_reg_stock_lots_expiry ON reg_stock_lots (expires_at) WHERE qty > 0 AND expires_at IS NOT NULL;

CREATE TABLE IF NOT EXISTS reg_stock_movements (
    id         UUID PRIMARY KEY,
    item_id    UUID NOT NULL REFERENCES cat_items (id),
    lot_id     UUID REFERENCES reg_stock_lots (id),
    type       TEXT NOT NULL,
    qty        NUMERIC(19, 4) NOT NULL,
    unit       TEXT NOT NULL,
    ref_no     TEXT,
    reason     TEXT NOT NULL,
    notes      TEXT,
    actor      TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reg_stock_movements_item ON reg_stock_movements (item_id, created_at);
CREATE INDEX IF NOT EXISTS idx_reg_stock_movements_lot ON reg_stock_movements (lot_id);

CREATE TABLE IF NOT EXISTS sys_sequences (
    key         TEXT PRIMARY KEY,
    current_val BIGINT NOT NULL DEFAULT 0
);
`
