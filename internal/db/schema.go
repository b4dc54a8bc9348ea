package db

// DefaultEmbedDimension matches the text-embedding-ada-002 output size.
const DefaultEmbedDimension = 1536

// schemaSQL contains the schema initialization SQL. The three %d verbs are
// the HNSW index dimension for ingredient, tool and dish respectively.
const schemaSQL = `
    -- ==========================================================================
    -- INGREDIENT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS ingredient SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON ingredient TYPE string;
    DEFINE FIELD IF NOT EXISTS name_embedding ON ingredient TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created ON ingredient TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS ingredient_name_embedding ON ingredient FIELDS name_embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- TOOL TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS tool SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON tool TYPE string;
    DEFINE FIELD IF NOT EXISTS name_embedding ON tool TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created ON tool TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS tool_name_embedding ON tool FIELDS name_embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- DISH TABLE (recipes can reference another dish as a component)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS dish SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON dish TYPE string;
    DEFINE FIELD IF NOT EXISTS name_embedding ON dish TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created ON dish TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS dish_name_embedding ON dish FIELDS name_embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- RECIPE TABLE (final entity-linked records; nested steps stay flexible)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS recipe SCHEMALESS;
    DEFINE FIELD IF NOT EXISTS dishId ON recipe TYPE string;
    DEFINE FIELD IF NOT EXISTS dishName ON recipe TYPE string;
    DEFINE FIELD IF NOT EXISTS videoId ON recipe TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS totalPrepSeconds ON recipe TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS confidence ON recipe TYPE float DEFAULT 0.0;
    DEFINE FIELD IF NOT EXISTS created ON recipe TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS recipe_video ON recipe FIELDS videoId;
`
