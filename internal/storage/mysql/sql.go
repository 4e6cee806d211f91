package mysql

// raw is the source of truth when reading a place back; the typed columns are
// copies of its fields for operators inspecting the table.
const upsertPlaceSQL = `
INSERT INTO places
  (id, name, type, city, country, rating_average, number_of_reviews, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name              = VALUES(name),
  type              = VALUES(type),
  city              = VALUES(city),
  country           = VALUES(country),
  rating_average    = VALUES(rating_average),
  number_of_reviews = VALUES(number_of_reviews),
  raw               = VALUES(raw),
  updated_at        = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listPlacesSQL = `SELECT raw FROM places ORDER BY id`

const getPlaceSQL = `SELECT raw FROM places WHERE id = ?`

const deleteAllPlacesSQL = `DELETE FROM places`

// deleteMissingPrefix is completed with one placeholder per kept id.
const deleteMissingPrefix = `DELETE FROM places WHERE id NOT IN (`
