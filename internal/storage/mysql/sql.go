package mysql

const upsertLocationSQL = `
INSERT INTO locations
  (id, lat, lon)
VALUES
  (?, ?, ?)
ON DUPLICATE KEY UPDATE
  lat        = VALUES(lat),
  lon        = VALUES(lon),
  updated_at = CURRENT_TIMESTAMP
`

// Reviews are keyed by their dedupe identity so re-running the pipeline
// over the same captures never duplicates rows.
const insertReviewsPrefix = "INSERT INTO reviews\n  (location_id, source_file, name, `comment`, rating, review_date, lat, lon, dedupe_key)\nVALUES "

const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  name    = COALESCE(VALUES(name), reviews.name),\n" +
	"  rating  = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  lat     = COALESCE(VALUES(lat), reviews.lat),\n" +
	"  lon     = COALESCE(VALUES(lon), reviews.lon)\n"

const insertGroupsPrefix = "INSERT INTO review_groups\n  (id, representative_comment, sample_name, occurrences, locations_merged, avg_rating, ratings_list)\nVALUES "

const insertGroupsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  representative_comment = VALUES(representative_comment),\n" +
	"  sample_name            = VALUES(sample_name),\n" +
	"  occurrences            = VALUES(occurrences),\n" +
	"  locations_merged       = VALUES(locations_merged),\n" +
	"  avg_rating             = VALUES(avg_rating),\n" +
	"  ratings_list           = VALUES(ratings_list)\n"

const upsertSummarySQL = `
INSERT INTO location_summaries
  (location_id, lat, lon, positive, negative, neutral, overall_sentiment, summary, positive_keywords, negative_keywords, review_count)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  lat               = VALUES(lat),
  lon               = VALUES(lon),
  positive          = VALUES(positive),
  negative          = VALUES(negative),
  neutral           = VALUES(neutral),
  overall_sentiment = VALUES(overall_sentiment),
  summary           = VALUES(summary),
  positive_keywords = VALUES(positive_keywords),
  negative_keywords = VALUES(negative_keywords),
  review_count      = VALUES(review_count),
  updated_at        = CURRENT_TIMESTAMP
`

const getSummarySQL = `
SELECT
  location_id,
  lat,
  lon,
  positive,
  negative,
  neutral,
  overall_sentiment,
  summary,
  positive_keywords,
  negative_keywords,
  review_count
FROM location_summaries
WHERE location_id = ?
`

const listSummariesSQL = `
SELECT
  location_id,
  lat,
  lon,
  positive,
  negative,
  neutral,
  overall_sentiment,
  summary,
  positive_keywords,
  negative_keywords,
  review_count
FROM location_summaries
ORDER BY location_id
`

const listReviewsSQL = `
SELECT
  location_id,
  source_file,
  name,
  ` + "`comment`" + `,
  rating,
  review_date,
  lat,
  lon
FROM reviews
WHERE location_id = ?
ORDER BY id
LIMIT ?
`
