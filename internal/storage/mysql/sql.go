package mysql

// The source guard on the blocked-date upsert is what keeps an import from
// silently converting a manual block into an ical one: inserting ical over
// manual leaves the row alone, inserting manual over ical promotes it.
const upsertBlockedDateSQL = `
INSERT INTO blocked_dates
  (property_id, date, source)
VALUES
  (?, ?, ?)
ON DUPLICATE KEY UPDATE
  source     = IF(blocked_dates.source = 'manual', blocked_dates.source, VALUES(source)),
  updated_at = CURRENT_TIMESTAMP
`

const deleteBlockedDateSQL = `
DELETE FROM blocked_dates WHERE property_id = ? AND date = ?
`

const listBlockedDatesSQL = `
SELECT property_id, date, source
FROM blocked_dates
WHERE property_id = ? AND date BETWEEN ? AND ?
ORDER BY date
`

const upsertSpecialPriceSQL = `
INSERT INTO special_prices
  (property_id, date, price)
VALUES
  (?, ?, ?)
ON DUPLICATE KEY UPDATE
  price      = VALUES(price),
  updated_at = CURRENT_TIMESTAMP
`

const deleteSpecialPriceSQL = `
DELETE FROM special_prices WHERE property_id = ? AND date = ?
`

const listSpecialPricesSQL = `
SELECT property_id, date, price
FROM special_prices
WHERE property_id = ? AND date BETWEEN ? AND ?
ORDER BY date
`

// Bookings overlap the window when they start before its end and end after
// its start; only approved ones participate in availability.
const listApprovedBookingsSQL = `
SELECT id, property_id, start_date, end_date, status
FROM bookings
WHERE property_id = ?
  AND status = 'approved'
  AND start_date <= ?
  AND end_date >= ?
ORDER BY start_date, id
`

const getPropertySQL = `
SELECT id, name, feed_url
FROM properties
WHERE id = ?
`

const listSyncablePropertiesSQL = `
SELECT id, name, feed_url
FROM properties
WHERE feed_url IS NOT NULL AND feed_url <> ''
ORDER BY id
`

const setFeedURLSQL = `
UPDATE properties SET feed_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`
