package storage

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      band,
                      device_id,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    band,
    device_id,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    band,
    device_id,
    config
FROM sessions
ORDER BY start_time`

	insertSampleSQL = `
INSERT INTO samples (
                     session_id,
                     timestamp,
                     frequency,
                     bin_width,
                     power)
VALUES (?, ?, ?, ?, ?)`

	insertPeakSQL = `
INSERT INTO peaks (
                   session_id,
                   timestamp,
                   frequency,
                   power,
                   strength,
                   channel)
VALUES (?, ?, ?, ?, ?, ?)`

	insertViolationSQL = `
INSERT INTO violations (
                        session_id,
                        timestamp,
                        frequency,
                        power,
                        threshold,
                        zone,
                        channel)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectSamplesSQL = `
SELECT
    timestamp,
    frequency,
    bin_width,
    power
FROM samples
WHERE
    session_id = ?`

	selectPeaksSQL = `
SELECT
    timestamp,
    frequency,
    power,
    strength,
    channel
FROM peaks
WHERE
    session_id = ?
ORDER BY timestamp, frequency`

	selectViolationsSQL = `
SELECT
    timestamp,
    frequency,
    power,
    threshold,
    zone,
    channel
FROM violations
WHERE
    session_id = ?
ORDER BY timestamp, frequency`
)
