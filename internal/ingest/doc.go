// Package ingest turns retail transaction logs and bank statements into
// cleaned line items ready for storage and basket grouping.
//
// Every source goes through the same item cleaning: semicolons become commas,
// labels are NFKC-normalised (which turns no-break spaces into spaces),
// trimmed and lower-cased, and placeholder labels such as "none" or "nan" are
// dropped. Each kept record gets its calendar fields derived from its
// timestamp, and repeats of the same item in the same transaction on the same
// day are dropped, keeping the first.
package ingest
