// Package postgres implements the store interfaces on PostgreSQL.
//
// Every keyed write uses INSERT .. ON CONFLICT .. DO UPDATE RETURNING,
// which is the single-statement atomic upsert the rest of the system
// assumes: repeating a call with the same key never creates a duplicate
// row. Connections use database/sql over the pgx stdlib driver.
package postgres
