// Package api contains the HTTP handlers: file upload (which hands off
// to the isolated ingestion unit), schedule creation, the policy read
// endpoints and health. Handlers validate input, call into services or
// stores, and translate errors to status codes; they hold no business
// logic of their own.
package api
