// Package domain contains the core entities of the policy ingestion
// service: the insurance records produced by file ingestion (Agent, User,
// Account, Lob, Carrier, Policy) and the scheduling records owned by the
// scheduled-job engine (ScheduledMessage, Message).
//
// Domain types carry their own validation but no persistence logic;
// storage concerns live behind the interfaces in internal/store.
package domain
