// Package models holds the gorm row types of the ledger tables and their
// conversions to and from the domain records. Amounts are fixed-point
// decimal columns and stay decimal.Decimal on both sides.
//
// Back-office rows live in backoffice.go, profiler rows in profiler.go.
package models
