// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts describe the content-type schema repository without persistence
// details; data/aggregates implements them over gorm table repos.
package aggregates
