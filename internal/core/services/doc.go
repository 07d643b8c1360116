// Package services implements the driving ports.
// This is the application core: the aggregator, the adapter registry,
// and identity resolution.
package services
