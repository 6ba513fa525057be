package db

import (
	"mevscan/types"
)

type Database interface {
	Close() error
	EnsureDatabaseExists() error
	CreateTables() error
	DropTables() error

	InsertAnalysisReports(reports []*types.AnalysisReport) error

	QueryAnalyzedSignatures(limit uint) ([]string, error)
	QueryLastAnalyzedSlot() (uint64, error)
}
