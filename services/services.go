package services

import (
	"crm/database"

	"go.uber.org/zap"
)

type ConsistencyMode string

const (
	STATS_CONSISTENCY_FRESH  ConsistencyMode = "fresh"
	STATS_CONSISTENCY_CACHED ConsistencyMode = "cached"

	DEFAULT_BULK_CONCURRENCY = 4
)

type Config struct {
	Consistency     ConsistencyMode
	BulkConcurrency int
}

func ParseConsistencyMode(value string) ConsistencyMode {
	if ConsistencyMode(value) == STATS_CONSISTENCY_CACHED {
		return STATS_CONSISTENCY_CACHED
	}
	return STATS_CONSISTENCY_FRESH
}

type Services struct {
	Members    *MemberDirectory
	Pipelines  *PipelineRegistry
	Deals      *DealLedger
	Stats      *StatsSynchronizer
	Leads      *LeadDesk
	RecycleBin *RecycleBin
	Boards     *LiveBoards
}

func New(store database.Store, logger *zap.Logger, config Config) *Services {
	if config.BulkConcurrency <= 0 {
		config.BulkConcurrency = DEFAULT_BULK_CONCURRENCY
	}

	stats := NewStatsSynchronizer(store, logger, config.Consistency)
	members := &MemberDirectory{store: store, logger: logger}
	pipelines := &PipelineRegistry{store: store, logger: logger}
	deals := &DealLedger{store: store, logger: logger, pipelines: pipelines, members: members, stats: stats}
	leads := &LeadDesk{store: store, logger: logger, pipelines: pipelines, deals: deals, members: members, bulkConcurrency: config.BulkConcurrency}

	return &Services{
		Members:    members,
		Pipelines:  pipelines,
		Deals:      deals,
		Stats:      stats,
		Leads:      leads,
		RecycleBin: &RecycleBin{deals: deals, leads: leads, logger: logger, bulkConcurrency: config.BulkConcurrency},
		Boards:     &LiveBoards{store: store, logger: logger, pipelines: pipelines, stats: stats},
	}
}
