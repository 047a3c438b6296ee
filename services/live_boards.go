package services

import (
	"context"
	"crm/database"
	"crm/schemas"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

var ErrPipelineRemoved = errors.New("pipeline was removed")

type BoardColumn struct {
	Stage schemas.Stage  `json:"stage"`
	Deals []schemas.Deal `json:"deals"`
	Count int            `json:"count"`
	Value float64        `json:"value"`
}

// Board is one reconciled snapshot of a pipeline and its active deals. Deals
// whose stage is not part of the pipeline any more land in Unstaged.
type Board struct {
	Pipeline schemas.Pipeline `json:"pipeline"`
	Columns  []BoardColumn    `json:"columns"`
	Unstaged []schemas.Deal   `json:"unstaged,omitempty"`
	Stats    Stats            `json:"stats"`
}

func BuildBoard(pipeline schemas.Pipeline, deals []schemas.Deal) Board {
	stages := append([]schemas.Stage(nil), pipeline.Stages...)
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })

	board := Board{Pipeline: pipeline, Columns: make([]BoardColumn, len(stages))}

	position := map[string]int{}
	for i, stage := range stages {
		board.Columns[i] = BoardColumn{Stage: stage, Deals: []schemas.Deal{}}
		position[stage.ID] = i
	}

	active := []schemas.Deal{}
	for _, deal := range deals {
		if !deal.IsActive() {
			continue
		}
		active = append(active, deal)

		i, ok := position[deal.Stage]
		if !ok {
			board.Unstaged = append(board.Unstaged, deal)
			continue
		}
		board.Columns[i].Deals = append(board.Columns[i].Deals, deal)
		board.Columns[i].Count++
		board.Columns[i].Value += deal.Value
	}

	board.Stats = ComputeStats(active)

	return board
}

// LiveBoards turns store subscriptions into board snapshots.
type LiveBoards struct {
	store     database.Store
	logger    *zap.Logger
	pipelines *PipelineRegistry
	stats     *StatsSynchronizer
}

type BoardFeed struct {
	C <-chan Board

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Close tears down both subscriptions of the feed and waits for them.
func (f *BoardFeed) Close() {
	f.cancel()
	<-f.done
}

// Err reports why C was closed. It is only meaningful once C is closed.
func (f *BoardFeed) Err() error {
	return f.err
}

func (l *LiveBoards) Open(ctx context.Context, pipelineID bson.ObjectID) (*BoardFeed, error) {
	if _, err := l.pipelines.Get(ctx, pipelineID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	pipelineSub, err := l.store.Subscribe(ctx, database.COLLECTION_PIPELINES, database.Filter{"_id": pipelineID})
	if err != nil {
		cancel()
		return nil, err
	}

	dealSub, err := l.store.Subscribe(ctx, database.COLLECTION_DEALS, database.Filter{
		"pipeline_id": pipelineID,
		"status":      schemas.DEAL_STATUS_ACTIVE,
	})
	if err != nil {
		pipelineSub.Close()
		cancel()
		return nil, err
	}

	out := make(chan Board)
	feed := &BoardFeed{C: out, cancel: cancel, done: make(chan struct{})}

	l.stats.attachView(pipelineID)

	go func() {
		defer close(feed.done)
		defer close(out)
		defer l.stats.detachView(pipelineID)
		defer dealSub.Close()
		defer pipelineSub.Close()

		var pipeline *schemas.Pipeline
		var deals []schemas.Deal
		haveDeals := false

		for {
			select {
			case <-ctx.Done():
				feed.err = ctx.Err()
				return

			case docs, ok := <-pipelineSub.C:
				if !ok {
					feed.err = ctx.Err()
					return
				}
				if len(docs) == 0 {
					feed.err = ErrPipelineRemoved
					return
				}
				decoded, err := decode[schemas.Pipeline](docs[0])
				if err != nil {
					l.logger.Warn("board pipeline snapshot skipped", zap.String("pipeline_id", pipelineID.Hex()), zap.Error(err))
					continue
				}
				pipeline = &decoded

			case docs, ok := <-dealSub.C:
				if !ok {
					feed.err = ctx.Err()
					return
				}
				decoded, err := decodeAll[schemas.Deal](docs)
				if err != nil {
					l.logger.Warn("board deals snapshot skipped", zap.String("pipeline_id", pipelineID.Hex()), zap.Error(err))
					continue
				}
				deals = decoded
				haveDeals = true
			}

			if pipeline == nil || !haveDeals {
				continue
			}

			l.stats.observe(ctx, pipeline, deals)

			select {
			case out <- BuildBoard(*pipeline, deals):
			case <-ctx.Done():
				feed.err = ctx.Err()
				return
			}
		}
	}()

	return feed, nil
}
