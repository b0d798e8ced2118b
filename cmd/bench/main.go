package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/QuangTung97/eventstore"
	"github.com/QuangTung97/eventstore/config"
	"github.com/QuangTung97/eventstore/model"
	"github.com/QuangTung97/eventstore/repository"
)

type benchEvent struct {
	Data string `json:"data"`
}

const (
	numThreads          = 8
	numCommitsPerThread = 500
)

func main() {
	conf := config.Load()
	db := conf.Postgres.MustConnect()

	eventstore.Configure(func(c *eventstore.Config) {
		c.TypeRegistry.Register("BenchEvent", func() model.Message {
			return &benchEvent{}
		})
	})

	st := eventstore.Current().EventStore
	provider := repository.NewProvider(db)

	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(numThreads)
	for thread := 0; thread < numThreads; thread++ {
		go func() {
			defer wg.Done()

			aggregateID := uuid.New()
			for seq := int64(1); seq <= numCommitsPerThread; seq++ {
				err := provider.Transact(context.Background(), func(ctx context.Context) error {
					return st.CommitEvents(ctx,
						model.Command{
							CommandType: "BenchCommand",
							AggregateID: uuid.NullUUID{UUID: aggregateID, Valid: true},
							Data:        &benchEvent{Data: "bench"},
						},
						model.StreamEvents{
							Stream: model.EventStream{
								AggregateType: "Bench",
								AggregateID:   aggregateID,
							},
							Events: []model.Event{
								{
									AggregateID:    aggregateID,
									SequenceNumber: seq,
									CreatedAt:      time.Now(),
									EventType:      "BenchEvent",
									Data:           &benchEvent{Data: "bench"},
								},
							},
						},
					)
				})
				if err != nil {
					panic(err)
				}
			}
		}()
	}
	wg.Wait()

	total := numThreads * numCommitsPerThread
	elapsed := time.Since(start)
	fmt.Println("Total commits:", total)
	fmt.Println("Elapsed:", elapsed)
	fmt.Println("Commits/sec:", float64(total)/elapsed.Seconds())
}
