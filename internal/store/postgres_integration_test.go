// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/giraugh/abduction-sub000/internal/core"
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/internal/match"
	"github.com/giraugh/abduction-sub000/internal/store"
)

// setupPostgres starts a PostgreSQL container with every migration applied.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("abduction_test"),
		postgres.WithUsername("abduction"),
		postgres.WithPassword("abduction"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Open(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}
	return pool, cleanup, nil
}

func located(id entity.ID, name string, q, r int) entity.Entity {
	e := entity.Entity{ID: id, Name: name, Markers: entity.NewMarkers(entity.Inspectable)}
	e.SetHex(hex.New(q, r))
	return e
}

var _ = Describe("Postgres", Ordered, func() {
	var (
		pool    *pgxpool.Pool
		db      *store.Postgres
		archive *store.LogArchive
		cleanup func()
		ctx     context.Context
	)

	BeforeAll(func() {
		var err error
		pool, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())
		db = store.NewPostgres(pool)
		archive = store.NewLogArchive(pool)
	})

	AfterAll(func() {
		if cleanup != nil {
			cleanup()
		}
	})

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("matches", func() {
		It("creates, reads and completes a match", func() {
			cfg := match.Isolated(4, 6)
			Expect(db.CreateMatch(ctx, cfg)).To(Succeed())

			got, err := db.GetMatch(ctx, cfg.MatchID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(cfg))

			incomplete, ok, err := db.IncompleteMatch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(incomplete.MatchID).To(Equal(cfg.MatchID))

			cfg.Complete = true
			Expect(db.UpdateMatch(ctx, cfg)).To(Succeed())

			_, ok, err = db.IncompleteMatch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			last, ok, err := db.LastCompletedMatch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(last.MatchID).To(Equal(cfg.MatchID))
		})

		It("links a match to its predecessor", func() {
			first := match.Isolated(2, 3)
			Expect(db.CreateMatch(ctx, first)).To(Succeed())

			second := match.NewConfig(2, 3, &first.MatchID)
			Expect(db.CreateMatch(ctx, second)).To(Succeed())

			got, err := db.GetMatch(ctx, second.MatchID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.PrecedingMatchID).NotTo(BeNil())
			Expect(*got.PrecedingMatchID).To(Equal(first.MatchID))
		})

		It("rejects a duplicate match id", func() {
			cfg := match.Isolated(2, 3)
			Expect(db.CreateMatch(ctx, cfg)).To(Succeed())
			Expect(db.CreateMatch(ctx, cfg)).To(MatchError(ContainSubstring("duplicate")))
		})

		It("reports unknown matches", func() {
			_, err := db.GetMatch(ctx, core.NewULID().String())
			Expect(err).To(MatchError(match.ErrMatchNotFound))

			err = db.UpdateMatch(ctx, match.Isolated(2, 3))
			Expect(err).To(MatchError(match.ErrMatchNotFound))
		})
	})

	Describe("entity mutations", func() {
		It("reduces the mutation log back into entities", func() {
			cfg := match.Isolated(2, 3)
			Expect(db.CreateMatch(ctx, cfg)).To(Succeed())

			rock := located("rock", "Rock", 0, 0)
			Expect(db.AppendMutations(ctx, cfg.MatchID, []entity.Mutation{
				entity.SetEntity(rock),
				entity.SetEntity(located("tree", "Tree", 1, 0)),
			})).To(Succeed())

			moved := located("rock", "Rock", 1, -1)
			Expect(db.AppendMutations(ctx, cfg.MatchID, []entity.Mutation{
				entity.SetEntity(moved),
				entity.RemoveEntity("tree"),
			})).To(Succeed())

			entities, err := db.LoadEntities(ctx, cfg.MatchID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entities).To(HaveLen(1))
			Expect(entities[0].ID).To(Equal(entity.ID("rock")))
			Expect(entities[0].MustHex()).To(Equal(hex.New(1, -1)))
		})

		It("returns nothing for a match without mutations", func() {
			cfg := match.Isolated(2, 3)
			Expect(db.CreateMatch(ctx, cfg)).To(Succeed())

			entities, err := db.LoadEntities(ctx, cfg.MatchID)
			Expect(err).NotTo(HaveOccurred())
			Expect(entities).To(BeEmpty())
		})
	})

	Describe("log archive", func() {
		It("appends, replays and tails a stream", func() {
			cfg := match.Isolated(2, 3)
			stream := core.LogStream(cfg.MatchID)

			var ids []ulid.ULID
			for i := 0; i < 3; i++ {
				ev := core.Event{
					ID:        core.NewULID(),
					Stream:    stream,
					Type:      core.EventTypeGameLog,
					MatchID:   cfg.MatchID,
					Timestamp: time.Now().UTC().Truncate(time.Microsecond),
					Payload:   []byte(`{"kind":"time_changed"}`),
				}
				ids = append(ids, ev.ID)
				Expect(archive.Append(ctx, ev)).To(Succeed())
			}

			all, err := archive.Replay(ctx, stream, ulid.ULID{}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].ID).To(Equal(ids[0]))

			after, err := archive.Replay(ctx, stream, ids[0], 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(HaveLen(2))

			tail, err := archive.Tail(ctx, stream, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(tail).To(HaveLen(2))
			Expect(tail[0].ID).To(Equal(ids[1]))
			Expect(tail[1].ID).To(Equal(ids[2]))

			last, err := archive.LastEventID(ctx, stream)
			Expect(err).NotTo(HaveOccurred())
			Expect(last).To(Equal(ids[2]))
		})

		It("reports an empty stream", func() {
			_, err := archive.LastEventID(ctx, core.LogStream("nobody"))
			Expect(err).To(MatchError(core.ErrStreamEmpty))
		})
	})
})
