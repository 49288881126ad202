// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/giraugh/abduction-sub000/internal/store"
)

var _ = Describe("Migrator", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
		migrator  *store.Migrator
	)

	tableExists := func(name string) bool {
		conn, err := pgx.Connect(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close(ctx) //nolint:errcheck

		var exists bool
		err = conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, name,
		).Scan(&exists)
		Expect(err).NotTo(HaveOccurred())
		return exists
	}

	expectVersion := func(want uint) {
		GinkgoHelper()
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(want))
		Expect(dirty).To(BeFalse())
	}

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("abduction_migrate"),
			postgres.WithUsername("abduction"),
			postgres.WithPassword("abduction"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err = store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if migrator != nil {
			_ = migrator.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	It("starts empty with every migration pending", func() {
		expectVersion(0)
		pending, err := migrator.Pending()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal([]uint{1, 2}))
	})

	It("applies every migration", func() {
		Expect(migrator.Up()).To(Succeed())
		expectVersion(2)

		pending, err := migrator.Pending()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())

		for _, table := range []string{"matches", "entity_mutations", "events"} {
			Expect(tableExists(table)).To(BeTrue(), table)
		}
	})

	It("steps back and forward one migration", func() {
		Expect(migrator.Steps(-1)).To(Succeed())
		expectVersion(1)
		Expect(tableExists("events")).To(BeFalse())
		Expect(tableExists("matches")).To(BeTrue())

		Expect(migrator.Steps(1)).To(Succeed())
		expectVersion(2)
		Expect(tableExists("events")).To(BeTrue())
	})

	It("rolls everything back", func() {
		Expect(migrator.Down()).To(Succeed())
		expectVersion(0)
		Expect(tableExists("matches")).To(BeFalse())
	})

	It("forces a version without running migrations", func() {
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Force(1)).To(Succeed())
		expectVersion(1)
		Expect(tableExists("events")).To(BeTrue(), "force does not touch the schema")
	})
})
