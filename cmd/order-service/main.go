package main

import (
	"context"
	"os"

	orderacl "github.com/dmehra2102/commerce-choreography/internal/order/acl"
	"github.com/dmehra2102/commerce-choreography/internal/order/application"
	orderhttp "github.com/dmehra2102/commerce-choreography/internal/order/infrastructure/http"
	orderdb "github.com/dmehra2102/commerce-choreography/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/commerce-choreography/internal/platform"
	"github.com/dmehra2102/commerce-choreography/pkg/batch"
	"github.com/dmehra2102/commerce-choreography/pkg/shutdown"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	app, err := platform.New(ctx, "order-service", configPath(), platform.Options{Postgres: true, Idempotency: true})
	if err != nil {
		platform.Fatal(err)
	}
	log, topics := app.Log, app.Cfg.Topics

	repo := orderdb.NewRepository(log, app.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("order schema failed", "err", err)
		os.Exit(1)
	}

	svc := application.NewService(log, repo, app.Publisher(topics.OrderPublic, "orders"))
	orderhttp.NewHandler(log, svc).Routes(app.Router())

	acl := batch.FromTranslator(orderacl.NewTranslator(log, svc))
	app.Consume(app.NewProcessor("order-acl").
		Register(orderacl.EventStockReserved, acl).
		Register(orderacl.EventStockReservationFailed, acl),
		topics.InventoryPublic)

	if err := app.Run(ctx); err != nil {
		log.Error("order-service stopped", "err", err)
		os.Exit(1)
	}
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
