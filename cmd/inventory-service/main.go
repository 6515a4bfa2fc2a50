package main

import (
	"context"
	"os"

	inventoryacl "github.com/dmehra2102/commerce-choreography/internal/inventory/acl"
	"github.com/dmehra2102/commerce-choreography/internal/inventory/application"
	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
	inventoryhttp "github.com/dmehra2102/commerce-choreography/internal/inventory/infrastructure/http"
	inventorydb "github.com/dmehra2102/commerce-choreography/internal/inventory/infrastructure/postgres"
	"github.com/dmehra2102/commerce-choreography/internal/platform"
	"github.com/dmehra2102/commerce-choreography/pkg/batch"
	"github.com/dmehra2102/commerce-choreography/pkg/shutdown"
	"github.com/dmehra2102/commerce-choreography/pkg/workflow"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	app, err := platform.New(ctx, "inventory-service", configPath(), platform.Options{Postgres: true, Idempotency: true})
	if err != nil {
		platform.Fatal(err)
	}
	log, topics := app.Log, app.Cfg.Topics

	repo := inventorydb.NewRepository(log, app.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("inventory schema failed", "err", err)
		os.Exit(1)
	}

	svc := application.NewService(log, repo, app.Publisher(topics.InventoryPublic, "inventory"))
	inventoryhttp.NewHandler(log, svc).Routes(app.Router())

	translator := inventoryacl.NewProductCreatedTranslator(log, app.Publisher(topics.InventoryInternal, "inventory"))
	app.Consume(app.NewProcessor("inventory-acl").
		Register(inventoryacl.EventProductCreated, batch.FromTranslator(translator)),
		topics.ProductPublic)

	runner := workflow.NewRunner(log, inventorydb.NewHistoryStore(log, app.Pool))
	wf := application.NewProductAddedWorkflow(log, repo, runner)
	app.Consume(app.NewProcessor("inventory-workflow").
		Register(domain.EventProductAdded, wf),
		topics.InventoryInternal)

	app.Consume(app.NewProcessor("inventory-orders").
		Register(application.EventOrderCreated, batch.HandlerFunc(svc.OnOrderCreated)),
		topics.OrderPublic)

	if err := app.Run(ctx); err != nil {
		log.Error("inventory-service stopped", "err", err)
		os.Exit(1)
	}
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
