package main

import (
	"context"
	"os"

	"github.com/dmehra2102/commerce-choreography/internal/platform"
	productacl "github.com/dmehra2102/commerce-choreography/internal/product/acl"
	"github.com/dmehra2102/commerce-choreography/internal/product/application"
	"github.com/dmehra2102/commerce-choreography/internal/product/domain"
	producthttp "github.com/dmehra2102/commerce-choreography/internal/product/infrastructure/http"
	productdb "github.com/dmehra2102/commerce-choreography/internal/product/infrastructure/postgres"
	"github.com/dmehra2102/commerce-choreography/pkg/batch"
	"github.com/dmehra2102/commerce-choreography/pkg/shutdown"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	app, err := platform.New(ctx, "product-service", configPath(), platform.Options{Postgres: true, Idempotency: true})
	if err != nil {
		platform.Fatal(err)
	}
	log, topics := app.Log, app.Cfg.Topics

	repo := productdb.NewRepository(log, app.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("product schema failed", "err", err)
		os.Exit(1)
	}

	internal := app.Publisher(topics.ProductInternal, "product")
	public := app.Publisher(topics.ProductPublic, "product")
	svc := application.NewService(log, repo, internal)

	producthttp.NewHandler(log, svc).Routes(app.Router())

	publicTranslator := application.NewPublicTranslator(log, public)
	app.Consume(app.NewProcessor("product-internal").
		Register(domain.EventProductCreated, publicTranslator).
		Register(domain.EventProductUpdated, publicTranslator).
		Register(domain.EventProductDeleted, publicTranslator).
		Register(domain.EventPricingChanged, batch.HandlerFunc(svc.HandlePricingChanged)).
		Register(domain.EventStockUpdated, batch.HandlerFunc(svc.HandleStockUpdated)),
		topics.ProductInternal)

	acl := batch.FromTranslator(productacl.NewTranslator(log, internal))
	app.Consume(app.NewProcessor("product-acl").
		Register(productacl.EventPricingCalculated, acl).
		Register(productacl.EventInventoryStockUpdated, acl),
		topics.PricingPublic, topics.InventoryPublic)

	if err := app.Run(ctx); err != nil {
		log.Error("product-service stopped", "err", err)
		os.Exit(1)
	}
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
