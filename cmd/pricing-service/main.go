package main

import (
	"context"
	"os"

	"github.com/dmehra2102/commerce-choreography/internal/platform"
	"github.com/dmehra2102/commerce-choreography/internal/pricing/application"
	"github.com/dmehra2102/commerce-choreography/pkg/batch"
	"github.com/dmehra2102/commerce-choreography/pkg/shutdown"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	app, err := platform.New(ctx, "pricing-service", configPath(), platform.Options{})
	if err != nil {
		platform.Fatal(err)
	}
	topics := app.Cfg.Topics

	svc := application.NewService(app.Log, app.Publisher(topics.PricingPublic, "pricing"))
	app.Consume(app.NewProcessor("pricing").
		Register(application.EventProductCreated, batch.HandlerFunc(svc.OnProductCreated)).
		Register(application.EventProductUpdated, batch.HandlerFunc(svc.OnProductUpdated)),
		topics.ProductPublic)

	if err := app.Run(ctx); err != nil {
		app.Log.Error("pricing-service stopped", "err", err)
		os.Exit(1)
	}
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
