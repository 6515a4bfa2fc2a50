// Command inventory-acl-lambda runs the inventory product ACL behind an SQS
// event source mapping with partial batch responses enabled.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	inventoryacl "github.com/dmehra2102/commerce-choreography/internal/inventory/acl"
	"github.com/dmehra2102/commerce-choreography/internal/platform"
	"github.com/dmehra2102/commerce-choreography/pkg/batch"
)

func main() {
	ctx := context.Background()
	app, err := platform.New(ctx, "inventory-acl", configPath, platform.Options{})
	if err != nil {
		platform.Fatal(err)
	}

	translator := inventoryacl.NewProductCreatedTranslator(app.Log, app.Publisher(app.Cfg.Topics.InventoryInternal, "inventory"))
	proc := app.NewProcessor("inventory-acl-sqs").
		Register(inventoryacl.EventProductCreated, batch.FromTranslator(translator))

	lambda.Start(batch.NewSQSHandler(proc).Handle)
}

const configPath = "/var/task/config.yaml"
