package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/taxmitra/taxmitra/internal/analytics"
)

var (
	projectID = flag.String("project", "", "GCP project ID (required)")
	datasetID = flag.String("dataset", analytics.DefaultDatasetID, "BigQuery dataset ID")
	tableID   = flag.String("table", analytics.DefaultTableID, "BigQuery table ID")
	location  = flag.String("location", "asia-south1", "BigQuery dataset location")
)

func main() {
	flag.Parse()

	if *projectID == "" {
		log.Fatal("Error: -project flag is required. Please specify your GCP project ID.")
	}

	ctx := context.Background()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to BigQuery project: %s, dataset: %s", *projectID, *datasetID)

	dataset := client.Dataset(*datasetID)
	if err := ensureDataset(ctx, dataset, *location); err != nil {
		log.Fatalf("Failed to ensure dataset: %v", err)
	}

	if exists, err := tableExists(ctx, dataset, *tableID); err != nil {
		log.Fatalf("Failed to list tables: %v", err)
	} else if exists {
		log.Printf("Table %s.%s already exists. Nothing to do.", *datasetID, *tableID)
		return
	}

	schema, err := bigquery.InferSchema(analytics.TransactionRow{})
	if err != nil {
		log.Fatalf("Failed to infer schema: %v", err)
	}
	schema = markNullable(schema)

	if err := dataset.Table(*tableID).Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		log.Fatalf("Failed to create table: %v", err)
	}

	log.Printf("Created table %s.%s", *datasetID, *tableID)
}

// ensureDataset creates the dataset if it does not exist.
func ensureDataset(ctx context.Context, dataset *bigquery.Dataset, location string) error {
	err := dataset.Create(ctx, &bigquery.DatasetMetadata{Location: location})
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
		log.Printf("Dataset %s already exists", dataset.DatasetID)
		return nil
	}
	return err
}

// tableExists checks for the table via the dataset's table listing.
func tableExists(ctx context.Context, dataset *bigquery.Dataset, tableID string) (bool, error) {
	it := dataset.Tables(ctx)
	for {
		t, err := it.Next()
		if err == iterator.Done {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if t.TableID == tableID {
			return true, nil
		}
	}
}

// markNullable relaxes the inferred schema: only identity and money fields
// stay required, everything else may be absent on old exports.
func markNullable(schema bigquery.Schema) bigquery.Schema {
	required := map[string]bool{
		"transaction_id":   true,
		"type":             true,
		"amount":           true,
		"transaction_date": true,
	}
	for _, field := range schema {
		if !required[field.Name] {
			field.Required = false
		}
	}
	return schema
}
