package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/models"
	"backend/internal/repository"
)

// Dev-data loader: imports a JSON file of tours into the database, or wipes
// the collection.
//
//	go run ./cmd/importdata --import --file dev-data/tours.json
//	go run ./cmd/importdata --delete
func main() {
	doImport := flag.Bool("import", false, "import tours from the data file")
	doDelete := flag.Bool("delete", false, "delete all tours")
	file := flag.String("file", "dev-data/tours.json", "path to the tours JSON file")
	flag.Parse()

	if *doImport == *doDelete {
		log.Fatal("exactly one of --import or --delete is required")
	}

	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	defer client.Disconnect(ctx)

	if *doDelete {
		res, err := db.Collection("tours").DeleteMany(ctx, bson.M{})
		if err != nil {
			log.Fatal("delete failed:", err)
		}
		log.Printf("deleted %d tours", res.DeletedCount)
		return
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("could not read data file:", err)
	}

	var tours []models.Tour
	if err := json.Unmarshal(raw, &tours); err != nil {
		log.Fatal("could not parse data file:", err)
	}

	repo := repository.NewTourRepo(db)
	imported := 0
	for i := range tours {
		if _, err := repo.Create(ctx, &tours[i]); err != nil {
			log.Printf("skipping %q: %v", tours[i].Name, err)
			continue
		}
		imported++
	}
	log.Printf("imported %d of %d tours", imported, len(tours))
}
