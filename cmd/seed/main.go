// Package main seeds a fresh PartLogic data directory: the source
// registry with the built-in connector sites, and a small canonical
// catalog to exercise vehicle resolution and fitment checks.
//
// Usage:
//
//	go run ./cmd/seed --data-path ~/PartLogic/data
//	go run ./cmd/seed --data-path ~/PartLogic/data --catalog=false
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/partlogicapp/partlogic-server/internal/catalog"
	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/registry"
)

var seedCatalog = flag.Bool("catalog", true, "Seed canonical catalog fixtures alongside the registry")

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	fmt.Printf("Seeding data directory: %s\n", cfg.Data.BasePath)

	if err := seedRegistry(cfg.RegistryPath()); err != nil {
		log.Fatalf("seed registry: %v", err)
	}

	if *seedCatalog {
		if err := seedCanonicalCatalog(cfg); err != nil {
			log.Fatalf("seed catalog: %v", err)
		}
	}

	fmt.Println("Done.")
}

// starterSources are the registry entries for every built-in connector.
func starterSources() []domain.Source {
	return []domain.Source{
		{Domain: "ebay.com", Name: "eBay Motors", Category: "marketplace", Priority: 90, SupportsPartNumber: true, Tags: []string{"api"}},
		{Domain: "rockauto.com", Name: "RockAuto", Category: "marketplace", Priority: 85, SupportsPartNumber: true},
		{Domain: "fcpeuro.com", Name: "FCP Euro", Category: "marketplace", Priority: 80, SupportsPartNumber: true, Tags: []string{"european"}},
		{Domain: "ecstuning.com", Name: "ECS Tuning", Category: "marketplace", Priority: 70, SupportsPartNumber: true, Tags: []string{"european"}},
		{Domain: "partsouq.com", Name: "PartSouq", Category: "marketplace", Priority: 70, SupportsPartNumber: true, SupportsVIN: true},
		{Domain: "amazon.com", Name: "Amazon", Category: "marketplace", Priority: 60, SupportsPartNumber: true},
		{Domain: "partsgeek.com", Name: "Parts Geek", Category: "marketplace", Priority: 55, SupportsPartNumber: true},
		{Domain: "autozone.com", Name: "AutoZone", Category: "retailer", Priority: 50, SupportsPartNumber: true},
		{Domain: "oreillyauto.com", Name: "O'Reilly Auto Parts", Category: "retailer", Priority: 50, SupportsPartNumber: true},
		{Domain: "napaonline.com", Name: "NAPA", Category: "retailer", Priority: 45, SupportsPartNumber: true},
		{Domain: "advanceautoparts.com", Name: "Advance Auto Parts", Category: "retailer", Priority: 45, SupportsPartNumber: true},
		{Domain: "lkqonline.com", Name: "LKQ Online", Category: "used_aggregator", Priority: 60, SupportsPartNumber: true},
		{Domain: "row52.com", Name: "Row52", Category: "salvage_yard", Priority: 65},
		{Domain: "car-part.com", Name: "Car-Part.com", Category: "used_aggregator", Priority: 65},
	}
}

func seedRegistry(path string) error {
	reg, err := registry.Open(path, nil)
	if err != nil {
		return err
	}
	defer reg.Close()

	added := 0
	for _, src := range starterSources() {
		if _, err := reg.Get(src.Domain); err == nil {
			continue // already present, leave operator edits alone
		}
		if _, err := reg.Upsert(src); err != nil {
			return fmt.Errorf("upsert %s: %w", src.Domain, err)
		}
		added++
	}
	fmt.Printf("Registry: %d sources added (%d total)\n", added, len(reg.All()))
	return nil
}

// catalogFixture is one part with its numbers and the vehicles it fits.
type catalogFixture struct {
	part     catalog.Part
	vehicles []catalog.Vehicle
}

func fixtures() []catalogFixture {
	return []catalogFixture{
		{
			part: catalog.Part{
				Type:  "oem",
				Brand: "Porsche",
				Name:  "Water Pump",
				Numbers: []catalog.PartNumber{
					{Namespace: "oem", Value: "944-106-021-02"},
					{Namespace: "aftermarket", Value: "PA431A", SourceDomain: "fcpeuro.com"},
				},
			},
			vehicles: []catalog.Vehicle{
				{Year: 1987, Make: "Porsche", Model: "944"},
				{Year: 1988, Make: "Porsche", Model: "944"},
			},
		},
		{
			part: catalog.Part{
				Type:  "aftermarket",
				Brand: "Bosch",
				Name:  "Alternator",
				Numbers: []catalog.PartNumber{
					{Namespace: "aftermarket", Value: "AL0188X"},
					{Namespace: "oem", Value: "951-603-119-00"},
				},
			},
			vehicles: []catalog.Vehicle{
				{Year: 1987, Make: "Porsche", Model: "944"},
			},
		},
		{
			part: catalog.Part{
				Type:  "aftermarket",
				Brand: "Moog",
				Name:  "Front Lower Control Arm",
				Numbers: []catalog.PartNumber{
					{Namespace: "aftermarket", Value: "RK620167"},
				},
			},
			vehicles: []catalog.Vehicle{
				{Year: 2008, Make: "Honda", Model: "Civic"},
			},
		},
	}
}

func seedCanonicalCatalog(cfg *config.Config) error {
	store, err := catalog.Open(catalog.Options{
		DBPath:    cfg.DatabasePath(),
		IndexPath: cfg.CatalogIndexPath(),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	vehicleIDs := make(map[string]int64)
	parts, fitments := 0, 0
	for _, fx := range fixtures() {
		partID, err := store.AddPart(ctx, fx.part)
		if err != nil {
			return fmt.Errorf("add part %s %s: %w", fx.part.Brand, fx.part.Name, err)
		}
		parts++
		for _, v := range fx.vehicles {
			key := fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
			vehicleID, ok := vehicleIDs[key]
			if !ok {
				vehicleID, err = store.AddVehicle(ctx, v)
				if err != nil {
					return fmt.Errorf("add vehicle %s: %w", key, err)
				}
				vehicleIDs[key] = vehicleID
			}
			if _, err := store.AddFitment(ctx, catalog.Fitment{PartID: partID, VehicleID: vehicleID}); err != nil {
				return fmt.Errorf("add fitment: %w", err)
			}
			fitments++
		}
	}

	indexed, err := store.RebuildIndex(ctx)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	fmt.Printf("Catalog: %d parts, %d fitments, %d indexed\n", parts, fitments, indexed)
	return nil
}
