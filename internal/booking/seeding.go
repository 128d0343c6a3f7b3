package booking

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/seed"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const bookingSeedApplication = "reserva"

type bootstrapSeedDocument struct {
	Areas  []areaSeed  `json:"areas"`
	Tables []tableSeed `json:"tables"`
	Slots  []slotSeed  `json:"slots"`
}

type areaSeed struct {
	Name string `json:"name"`
}

type tableSeed struct {
	Number   string `json:"number"`
	Area     string `json:"area"`
	Capacity int    `json:"capacity"`
}

type slotSeed struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func loadBootstrapSeeds(seedFS embed.FS) (*bootstrapSeedDocument, error) {
	seedBytes, err := seedFS.ReadFile("seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}

	if len(seedBytes) == 0 {
		return nil, errors.New("bootstrap seed file is empty")
	}

	var doc bootstrapSeedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode bootstrap seed file: %w", err)
	}

	if len(doc.Tables) == 0 && len(doc.Slots) == 0 {
		return nil, errors.New("bootstrap seed file does not contain tables or slots")
	}

	return &doc, nil
}

// ApplyBootstrapSeeds ensures all predefined areas, tables and booking slots
// exist.
func ApplyBootstrapSeeds(ctx context.Context, tableRepo TableRepo, slotRepo SlotRepo, seedFS embed.FS, logger aqm.Logger) error {
	if tableRepo == nil {
		return errors.New("table repository is required")
	}
	if slotRepo == nil {
		return errors.New("slot repository is required")
	}

	doc, err := loadBootstrapSeeds(seedFS)
	if err != nil {
		return err
	}

	areas := make(map[string]uuid.UUID, len(doc.Areas))
	for _, a := range doc.Areas {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		areas[name] = aqm.GenerateNewID()
	}

	defs := buildSlotSeedDefinitions(doc.Slots, slotRepo, logger)
	defs = append(defs, buildTableSeedDefinitions(doc.Tables, areas, tableRepo, logger)...)
	if len(defs) == 0 {
		logger.Info("No bootstrap seeds to apply")
		return nil
	}

	tracker, err := trackerFromRepo(tableRepo)
	if err != nil {
		return err
	}

	logger.Info("Applying bootstrap seeds")
	if err := seed.Apply(ctx, tracker, defs, bookingSeedApplication); err != nil {
		return err
	}
	logger.Info("Bootstrap seeds applied successfully")
	return nil
}

func trackerFromRepo(repo TableRepo) (seed.Tracker, error) {
	provider, ok := repo.(mongoDatabaseProvider)
	if !ok {
		return nil, errors.New("table repository does not expose MongoDB access for seeding")
	}
	db := provider.GetDatabase()
	if db == nil {
		return nil, errors.New("table repository database is not initialized")
	}
	return seed.NewMongoTracker(db), nil
}

type mongoDatabaseProvider interface {
	GetDatabase() *mongo.Database
}

func buildSlotSeedDefinitions(raw []slotSeed, repo SlotRepo, logger aqm.Logger) []seed.Seed {
	var defs []seed.Seed

	for _, s := range raw {
		seedData := s
		if strings.TrimSpace(seedData.Name) == "" {
			logger.Info("Skipping seed slot with empty name")
			continue
		}

		logger.Info("Including seed slot", "name", seedData.Name, "start", seedData.StartTime, "end", seedData.EndTime)

		seedID := fmt.Sprintf("2025-02-10_slot_%s", seedIdentifier(seedData.Name))
		description := fmt.Sprintf("Ensure booking slot %s exists", seedData.Name)

		defs = append(defs, seed.Seed{
			ID:          seedID,
			Description: description,
			Run: func(ctx context.Context) error {
				return seedData.ensureSlot(ctx, repo, logger)
			},
		})
	}

	return defs
}

func buildTableSeedDefinitions(raw []tableSeed, areas map[string]uuid.UUID, repo TableRepo, logger aqm.Logger) []seed.Seed {
	var defs []seed.Seed

	for _, s := range raw {
		seedData := s
		if strings.TrimSpace(seedData.Number) == "" {
			logger.Info("Skipping seed table with empty number")
			continue
		}

		logger.Info("Including seed table", "number", seedData.Number, "area", seedData.Area, "capacity", seedData.Capacity)

		seedID := fmt.Sprintf("2025-02-10_table_%s", seedIdentifier(seedData.Number))
		description := fmt.Sprintf("Ensure table %s exists", seedData.Number)

		defs = append(defs, seed.Seed{
			ID:          seedID,
			Description: description,
			Run: func(ctx context.Context) error {
				return seedData.ensureTable(ctx, repo, areas, logger)
			},
		})
	}

	return defs
}

func seedIdentifier(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}

	replacer := strings.NewReplacer("-", "_", " ", "_", "/", "_", "\\", "_", ":", "_")
	value = replacer.Replace(value)

	var builder strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			builder.WriteRune(r)
		}
	}

	result := builder.String()
	if result == "" {
		return "seed"
	}
	return result
}

func (s slotSeed) ensureSlot(ctx context.Context, repo SlotRepo, logger aqm.Logger) error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return errors.New("slot name is required")
	}

	slots, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list existing slots: %w", err)
	}

	for _, existing := range slots {
		if existing.Name == name {
			logger.Info("Seed slot already exists", "name", name)
			return nil
		}
	}

	slot := NewBookingSlot()
	slot.Name = name
	slot.StartTime = s.StartTime
	slot.EndTime = s.EndTime
	slot.CreatedBy = "seed:bootstrap"
	slot.UpdatedBy = "seed:bootstrap"
	slot.BeforeCreate()

	if err := repo.Create(ctx, slot); err != nil {
		return fmt.Errorf("create seed slot %s: %w", name, err)
	}

	logger.Info("Seed slot created", "name", name, "id", slot.ID.String())
	return nil
}

func (s tableSeed) ensureTable(ctx context.Context, repo TableRepo, areas map[string]uuid.UUID, logger aqm.Logger) error {
	number := strings.TrimSpace(s.Number)
	if number == "" {
		return errors.New("table number is required")
	}
	if s.Capacity <= 0 {
		return fmt.Errorf("table %s capacity must be positive", number)
	}

	existing, err := repo.GetByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("check existing table %s: %w", number, err)
	}
	if existing != nil {
		logger.Info("Seed table already exists", "number", number)
		return nil
	}

	table := NewTable()
	table.Number = number
	table.Capacity = s.Capacity
	if areaID, ok := areas[strings.TrimSpace(s.Area)]; ok {
		id := areaID
		table.AreaID = &id
	}
	table.CreatedBy = "seed:bootstrap"
	table.UpdatedBy = "seed:bootstrap"
	table.BeforeCreate()

	if err := repo.Create(ctx, table); err != nil {
		return fmt.Errorf("create seed table %s: %w", number, err)
	}

	logger.Info("Seed table created", "number", number, "id", table.ID.String())
	return nil
}

// SeedingFunc returns an aqm lifecycle OnStart-compatible function which
// starts applying bootstrap seeds in the background.
func SeedingFunc(seedCtx context.Context, tableRepo TableRepo, slotRepo SlotRepo, seedFS embed.FS, logger aqm.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting bootstrap seeding in background")
		go func() {
			if err := ApplyBootstrapSeeds(seedCtx, tableRepo, slotRepo, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("❌ Bootstrap seeds failed: %v", err)
			} else if err == nil {
				logger.Info("✓ Bootstrap seeding completed successfully")
			}
		}()
		return nil
	}
}

// StopFunc returns an aqm lifecycle OnStop-compatible function which calls
// the provided cancel function to stop any background seeding goroutine.
func StopFunc(cancelFunc context.CancelFunc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if cancelFunc != nil {
			cancelFunc()
		}
		return nil
	}
}
