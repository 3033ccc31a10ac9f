package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/natserract/ffcleverreach/pkg/cleverreach"
	"github.com/natserract/ffcleverreach/pkg/config"
	"github.com/natserract/ffcleverreach/pkg/postgres"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"go.uber.org/zap"
)

const defaultFname = "lists.json"

// exportedList is one mailing list with its receiver attributes.
type exportedList struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var querier settings.Querier
	if cfg.SettingsBackend == config.BackendPostgres {
		db, err := postgres.New(postgres.NewConfig(), logger)
		if err != nil {
			logger.Error("Failed to connect to database", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		querier = db
	}

	options, closeOptions, err := settings.OpenStore(ctx, cfg, querier, logger)
	if err != nil {
		logger.Error("Failed to initialize settings store", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to initialize settings store: %v\n", err)
		os.Exit(1)
	}
	defer closeOptions()

	repo := settings.NewRepository(options, logger)
	stored, err := repo.Load(ctx)
	if err != nil {
		logger.Error("Failed to load settings", zap.Error(err))
		os.Exit(1)
	}
	if !stored.Status {
		fmt.Fprintln(os.Stderr, "CleverReach is not connected, complete the OAuth flow first")
		os.Exit(1)
	}

	client := cleverreach.NewClientWithLogger(cfg, cleverreach.CredentialsFrom(stored), repo, logger)

	lists, err := collectLists(ctx, client, logger)
	if err != nil {
		logger.Error("Failed to collect lists", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to collect lists: %s\n", cleverreach.Message(err))
		os.Exit(1)
	}

	if err := os.MkdirAll("exports", 0755); err != nil {
		logger.Error("Failed to create exports dir", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to create exports dir: %v\n", err)
		os.Exit(1)
	}
	fname := defaultFname
	if len(os.Args) > 1 {
		fname = os.Args[1]
	}
	path := "exports/" + fname
	payload, err := json.MarshalIndent(lists, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal JSON", zap.Error(err))
		os.Exit(1)
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		logger.Error("Failed to write export file", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}
	logger.Info("Export written", zap.String("path", path), zap.Int("count", len(lists)))
	fmt.Printf("Exported %d lists to %s\n", len(lists), path)
}

// collectLists fetches every list and then its attributes, one request at a
// time. A list whose attributes cannot be read is exported without them.
func collectLists(ctx context.Context, client cleverreach.API, logger *zap.Logger) ([]exportedList, error) {
	groups, err := client.Groups(ctx)
	if err != nil {
		return nil, fmt.Errorf("groups: %w", err)
	}

	lists := make([]exportedList, 0, len(groups))
	for _, g := range groups {
		list := exportedList{ID: g.ID.String(), Name: g.Name, Attributes: []string{}}

		attributes, err := client.GroupAttributes(ctx, list.ID)
		if err != nil {
			logger.Warn("GroupAttributes failed", zap.String("list_id", list.ID), zap.Error(err))
		}
		for _, a := range attributes {
			list.Attributes = append(list.Attributes, a.Name)
		}
		sort.Strings(list.Attributes)
		lists = append(lists, list)
	}

	sort.Slice(lists, func(i, j int) bool {
		return lists[i].Name < lists[j].Name
	})
	return lists, nil
}
