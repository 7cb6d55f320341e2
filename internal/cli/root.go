// Package cli implements the postery-admin commands.
package cli

import (
	"fmt"
	"log"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/VitaminP8/postery-admin/internal/app"
	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/internal/media"
)

const storageFlag = "storage"

// storageFlags are shared by every command that opens the store
var storageFlags = map[string]cobraflags.Flag{
	storageFlag: &cobraflags.StringFlag{
		Name:  storageFlag,
		Value: "",
		Usage: "Тип хранилища: memory, postgres, mysql или sqlite (по умолчанию STORAGE из окружения)",
	},
}

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "postery-admin",
		Short: "Admin back office for users, posts and comments",
		Long: `Admin back office for users, posts and comments.

Configuration is read from the environment (and .env). See config.Config for
the variables; --storage overrides STORAGE for a single run.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
		newStatsCommand(),
		newExportCommand(),
		newTokenCommand(),
	)
	return root
}

func withStorage(cmd *cobra.Command) *cobra.Command {
	cobraflags.RegisterMap(cmd, storageFlags)
	return cmd
}

// runtime - открытое хранилище и собранные поверх него сервисы
type runtime struct {
	cfg     *config.Config
	app     *app.App
	media   *media.DiskStore
	exports afero.Fs
}

// bootstrap loads the configuration and opens the store. SQL schemas are
// migrated when migrate is set; watch keeps the locations file under watch.
func bootstrap(cmd *cobra.Command, migrate, watch bool) (*runtime, error) {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// флаг берем у выполняемой команды: карта storageFlags общая для всех
	if f := cmd.Flag(storageFlag); f != nil && f.Value.String() != "" {
		cfg.Storage = f.Value.String()
	}

	locations, err := config.LoadLocations(cfg.LocationsFile, watch)
	if err != nil {
		return nil, err
	}

	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(cfg.ExportRoot, 0o755); err != nil {
		return nil, fmt.Errorf("could not create export directory: %w", err)
	}
	exports := afero.NewBasePathFs(osFs, cfg.ExportRoot)

	stores, err := app.OpenStores(ctx, cfg, migrate)
	if err != nil {
		return nil, err
	}

	mediaStore := media.NewOSDiskStore(cfg.MediaRoot)
	return &runtime{
		cfg: cfg,
		app: app.New(stores, app.Options{
			Locations: locations,
			Media:     mediaStore,
			Exports:   exports,
		}),
		media:   mediaStore,
		exports: exports,
	}, nil
}

func (r *runtime) Close() {
	if err := r.app.Stores.Close(); err != nil {
		log.Printf("could not close storage: %v", err)
	}
}
