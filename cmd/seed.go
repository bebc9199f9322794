package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"farmsight.dev/farmsight/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a synthetic herd",
	Long: `Populate PostgreSQL with synthetic farms, barns, stalls, devices,
pigs and a short observation history per animal. Intended for demo and
development environments; running it twice doubles the herd.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	// Seed-specific flags
	seedCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	seedCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	seedCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	seedCmd.Flags().String("db-password", "", "PostgreSQL password")
	seedCmd.Flags().String("db-name", "farmsight", "PostgreSQL database name")
	seedCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	seedCmd.Flags().Int("pigs", 40, "Number of pigs to create")
	seedCmd.Flags().Int("devices", 40, "Number of devices to create")

	// Bind flags to viper
	_ = viper.BindPFlag("seed.db.host", seedCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("seed.db.port", seedCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("seed.db.user", seedCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("seed.db.password", seedCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("seed.db.name", seedCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("seed.db.sslmode", seedCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("seed.pigs", seedCmd.Flags().Lookup("pigs"))
	_ = viper.BindPFlag("seed.devices", seedCmd.Flags().Lookup("devices"))
}

func runSeed(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("seeding database")

	db, err := store.NewDB(store.DBConfig{
		Host:     viper.GetString("seed.db.host"),
		Port:     viper.GetInt("seed.db.port"),
		User:     viper.GetString("seed.db.user"),
		Password: viper.GetString("seed.db.password"),
		DBName:   viper.GetString("seed.db.name"),
		SSLMode:  viper.GetString("seed.db.sslmode"),
	})
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return err
	}
	defer func() {
		if err := store.CloseDB(db); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	config := store.DefaultSeedConfig()
	config.Pigs = viper.GetInt("seed.pigs")
	config.Devices = viper.GetInt("seed.devices")

	if err := store.Seed(db, config, logger); err != nil {
		logger.Error("failed to seed database", "error", err)
		return err
	}

	logger.Info("seed completed")
	return nil
}
