package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leap-analytics/gymscope/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml in the current directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !configInitForce {
			if _, err := os.Stat("config.yaml"); err == nil {
				return eris.New("config init: config.yaml already exists (use --force to overwrite)")
			}
		}

		// Nest the flat viper defaults back into yaml structure via the
		// Config type so the emitted file matches what Load expects.
		defaults := config.Config{}
		v := config.Defaults()
		defaults.Warehouse.Port = v["warehouse.port"].(int)
		defaults.Warehouse.SSLMode = v["warehouse.sslmode"].(string)
		defaults.Warehouse.MartSchema = v["warehouse.mart_schema"].(string)
		defaults.Warehouse.IntermediateSchema = v["warehouse.intermediate_schema"].(string)
		defaults.Warehouse.MaxConns = int32(v["warehouse.max_conns"].(int))
		defaults.Warehouse.MinConns = int32(v["warehouse.min_conns"].(int))
		defaults.Cache.TTLMinutes = v["cache.ttl_minutes"].(int)
		defaults.Cache.QueriesPerMinute = v["cache.queries_per_minute"].(int)
		defaults.Snapshot.Path = v["snapshot.path"].(string)
		defaults.Server.Port = v["server.port"].(int)
		defaults.Server.AllowedOrigins = v["server.allowed_origins"].([]string)
		defaults.Log.Level = v["log.level"].(string)
		defaults.Log.Format = v["log.format"].(string)

		data, err := yaml.Marshal(defaults)
		if err != nil {
			return eris.Wrap(err, "config init: marshal defaults")
		}

		header := []byte("# gymscope configuration. Warehouse host/user/database are required;\n" +
			"# set them here or via GYMSCOPE_WAREHOUSE_* environment variables.\n")
		if err := os.WriteFile("config.yaml", append(header, data...), 0o644); err != nil {
			return eris.Wrap(err, "config init: write file")
		}
		cmd.Println("wrote config.yaml")
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
