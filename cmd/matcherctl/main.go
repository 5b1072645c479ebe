// Command matcherctl loads a match table and reports which configured
// MatchIDs a piece of text triggers. It exists to exercise the wire codec
// and the matcher build/query path end to end, the way a small operational
// tool built alongside a library would.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lips7/matcher-go/matcher"
	"github.com/lips7/matcher-go/process"
	"github.com/lips7/matcher-go/simplematch"
	"github.com/lips7/matcher-go/wire"
)

var logger *zap.Logger

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "matcherctl",
		Short: "Build and query AND/NOT word-matching tables",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfigAndLogger(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "path to a matcherctl config file (yaml/json/toml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newMatchCmd())
	root.AddCommand(newExportCmd())
	return root
}

func initConfigAndLogger(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("MATCHERCTL")
	v.AutomaticEnv()

	if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgPath, err)
		}
	}

	v.SetDefault("log_level", "info")
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		v.Set("log_level", lvl)
	}

	zapCfg := zap.NewProductionConfig()
	if err := zapCfg.Level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	built, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logger = built
	return nil
}

func newMatchCmd() *cobra.Command {
	var tablePath string

	cmd := &cobra.Command{
		Use:   "match [text...]",
		Short: "Report which MatchIDs a table assigns to each text argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableMap, err := loadOrDemoTable(tablePath)
			if err != nil {
				return err
			}

			m, err := matcher.New(tableMap)
			if err != nil {
				return fmt.Errorf("compiling table: %w", err)
			}

			for _, text := range args {
				results, err := m.Process(text)
				if err != nil {
					logger.Error("processing text", zap.String("text", text), zap.Error(err))
					continue
				}
				if len(results) == 0 {
					fmt.Printf("%q: no match\n", text)
					continue
				}
				for _, r := range results {
					fmt.Printf("%q: match_id=%s words=%v\n", text, r.MatchID, r.Words)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tablePath, "table", "", "path to a MessagePack-encoded match table (omit to use the built-in demo table)")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-demo <path>",
		Short: "Write the built-in demo table to path as MessagePack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := wire.EncodeMatchTableMap(demoTable())
			if err != nil {
				return fmt.Errorf("encoding demo table: %w", err)
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			logger.Info("wrote demo table", zap.String("path", args[0]), zap.Int("bytes", len(data)))
			return nil
		},
	}
}

func loadOrDemoTable(path string) (matcher.MatchTableMap, error) {
	if path == "" {
		return demoTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return wire.DecodeMatchTableMap(data)
}

// demoTable is the fallback used when no --table is given, enough to
// exercise Fanjian, Delete, Normalize, PinYin, and exemption_word_list
// filtering in one pass.
func demoTable() matcher.MatchTableMap {
	return matcher.MatchTableMap{
		"greeting": {
			{
				TableID:     1,
				TableType:   matcher.Simple,
				ProcessType: process.FanjianDeleteNormalize | process.PinYin,
				WordList:    map[simplematch.WordID]string{4: "你好"},
			},
		},
		"army-day": {
			{
				TableID:           2,
				TableType:         matcher.Simple,
				ProcessType:       process.DeleteNormalize,
				WordList:          map[simplematch.WordID]string{9: "八一"},
				ExemptionWordList: []string{"八一社区"},
			},
		},
	}
}
