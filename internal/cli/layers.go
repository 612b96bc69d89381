package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/armakit/armakit/internal/configloader"
	"github.com/armakit/armakit/internal/logging"
)

type layersFlags struct {
	format string
}

const formatJSON = "json"

// layerInfo represents a layer in JSON output.
type layerInfo struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Rank   int    `json:"rank"`
	System bool   `json:"system,omitempty"`
}

func newLayersCommand() *cobra.Command {
	flags := &layersFlags{}

	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List configured workspace layers",
		Long: `List the workspace layers in resolution order, with their priority
ranks and root paths. Lower ranks win path conflicts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("get config flag: %w", err)
			}

			loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
				ExplicitPath: configPath,
			})
			if err != nil {
				return errors.Join(errors.New("failed to load configuration"), err)
			}

			cfg := loadResult.Config

			infos := make([]layerInfo, 0, len(cfg.Layers)+1)
			for _, layer := range cfg.Layers {
				infos = append(infos, layerInfo{Name: layer.Name, Path: layer.Path, Rank: layer.Rank})
			}
			if cfg.EnableSystemMount && cfg.SystemMount != "" {
				maxRank := 0
				for _, l := range cfg.Layers {
					if l.Rank > maxRank {
						maxRank = l.Rank
					}
				}
				infos = append(infos, layerInfo{Name: "system", Path: cfg.SystemMount, Rank: maxRank + 1, System: true})
			}

			// Handle JSON output format.
			if flags.format == formatJSON {
				return outputLayersJSON(infos)
			}

			// Default to text output.
			logger := logging.NewInteractive()

			if len(infos) == 0 {
				logger.Info("no layers configured")
				logger.Info("add a layers section to .armakit.yml or pass --layer NAME=PATH")
				return nil
			}

			logger.Info("configured layers")

			for _, info := range infos {
				logger.Info(info.Name,
					logging.FieldRank, info.Rank,
					logging.FieldPath, info.Path,
				)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text",
		"output format: text, json")

	return cmd
}

// outputLayersJSON outputs layers as a JSON array.
func outputLayersJSON(infos []layerInfo) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding layers: %w", err)
	}
	return nil
}
