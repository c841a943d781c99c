package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dustin/go-humanize"
	"github.com/lexicc/lexicc/internal/cache"
	"github.com/spf13/cobra"
)

var (
	pruneMaxSize string

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Show audio cache usage",
		Long:  paragraph(fmt.Sprintf("\nShow how much synthesized audio is %s on disk.", keyword("cached"))),
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}

			usage, err := cache.Scan(dir)
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Println("No audio cached yet in", dir)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d entries, %s\n", dir, usage.Entries, humanize.Bytes(uint64(usage.Bytes))) //nolint:gosec
			if usage.Entries > 0 {
				fmt.Printf("oldest used %s, newest used %s\n", humanize.Time(usage.Oldest), humanize.Time(usage.Newest))
			}
			return nil
		},
	}

	cachePruneCmd = &cobra.Command{
		Use:     "prune",
		Short:   "Remove least recently used audio",
		Example: paragraph("lexicc cache prune --max-size 500MB"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if pruneMaxSize != "" {
				cfg.Cache.MaxSize = pruneMaxSize
			}
			maxBytes, err := cfg.Cache.MaxBytes()
			if err != nil {
				return err
			}
			if maxBytes == 0 {
				return errors.New("no size limit: pass --max-size or set cache.max_size")
			}

			dir, err := cacheDir()
			if err != nil {
				return err
			}
			removed, freed, err := cache.Prune(dir, maxBytes)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d entries, freed %s\n", removed, humanize.Bytes(uint64(freed))) //nolint:gosec
			return nil
		},
	}
)

func cacheDir() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	dirs, err := stateDirs(cfg)
	if err != nil {
		return "", err
	}
	return dirs.Audio, nil
}

func init() {
	cachePruneCmd.Flags().StringVar(&pruneMaxSize, "max-size", "", "keep at most this much audio, e.g. 500MB")
}
