package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"regionvar"
)

type config struct {
	databasePath     string
	imagePath        string
	urlTemplate      string
	downloadFolder   string
	extractionFolder string
	treeseqTemplate  string
	chromosomes      string
	regionsPath      string
	loglevel         string
}

var cfg config

var rootCmd = &cobra.Command{
	Use:   "regionvar",
	Short: "Tabulate how broadly genetic variants are shared across regions",
	Long: `regionvar downloads compressed treeseq variant data per chromosome arm,
classifies every variant allele by how many geographic/ancestral regions its
carriers span, accumulates per-individual and global counts in a SQLite
database, and draws a stacked bar chart of the per-region averages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := log.ParseLevel(cfg.loglevel)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		if !isatty.IsTerminal(os.Stderr.Fd()) {
			log.StandardLogger().Formatter = &log.TextFormatter{DisableTimestamp: true}
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.databasePath, "database-path", "regional_variants.sqlite", "accumulation database `file`")
	pf.StringVar(&cfg.imagePath, "image-path", "regional_variants.svg", "chart output `file`")
	pf.StringVar(&cfg.urlTemplate, "url-template", "https://zenodo.org/record/5495535/files/{treeseq_file}.tsz?download=1", "archive URL `template` with a {treeseq_file} placeholder")
	pf.StringVar(&cfg.downloadFolder, "download-folder", ".", "`folder` receiving .tsz archives")
	pf.StringVar(&cfg.extractionFolder, "extraction-folder", ".", "`folder` receiving extracted treeseq files")
	pf.StringVar(&cfg.treeseqTemplate, "treeseq-template", "hgdp_tgp_sgdp_chr{chromosome}.dated.trees", "treeseq filename `template` with a {chromosome} placeholder")
	pf.StringVar(&cfg.chromosomes, "chromosomes", regionvar.DefaultArms, "comma-separated chromosome arm `list`")
	pf.StringVar(&cfg.regionsPath, "regions", "", "JSON `file` overriding the built-in population-to-region table")
	pf.StringVar(&cfg.loglevel, "loglevel", "info", "logging threshold (trace, debug, info, warn, error, fatal, or panic)")

	rootCmd.AddCommand(initCmd, downloadCmd, extractCmd, fillCmd, deleteCmd, drawCmd, allCmd)
}

func arms() ([]string, error) {
	return regionvar.ParseArms(cfg.chromosomes)
}

func regionMap() (*regionvar.RegionMap, error) {
	if cfg.regionsPath != "" {
		return regionvar.LoadRegionMap(cfg.regionsPath)
	}
	return regionvar.DefaultRegionMap(), nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Delete and recreate the accumulation database",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Infof("initializing %s", cfg.databasePath)
		store, err := regionvar.InitStore(cfg.databasePath)
		if err != nil {
			return err
		}
		return store.Close()
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the .tsz archive for each chromosome arm",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := arms()
		if err != nil {
			return err
		}
		for _, arm := range list {
			name := regionvar.TreeseqFile(cfg.treeseqTemplate, arm)
			if err := regionvar.Download(cmd.Context(), cfg.urlTemplate, cfg.downloadFolder, name); err != nil {
				return err
			}
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Decompress downloaded archives into the extraction folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := arms()
		if err != nil {
			return err
		}
		for _, arm := range list {
			name := regionvar.TreeseqFile(cfg.treeseqTemplate, arm)
			if err := regionvar.Extract(cfg.downloadFolder, cfg.extractionFolder, name); err != nil {
				return err
			}
		}
		return nil
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Classify every variant and accumulate counts into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := arms()
		if err != nil {
			return err
		}
		rm, err := regionMap()
		if err != nil {
			return err
		}
		store, err := regionvar.OpenStore(cfg.databasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, arm := range list {
			name := regionvar.TreeseqFile(cfg.treeseqTemplate, arm)
			if err := fillOne(store, rm, name); err != nil {
				return err
			}
		}
		return nil
	},
}

func fillOne(store *regionvar.Store, rm *regionvar.RegionMap, name string) error {
	path := filepath.Join(cfg.extractionFolder, name)
	log.Infof("filling %s from %s", cfg.databasePath, path)

	ts, err := regionvar.Open(path)
	if err != nil {
		return err
	}
	defer ts.Close()

	if err := regionvar.Fill(store, ts, rm); err != nil {
		return err
	}
	return regionvar.PrintSummary(os.Stdout, store)
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete extracted treeseq files to reclaim space",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := arms()
		if err != nil {
			return err
		}
		for _, arm := range list {
			name := regionvar.TreeseqFile(cfg.treeseqTemplate, arm)
			if err := regionvar.Delete(cfg.extractionFolder, name); err != nil {
				return err
			}
		}
		return nil
	},
}

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Print the per-region summary and render the stacked bar chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := regionvar.OpenStore(cfg.databasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := regionvar.PrintSummary(os.Stdout, store); err != nil {
			return err
		}
		return regionvar.Draw(store, cfg.imagePath)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the full pipeline: init, then download/extract/fill/delete per arm, then draw",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := arms()
		if err != nil {
			return err
		}
		rm, err := regionMap()
		if err != nil {
			return err
		}

		log.Infof("initializing %s", cfg.databasePath)
		store, err := regionvar.InitStore(cfg.databasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, arm := range list {
			name := regionvar.TreeseqFile(cfg.treeseqTemplate, arm)
			if err := regionvar.Download(cmd.Context(), cfg.urlTemplate, cfg.downloadFolder, name); err != nil {
				return err
			}
			if err := regionvar.Extract(cfg.downloadFolder, cfg.extractionFolder, name); err != nil {
				return err
			}
			if err := fillOne(store, rm, name); err != nil {
				return err
			}
			if err := regionvar.Delete(cfg.extractionFolder, name); err != nil {
				return err
			}
		}

		if err := regionvar.PrintSummary(os.Stdout, store); err != nil {
			return err
		}
		return regionvar.Draw(store, cfg.imagePath)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
