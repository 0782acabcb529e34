// Command bibmatch builds the matching artifacts from a reference corpus
// and matches batches of candidate records against them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/corpus"
	"github.com/liliang-cn/bibmatch/pkg/matcher"
	"github.com/liliang-cn/bibmatch/pkg/output"
	"github.com/liliang-cn/bibmatch/pkg/report"
	"github.com/liliang-cn/bibmatch/pkg/sourcedata"
	"github.com/liliang-cn/bibmatch/pkg/vectorize"
	"github.com/liliang-cn/bibmatch/pkg/vocab"
)

var (
	source            string
	vocabFile         string
	datasetVectorFile string
	sourceDataFile    string
	input             string
	outputFile        string
	outputFormat      string
	corpusURL         string
	verbose           bool
	options           []string
	configFile        string
)

var rootCmd = &cobra.Command{
	Use:   "bibmatch",
	Short: "Offline bibliographic record linker",
	Long: `Matches semi-structured candidate records against a pre-indexed
reference corpus using weighted sparse TF-IDF cosine scoring.

Running without a subcommand is equivalent to match-json-zip.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatch()
	},
}

var buildVocabCmd = &cobra.Command{
	Use:   "build-vocab",
	Short: "Scan the corpus and build the vocabulary artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(config.CmdBuildVocab)
		if err != nil {
			return err
		}
		client := corpus.NewClient(cfg.CorpusURL)
		v, err := vocab.Build(cmd.Context(), cfg, client)
		if err != nil {
			return fmt.Errorf("failed to build vocab: %w", err)
		}
		v.LogStats()
		if err := v.Save(cfg.VocabFile); err != nil {
			return fmt.Errorf("failed to save vocab: %w", err)
		}
		log.Info().Str("path", cfg.VocabFile).Msg("vocab saved")
		return nil
	},
}

var buildDatasetVectorsCmd = &cobra.Command{
	Use:   "build-dataset-vectors",
	Short: "Rescan the corpus and build the dataset vector artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(config.CmdBuildDatasetVectors)
		if err != nil {
			return err
		}
		client := corpus.NewClient(cfg.CorpusURL)
		vectors, err := vectorize.Build(cmd.Context(), cfg, client)
		if err != nil {
			return fmt.Errorf("failed to build dataset vectors: %w", err)
		}
		if err := vectors.Save(cfg.DatasetVectorFile); err != nil {
			return fmt.Errorf("failed to save dataset vectors: %w", err)
		}
		log.Info().Str("path", cfg.DatasetVectorFile).Msg("dataset vectors saved")
		return nil
	},
}

var buildSourceDataCmd = &cobra.Command{
	Use:   "build-source-data",
	Short: "Scan the corpus and build the source data artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(config.CmdBuildSourceData)
		if err != nil {
			return err
		}
		client := corpus.NewClient(cfg.CorpusURL)
		sd, err := sourcedata.Build(cmd.Context(), cfg, client)
		if err != nil {
			return fmt.Errorf("failed to build source data: %w", err)
		}
		if err := sd.Save(cfg.SourceDataFile); err != nil {
			return fmt.Errorf("failed to save source data: %w", err)
		}
		log.Info().Str("path", cfg.SourceDataFile).Msg("source data saved")
		return nil
	},
}

var dumpSourceDataCmd = &cobra.Command{
	Use:   "dump-source-data",
	Short: "Dump the source data artifact as JSON Lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(config.CmdDumpSourceData)
		if err != nil {
			return err
		}
		sd, err := sourcedata.Load(cfg.SourceDataFile)
		if err != nil {
			return err
		}
		if cfg.OutputToFile() {
			f, err := os.Create(cfg.Output)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			return sd.Dump(f)
		}
		return sd.Dump(os.Stdout)
	},
}

var matchJSONZipCmd = &cobra.Command{
	Use:   "match-json-zip",
	Short: "Match a zip or directory of candidate records against the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatch()
	},
}

func runMatch() error {
	cfg, err := buildConfig(config.CmdMatchJSONZip)
	if err != nil {
		return err
	}
	result, err := matcher.Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	if err := output.WriteRecords(cfg, result.Records); err != nil {
		return err
	}
	return report.Write(cfg, result.Statistics, result.Weights)
}

// buildConfig assembles the immutable run configuration: config file
// options first, then -O flags on top, then path defaults.
func buildConfig(cmd config.Command) (*config.Config, error) {
	if source == "" {
		return nil, fmt.Errorf("source name is required for %s", cmd)
	}
	opts := config.NewOptions()
	opts.OutputSourceName = source
	if configFile != "" {
		if err := config.LoadOptionsFromFile(configFile, &opts); err != nil {
			return nil, err
		}
	}
	for _, option := range options {
		if err := opts.Apply(option); err != nil {
			return nil, err
		}
	}
	if err := opts.LoadExcludeLists(); err != nil {
		return nil, err
	}

	cfg := &config.Config{
		Cmd:               cmd,
		Source:            source,
		VocabFile:         vocabFile,
		DatasetVectorFile: datasetVectorFile,
		SourceDataFile:    sourceDataFile,
		Input:             input,
		Output:            outputFile,
		CorpusURL:         corpusURL,
		Verbose:           verbose,
		ConfigFile:        configFile,
		Options:           opts,
	}
	switch cmd {
	case config.CmdMatchJSONZip:
		if input == "" {
			return nil, fmt.Errorf("input file is required for %s", cmd)
		}
		if outputFormat == "" {
			outputFormat = "xlsx"
		}
	default:
		if outputFormat == "" {
			outputFormat = "text"
		}
	}
	cfg.OutputFormat = config.ParseOutputFormat(outputFormat)
	cfg.ApplyArtifactDefaults()
	return cfg, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&source, "source", "s", "", "Source name in the reference corpus")
	pf.StringVarP(&vocabFile, "vocab-file", "V", "", "Vocab artifact path (default {dataset-dir}/{source}-vocab.bin)")
	pf.StringVarP(&datasetVectorFile, "dataset-vector-file", "D", "", "Dataset vector artifact path (default {dataset-dir}/{source}-dataset-vectors.bin)")
	pf.StringVarP(&sourceDataFile, "source-data-file", "S", "", "Source data artifact path (default {dataset-dir}/{source}-source-data.bin)")
	pf.StringVarP(&input, "input", "i", "", "Input zip file or directory")
	pf.StringVarP(&outputFile, "output", "o", "", "Output file (default stdout)")
	pf.StringVarP(&outputFormat, "output-format", "F", "", "Output format: text, csv, json, xlsx")
	pf.StringVar(&corpusURL, "corpus-url", corpus.DefaultURL, "Document store URL for corpus ingestion")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	pf.StringArrayVarP(&options, "option", "O", nil, "Extra option, name or name=value (repeatable)")
	pf.StringVarP(&configFile, "config-file", "C", "", "Load options and weights from a JSON file")

	rootCmd.AddCommand(
		buildVocabCmd,
		buildDatasetVectorsCmd,
		buildSourceDataCmd,
		dumpSourceDataCmd,
		matchJSONZipCmd,
	)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}
