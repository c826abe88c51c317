package main

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/gomlx/go-wordbpe/internal/artifacts"
	"github.com/gomlx/go-wordbpe/internal/config"
	"github.com/gomlx/go-wordbpe/internal/corpus"
	"github.com/gomlx/go-wordbpe/internal/report"
	"github.com/gomlx/go-wordbpe/tokenizers/bpe"
	"github.com/gomlx/go-wordbpe/tokenizers/hftokenizer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newTrainCmd(cfg *config.Config) *cobra.Command {
	var (
		corpusPath string
		vocabSize  int
		outputDir  string
		printAll   bool
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a tokenizer on a corpus, then encode and decode the corpus with it",
		Long: `Train a tokenizer on a corpus, then encode and decode the corpus with it.

The output directory receives the learned tokenizer.json, the encoded corpus (ids.txt and
ids.parquet), the vocabulary (tokens.txt), the decoded text (decoded.txt) and a manifest.json
describing the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return trainHandler(cmd, corpusPath, vocabSize, outputDir, printAll)
		},
	}
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "UTF-8 text file to train on")
	cmd.Flags().IntVar(&vocabSize, "vocab-size", cfg.VocabSize, "Target vocabulary size, including the base characters and whitespace markers")
	cmd.Flags().StringVar(&outputDir, "out", cfg.OutputDir, "Output directory")
	cmd.Flags().BoolVar(&printAll, "print", false, "Print the encoded IDs and the decoded text")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}

func trainHandler(cmd *cobra.Command, corpusPath string, vocabSize int, outputDir string, printAll bool) error {
	if vocabSize <= 0 {
		return errors.Errorf("--vocab-size must be greater than zero, got %d", vocabSize)
	}
	text, err := corpus.Load(corpusPath)
	if err != nil {
		return err
	}

	e := bpe.New()
	e.Train(text, vocabSize)
	ids, err := e.Encode(text)
	if err != nil {
		return errors.WithMessagef(err, "while encoding %q", corpusPath)
	}
	decoded, err := e.Decode(ids)
	if err != nil {
		return errors.WithMessagef(err, "while decoding %q", corpusPath)
	}

	w := artifacts.NewWriter(outputDir)
	var tokenizerJSON bytes.Buffer
	if err := hftokenizer.Save(&tokenizerJSON, e); err != nil {
		return err
	}
	if err := w.WriteFile(hftokenizer.FileName, tokenizerJSON.Bytes()); err != nil {
		return err
	}
	manifest, err := w.WriteRun(artifacts.Run{
		Corpus:     corpusPath,
		Symbols:    e.Symbols(),
		NumMerges:  len(e.Merges()),
		IDs:        ids,
		Decoded:    decoded,
		RoundTrip:  decoded == text,
		InputChars: utf8.RuneCountInString(text),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if printAll {
		fmt.Fprintf(out, "Encoded text: %v\n", ids)
		fmt.Fprintf(out, "Decoded text: %s\n", decoded)
	}
	fmt.Fprintln(out, report.Summary(
		[2]string{"run", manifest.RunID},
		[2]string{"corpus", corpusPath},
		[2]string{"characters", strconv.Itoa(manifest.InputChars)},
		[2]string{"vocabulary size", strconv.Itoa(manifest.VocabSize)},
		[2]string{"merges", strconv.Itoa(manifest.NumMerges)},
		[2]string{"tokens", strconv.Itoa(manifest.NumTokens)},
		[2]string{"chars/token", fmt.Sprintf("%.2f", report.CharsPerToken(manifest.InputChars, manifest.NumTokens))},
		[2]string{"round trip", strconv.FormatBool(manifest.RoundTrip)},
		[2]string{"output", outputDir},
	))
	klog.V(1).Infof("run %s written to %q", manifest.RunID, outputDir)
	if !manifest.RoundTrip {
		return errors.Errorf("decoded text differs from the corpus %q", corpusPath)
	}
	return nil
}
