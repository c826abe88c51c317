package main

import (
	"fmt"
	"path/filepath"

	"github.com/gomlx/go-wordbpe/internal/config"
	"github.com/gomlx/go-wordbpe/internal/corpus"
	"github.com/gomlx/go-wordbpe/internal/report"
	"github.com/gomlx/go-wordbpe/tokenizers/api"
	"github.com/gomlx/go-wordbpe/tokenizers/bpe"
	"github.com/gomlx/go-wordbpe/tokenizers/sentencepiece"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newCompareCmd(cfg *config.Config) *cobra.Command {
	var (
		textPaths []string
		vocabSize int
		spmModel  string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare token counts against a SentencePiece baseline",
		Long: `Train a tokenizer on the concatenation of all given texts, then report how many tokens
each text takes with it and, if a SentencePiece model is given, with the baseline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compareHandler(cmd, textPaths, vocabSize, spmModel)
		},
	}
	cmd.Flags().StringSliceVar(&textPaths, "text", nil, "UTF-8 text files to compare on, may be repeated")
	cmd.Flags().IntVar(&vocabSize, "vocab-size", cfg.VocabSize, "Target vocabulary size")
	cmd.Flags().StringVar(&spmModel, "spm", cfg.SPMModel, "SentencePiece tokenizer.model used as baseline")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func compareHandler(cmd *cobra.Command, textPaths []string, vocabSize int, spmModel string) error {
	if vocabSize <= 0 {
		return errors.Errorf("--vocab-size must be greater than zero, got %d", vocabSize)
	}
	texts, err := corpus.LoadAll(textPaths...)
	if err != nil {
		return err
	}

	var baseline api.Tokenizer
	if spmModel != "" {
		baseline, err = sentencepiece.NewFromPath(spmModel)
		if err != nil {
			return err
		}
	} else {
		klog.Warningf("no SentencePiece model given, comparing without baseline")
	}

	e := bpe.New()
	e.Train(corpus.Concat(texts...), vocabSize)
	comparisons := make([]report.Comparison, 0, len(texts))
	for i, text := range texts {
		c := report.Comparison{Name: filepath.Base(textPaths[i]), Text: text}
		if c.Ours, err = e.Encode(text); err != nil {
			return errors.WithMessagef(err, "while encoding %q", textPaths[i])
		}
		if baseline != nil {
			if c.Baseline, err = baseline.Encode(text); err != nil {
				return errors.WithMessagef(err, "while encoding %q with baseline", textPaths[i])
			}
		}
		comparisons = append(comparisons, c)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Vocabulary size: %d (%d merges)\n", e.VocabSize(), len(e.Merges()))
	fmt.Fprintln(cmd.OutOrStdout(), report.Render(comparisons))
	return nil
}
