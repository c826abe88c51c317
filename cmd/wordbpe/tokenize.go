package main

import (
	"io"

	"github.com/gomlx/go-wordbpe/internal/artifacts"
	"github.com/gomlx/go-wordbpe/internal/corpus"
	"github.com/gomlx/go-wordbpe/tokenizers/hftokenizer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var tokenizerPath, corpusPath string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode text with a trained tokenizer.json, printing one token ID per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := hftokenizer.NewFromFile(tokenizerPath)
			if err != nil {
				return err
			}
			var text string
			if corpusPath != "" {
				text, err = corpus.Load(corpusPath)
			} else {
				text, err = readAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			ids, err := e.Encode(text)
			if err != nil {
				return err
			}
			return artifacts.WriteIDs(cmd.OutOrStdout(), ids)
		},
	}
	cmd.Flags().StringVar(&tokenizerPath, "tokenizer", "", "Trained tokenizer.json")
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "UTF-8 text file to encode (default stdin)")
	_ = cmd.MarkFlagRequired("tokenizer")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var tokenizerPath, idsPath string
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode token IDs with a trained tokenizer.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := hftokenizer.NewFromFile(tokenizerPath)
			if err != nil {
				return err
			}
			var ids []int
			if idsPath != "" {
				ids, err = artifacts.ReadIDs(idsPath)
			} else {
				var content string
				if content, err = readAll(cmd.InOrStdin()); err == nil {
					ids, err = artifacts.ParseIDs([]byte(content))
				}
			}
			if err != nil {
				return err
			}
			text, err := e.Decode(ids)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVar(&tokenizerPath, "tokenizer", "", "Trained tokenizer.json")
	cmd.Flags().StringVar(&idsPath, "ids", "", "File with one token ID per line (default stdin)")
	_ = cmd.MarkFlagRequired("tokenizer")
	return cmd
}

func readAll(r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to read standard input")
	}
	return string(content), nil
}
