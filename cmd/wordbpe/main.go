// wordbpe trains word-bounded BPE tokenizers, uses them to encode and decode text, and compares
// them against a SentencePiece baseline.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/gomlx/go-wordbpe/internal/config"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		klog.Errorf("%+v", err)
		os.Exit(2)
	}
	err = NewCLI(cfg).ExecuteContext(context.Background())
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

// NewCLI returns the root command, with defaults taken from cfg.
func NewCLI(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordbpe",
		Short: "Word-bounded byte-pair encoding tokenizer",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.AddCommand(
		newTrainCmd(cfg),
		newCompareCmd(cfg),
		newEncodeCmd(),
		newDecodeCmd(),
		newEnvCmd(cfg),
	)
	return rootCmd
}
