package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/go-wordbpe/internal/artifacts"
	"github.com/gomlx/go-wordbpe/internal/config"
	"github.com/gomlx/go-wordbpe/tokenizers/hftokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = "the quick brown fox\njumps over the lazy dog\n\tthe end\r\n你好 世界"

func testConfig(t *testing.T) *config.Config {
	return &config.Config{VocabSize: 64, OutputDir: filepath.Join(t.TempDir(), "out")}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCLI(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTrain(t *testing.T) {
	cfg := testConfig(t)
	out, err := run(t, cfg, "", "train", "--corpus", writeFile(t, "corpus.txt", testCorpus))
	require.NoError(t, err)
	assert.Contains(t, out, "round trip")

	w := artifacts.NewWriter(cfg.OutputDir)
	decoded, err := os.ReadFile(w.Path(artifacts.DecodedFile))
	require.NoError(t, err)
	assert.Equal(t, testCorpus, string(decoded))

	manifest, err := artifacts.ReadManifest(w.Path(artifacts.ManifestFile))
	require.NoError(t, err)
	assert.True(t, manifest.RoundTrip)
	assert.LessOrEqual(t, manifest.VocabSize, cfg.VocabSize)

	e, err := hftokenizer.NewFromFile(w.Path(hftokenizer.FileName))
	require.NoError(t, err)
	assert.Equal(t, manifest.VocabSize, e.VocabSize())
	ids, err := artifacts.ReadIDs(w.Path(artifacts.IDsFile))
	require.NoError(t, err)
	want, err := e.Encode(testCorpus)
	require.NoError(t, err)
	assert.Equal(t, want, ids)
}

func TestTrainPrint(t *testing.T) {
	out, err := run(t, testConfig(t), "", "train", "--corpus", writeFile(t, "corpus.txt", "aaabdaaabac"),
		"--vocab-size", "8", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "Encoded text: [7 3 4 6 7 3 4 3 5]")
	assert.Contains(t, out, "Decoded text: aaabdaaabac")
}

func TestTrainErrors(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "", "train")
	require.Error(t, err, "--corpus is required")

	_, err = run(t, cfg, "", "train", "--corpus", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	_, err = run(t, cfg, "", "train", "--corpus", writeFile(t, "corpus.txt", "abc"), "--vocab-size", "0")
	require.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "", "train", "--corpus", writeFile(t, "corpus.txt", testCorpus))
	require.NoError(t, err)
	tokenizerPath := filepath.Join(cfg.OutputDir, hftokenizer.FileName)

	text := "the lazy fox"
	idsOut, err := run(t, cfg, text, "encode", "--tokenizer", tokenizerPath)
	require.NoError(t, err)
	ids, err := artifacts.ParseIDs([]byte(idsOut))
	require.NoError(t, err)
	assert.NotEmpty(t, ids)

	decoded, err := run(t, cfg, idsOut, "decode", "--tokenizer", tokenizerPath)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)

	decoded, err = run(t, cfg, "", "decode", "--tokenizer", tokenizerPath,
		"--ids", filepath.Join(cfg.OutputDir, artifacts.IDsFile))
	require.NoError(t, err)
	assert.Equal(t, testCorpus, decoded)

	// Characters never seen in training can't be encoded.
	_, err = run(t, cfg, "☃", "encode", "--tokenizer", tokenizerPath)
	require.Error(t, err)
}

func TestCompare(t *testing.T) {
	english := writeFile(t, "english.txt", "Peking University was China's first national comprehensive university.")
	chinese := writeFile(t, "chinese.txt", "博士学位论文应当表明作者具有独立从事科学研究工作的能力")
	out, err := run(t, testConfig(t), "", "compare", "--text", english, "--text", chinese, "--spm", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Vocabulary size")
	assert.Contains(t, out, "english.txt")
	assert.Contains(t, out, "chinese.txt")
}

func TestCompareMissingModel(t *testing.T) {
	text := writeFile(t, "text.txt", "hello")
	_, err := run(t, testConfig(t), "", "compare", "--text", text, "--spm", filepath.Join(t.TempDir(), "missing.model"))
	require.Error(t, err)
}

func TestEnv(t *testing.T) {
	out, err := run(t, testConfig(t), "", "env")
	require.NoError(t, err)
	assert.Contains(t, out, config.EnvVocabSize+"=64")
	assert.Contains(t, out, config.EnvOutputDir+"=")
	assert.Contains(t, out, config.EnvSPMModel+"=")
}
