package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvVocabSize, "")
	t.Setenv(EnvOutputDir, "")
	t.Setenv(EnvSPMModel, "")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{VocabSize: DefaultVocabSize, OutputDir: DefaultOutputDir}, c)
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvVocabSize, "512")
	t.Setenv(EnvOutputDir, "'/tmp/out'")
	t.Setenv(EnvSPMModel, "\"/models/tokenizer.model\"")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 512, c.VocabSize)
	assert.Equal(t, "/tmp/out", c.OutputDir)
	assert.Equal(t, "/models/tokenizer.model", c.SPMModel)
}

func TestLoadInvalidVocabSize(t *testing.T) {
	for _, value := range []string{"abc", "0", "-3", "1.5"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv(EnvVocabSize, value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), EnvVocabSize)
		})
	}
}

func TestAsMap(t *testing.T) {
	c := &Config{VocabSize: 64, OutputDir: "out"}
	m := c.AsMap()
	require.Len(t, m, 3)
	for name, v := range m {
		assert.Equal(t, name, v.Name)
		assert.NotEmpty(t, v.Description)
	}
	assert.Equal(t, map[string]string{EnvVocabSize: "64", EnvOutputDir: "out", EnvSPMModel: ""}, c.Values())
}
