package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"chatledger/internal/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProbeRoot returns a root command whose probe subcommand loads the configuration
// into the returned pointer.
func newProbeRoot(bindings map[string]string) (*cobra.Command, **config.Config) {
	var loaded *config.Config

	root := newRootCmd()
	probe := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, bindings)
			if err != nil {
				return err
			}
			loaded = cfg
			return nil
		},
	}
	probe.Flags().String("input", "", "")
	root.AddCommand(probe)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root, &loaded
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRootCommand_Flags(t *testing.T) {
	root := newRootCmd()

	assert.Equal(t, "chatledger", root.Use)
	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	for _, path := range [][]string{
		{"clean"}, {"extract"}, {"run"}, {"migrate"}, {"rules", "dump"}, {"diagnose", "truncation"}, {"version"},
	} {
		found, _, err := rootCmd.Find(path)
		require.NoError(t, err, "command %v should be registered", path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, configPath, `
paths:
  input: from-file.csv
worker:
  concurrency: 2
classifier:
  tracked_senders: ["Alex"]
`)

	tests := []struct {
		name   string
		args   []string
		env    map[string]string
		assert func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "defaults",
			args: []string{"probe"},
			assert: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "data/01_raw/messages.csv", cfg.Paths.Input)
				assert.Equal(t, 4, cfg.Worker.Concurrency)
				assert.Equal(t, []string{"Thad Norman", "Them"}, cfg.Classifier.TrackedSenders)
				assert.Equal(t, "info", cfg.Log.Level)
			},
		},
		{
			name: "bound flag overrides the default",
			args: []string{"probe", "--input", "flag.csv", "--log-level", "debug"},
			assert: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "flag.csv", cfg.Paths.Input)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name: "environment overrides the default",
			args: []string{"probe"},
			env:  map[string]string{"CHATLEDGER_PATHS_OUTPUT_DIR": "env-out", "CHATLEDGER_WORKER_CONCURRENCY": "9"},
			assert: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "env-out", cfg.Paths.OutputDir)
				assert.Equal(t, 9, cfg.Worker.Concurrency)
			},
		},
		{
			name: "config file",
			args: []string{"probe", "--config", configPath},
			assert: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "from-file.csv", cfg.Paths.Input)
				assert.Equal(t, 2, cfg.Worker.Concurrency)
				assert.Equal(t, []string{"Alex"}, cfg.Classifier.TrackedSenders)
			},
		},
		{
			name: "flag overrides the config file",
			args: []string{"probe", "--config", configPath, "--input", "flag.csv"},
			assert: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "flag.csv", cfg.Paths.Input)
				assert.Equal(t, 2, cfg.Worker.Concurrency)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			root, loaded := newProbeRoot(map[string]string{"paths.input": "input"})
			root.SetArgs(tt.args)

			require.NoError(t, root.Execute())
			require.NotNil(t, *loaded)
			tt.assert(t, *loaded)
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("invalid configuration", func(t *testing.T) {
		t.Setenv("CHATLEDGER_WORKER_CONCURRENCY", "0")
		root, _ := newProbeRoot(nil)
		root.SetArgs([]string{"probe"})

		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "worker.concurrency")
	})

	t.Run("unknown flag binding", func(t *testing.T) {
		root, _ := newProbeRoot(map[string]string{"paths.cleaned": "output"})
		root.SetArgs([]string{"probe"})

		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output")
	})

	t.Run("missing config file", func(t *testing.T) {
		root, _ := newProbeRoot(nil)
		root.SetArgs([]string{"probe", "--config", filepath.Join(t.TempDir(), "absent.yaml")})

		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("invalid log level", func(t *testing.T) {
		root, _ := newProbeRoot(nil)
		root.SetArgs([]string{"probe", "--log-level", "loud"})

		assert.Error(t, root.Execute())
	})
}
