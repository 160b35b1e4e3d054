package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig escribe un YAML temporal y devuelve su path.
func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vetclinic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_FromYAML(t *testing.T) {
	path := writeConfig(t, `
pets_file: data/pets.csv
consultations_file: data/consultations.json
log:
  level: debug
  format: json
  file: ""
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "data/pets.csv", cfg.PetsFile)
	assert.Equal(t, "data/consultations.json", cfg.ConsultationsFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "", cfg.Log.File)
	assert.Equal(t, DefaultAppName, cfg.AppName)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "pets_file: from-file.csv\n")
	t.Setenv("VETCLINIC_PETS_FILE", "from-env.csv")
	t.Setenv("VETCLINIC_LOG_LEVEL", "warn")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env.csv", cfg.PetsFile)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("VETCLINIC_PETS_FILE", "from-env.csv")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("pets-file", "", "")
	fs.String("log-file", "", "")
	require.NoError(t, fs.Parse([]string{"--pets-file", "from-flag.csv"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.csv", cfg.PetsFile)
	// flag no seteado: se mantiene el default
	assert.Equal(t, DefaultLogFile, cfg.Log.File)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.ConsultationsFile = cfg.PetsFile
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.PetsFile = " "
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Defaults().Validate())
}

func TestOpenLogOutput(t *testing.T) {
	out, closeFn, err := LogConfig{}.OpenLogOutput()
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, out)
	require.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "clinic.log")
	out, closeFn, err = LogConfig{File: path}.OpenLogOutput()
	require.NoError(t, err)
	_, err = out.WriteString("line\n")
	require.NoError(t, err)
	require.NoError(t, closeFn())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(b))
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
