package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"STRUCTURING_PROVIDER", "CHUNK_SIZE", "CHUNK_OVERLAP", "EXPORT_PDF", "PORT", "SNAPSHOT_DIR", "DOWNLOAD_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, 12000, cfg.ChunkSize)
	assert.Equal(t, 500, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.StructuringAttempts)
	assert.Equal(t, 20*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, ExportSoffice, cfg.ExportPDF)
	assert.Equal(t, "stability-ai/stable-diffusion-3", cfg.ReplicateModel)
	assert.Equal(t, "8091", cfg.Port)
	assert.Empty(t, cfg.SnapshotDir)
}

func TestLoad_ClampsOverlap(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHUNK_SIZE", "1000")
	t.Setenv("CHUNK_OVERLAP", "1000")
	t.Setenv("STRUCTURING_MAX_ATTEMPTS", "0")

	cfg := Load()
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 250, cfg.ChunkOverlap)
	assert.Equal(t, 1, cfg.StructuringAttempts)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("REPLICATE_API_TOKEN", "")
	require.NoError(t, os.Unsetenv("REPLICATE_API_TOKEN"))
	require.NoError(t, writeFile(dir+"/.env", "REPLICATE_API_TOKEN=r8_from_file\n"))

	assert.Equal(t, "r8_from_file", Load().ReplicateAPIToken)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"gemini ok", Config{Provider: ProviderGemini, GeminiAPIKey: "k", ExportPDF: ExportOff}, ""},
		{"gemini missing key", Config{Provider: ProviderGemini, ExportPDF: ExportOff}, "GEMINI_API_KEY"},
		{"claude missing key", Config{Provider: ProviderClaude, ExportPDF: ExportNative}, "ANTHROPIC_API_KEY"},
		{"unknown provider", Config{Provider: "llama", ExportPDF: ExportOff}, "STRUCTURING_PROVIDER"},
		{"bad export", Config{Provider: ProviderClaude, AnthropicAPIKey: "k", ExportPDF: "docx"}, "EXPORT_PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := Config{Provider: ProviderGemini, GeminiAPIKey: "k", ExportPDF: ExportOff}
	err := cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DECKGEN_API_KEY")

	cfg.DeckgenAPIKey = "secret"
	assert.NoError(t, cfg.ValidateServer())
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
