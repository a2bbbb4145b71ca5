package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faceverify/faceverify/internal/evaluation"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("DATABASE_URL", "")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// scoreServer answers /verify_faces with a score chosen by the first image name
func scoreServer(t *testing.T, scores map[string]float64) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("image1")
		require.NoError(t, err)

		score := scores[header.Filename]
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"similarity_score": score,
			"is_same_person":   score > 65,
			"confidence":       "high",
			"model":            "test",
			"status":           "success",
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func writeDataset(t *testing.T) (pairsFile, imagesDir string) {
	t.Helper()

	dir := t.TempDir()
	imagesDir = filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(imagesDir, 0o755))

	names := []string{
		"Ann_Lee_0001.jpg", "Ann_Lee_0002.jpg",
		"Bob_Ray_0001.jpg", "Bob_Ray_0002.jpg",
		"Cid_Moe_0001.jpg", "Dan_Fox_0001.jpg",
		"Eve_Kim_0001.jpg", "Fay_Orr_0001.jpg",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(imagesDir, n), []byte(n), 0o600))
	}

	pairsFile = filepath.Join(dir, "pairs.txt")
	require.NoError(t, os.WriteFile(pairsFile, []byte(strings.Join([]string{
		"Ann_Lee_0001.jpg 1",
		"Ann_Lee_0002.jpg 1",
		"Bob_Ray_0001.jpg 1",
		"Bob_Ray_0002.jpg 1",
		"Cid_Moe_0001.jpg 0",
		"Dan_Fox_0001.jpg 0",
		"Eve_Kim_0001.jpg 0",
		"Fay_Orr_0001.jpg 0",
	}, "\n")), 0o600))

	return pairsFile, imagesDir
}

func TestEvaluateCommand(t *testing.T) {
	pairsFile, imagesDir := writeDataset(t)
	server := scoreServer(t, map[string]float64{
		"Ann_Lee_0001.jpg": 91,
		"Bob_Ray_0001.jpg": 84,
		"Cid_Moe_0001.jpg": 33,
		"Eve_Kim_0001.jpg": 12,
	})
	resultsPath := filepath.Join(t.TempDir(), "results.json")

	out, err := execute(t, "evaluate", "toy",
		"--server", server.URL,
		"--pairs-file", pairsFile,
		"--images-dir", imagesDir,
		"--results", resultsPath,
		"--no-progress",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Results for toy")
	assert.Contains(t, out, "Evaluated pairs:   4")

	results, err := evaluation.LoadResults(resultsPath)
	require.NoError(t, err)
	require.Contains(t, results, "toy")
	assert.Equal(t, 1.0, results["toy"].AUC)
	assert.Equal(t, 100.0, results["toy"].DefaultThreshold.Accuracy)

	out, err = execute(t, "results", "show", "--results", resultsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Results for toy")
}

func TestEvaluateCommand_RequiresDataset(t *testing.T) {
	_, err := execute(t, "evaluate")
	assert.ErrorContains(t, err, "at least one dataset")
}

func TestEvaluateCommand_ServerDown(t *testing.T) {
	pairsFile, imagesDir := writeDataset(t)

	_, err := execute(t, "evaluate", "toy",
		"--server", "http://127.0.0.1:1",
		"--pairs-file", pairsFile,
		"--images-dir", imagesDir,
		"--results", filepath.Join(t.TempDir(), "results.json"),
		"--no-progress",
	)
	assert.ErrorContains(t, err, "no dataset was evaluated")
}

func TestVerifyCommand(t *testing.T) {
	_, imagesDir := writeDataset(t)
	server := scoreServer(t, map[string]float64{"Ann_Lee_0001.jpg": 88.5})

	out, err := execute(t, "verify",
		filepath.Join(imagesDir, "Ann_Lee_0001.jpg"),
		filepath.Join(imagesDir, "Ann_Lee_0002.jpg"),
		"--server", server.URL,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Similarity score: 88.50%")
	assert.Contains(t, out, "Same person:      true")
}

func TestPairsCommand(t *testing.T) {
	pairsFile, _ := writeDataset(t)

	out, err := execute(t, "pairs", pairsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Format:          labelled")
	assert.Contains(t, out, "Pairs:           4 (2 same, 2 different)")
	assert.Contains(t, out, "Suspect labels:  0 of 4")

	out, err = execute(t, "pairs", pairsFile, "--json")
	require.NoError(t, err)

	var summary struct {
		Format string `json:"format"`
		Pairs  int    `json:"pairs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "labelled", summary.Format)
	assert.Equal(t, 4, summary.Pairs)
}

func TestDatasetsStatusCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lfw", "Ann"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lfw", "Ann", "Ann_0001.jpg"), []byte("x"), 0o600))
	t.Setenv("FACEVERIFY_DATASETS_ROOT", root)

	out, err := execute(t, "datasets", "status")
	require.NoError(t, err)

	var lfwLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "lfw") {
			lfwLine = line
		}
	}
	assert.Contains(t, lfwLine, "found")
	assert.Contains(t, out, "cplfw")
	assert.Contains(t, out, "missing")
}

func TestResultsShow_Empty(t *testing.T) {
	out, err := execute(t, "results", "show", "--results", filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "No results")
}
