package main

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const childEnv = "MAIN_TEST_RUN_CHILD"

// Invalid configuration must stop the process with a readable reason.
func TestMainReportsInvalidConfig(t *testing.T) {
	if os.Getenv(childEnv) == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainReportsInvalidConfig$")
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(),
		childEnv+"=1",
		"DB_DRIVER=mysql",
		"DATABASE_URL=file::memory:",
	)

	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "output: %s", out)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), "load config")
	assert.Contains(t, string(out), "DB_DRIVER must be pgx or sqlite")
}
