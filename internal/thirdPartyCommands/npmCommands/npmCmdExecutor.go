package npmcommands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	npmmodels "github.com/RobsonDevCode/depwatch/internal/thirdPartyCommands/models/npm"
)

func RunAudit(path string, ctx context.Context) (npmmodels.NpmAuditResponse, error) {
	cmd := exec.CommandContext(ctx, "npm", "audit", "--json")

	cmd.Dir = path
	cmd.Env = os.Environ()

	output, err := cmd.Output()
	if err != nil {
		// npm audit exits non zero when it finds vulnerabilities but still
		// writes the full report to stdout
		if exitError, ok := err.(*exec.ExitError); ok {
			if len(output) == 0 {
				return npmmodels.NpmAuditResponse{}, fmt.Errorf("npm audit failed in %s: %v", path, exitError)
			}
		} else {
			return npmmodels.NpmAuditResponse{}, fmt.Errorf("failed to run npm audit in %s: %v", path, err)
		}
	}

	var result npmmodels.NpmAuditResponse
	if err := json.Unmarshal(output, &result); err != nil {
		return npmmodels.NpmAuditResponse{}, fmt.Errorf("failed to parse data from npm audit output in %s: %w", path, err)
	}

	return result, nil
}
