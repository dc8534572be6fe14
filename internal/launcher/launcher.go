// Package launcher starts bot containers for accepted meeting jobs.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/google/uuid"
)

// Docker launches one bot container per job via the docker CLI.
type Docker struct {
	image       string
	network     string
	databaseURL string
	natsURL     string
	natsToken   string
	backendURL  string
	profileDir  string
	logger      *slog.Logger
}

type Options struct {
	Image       string
	Network     string
	DatabaseURL string
	NatsURL     string
	NatsToken   string
	BackendURL  string
	ProfileDir  string
}

func NewDocker(opts Options, logger *slog.Logger) *Docker {
	return &Docker{
		image:       opts.Image,
		network:     opts.Network,
		databaseURL: opts.DatabaseURL,
		natsURL:     opts.NatsURL,
		natsToken:   opts.NatsToken,
		backendURL:  opts.BackendURL,
		profileDir:  opts.ProfileDir,
		logger:      logger,
	}
}

// runArgs builds the docker CLI argument list for one bot container. Env vars
// are emitted in a fixed order so command lines are reproducible.
func (d *Docker) runArgs(jobID uuid.UUID, meetingURL string) []string {
	args := []string{
		"run", "-d", "--rm",
		"--name", "scribe-bot-" + jobID.String(),
		"--shm-size", "2g",
	}
	if d.network != "" {
		args = append(args, "--network", d.network)
	}
	if d.profileDir != "" {
		args = append(args, "-v", d.profileDir+":/data/chrome-profile")
	}

	env := [][2]string{
		{"MEETING_URL", meetingURL},
		{"JOB_ID", jobID.String()},
		{"DATABASE_URL", d.databaseURL},
		{"NATS_URL", d.natsURL},
		{"NATS_TOKEN", d.natsToken},
		{"BACKEND_URL", d.backendURL},
		{"CHROME_PROFILE_DIR", "/data/chrome-profile"},
	}
	for _, kv := range env {
		if kv[1] == "" {
			continue
		}
		args = append(args, "-e", kv[0]+"="+kv[1])
	}
	return append(args, d.image)
}

// Launch starts a detached bot container for the job. The container removes
// itself when the bot exits.
func (d *Docker) Launch(ctx context.Context, jobID uuid.UUID, meetingURL string) error {
	args := d.runArgs(jobID, meetingURL)

	d.logger.Info("launching bot container",
		"job_id", jobID,
		"image", d.image,
		"meeting_url", meetingURL,
	)

	cmd := exec.CommandContext(ctx, "docker", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker run: %w: %s", err, out)
	}

	d.logger.Info("bot container started", "job_id", jobID, "container", string(out))
	return nil
}
